package openapi

import (
	"fmt"
	"regexp"
)

// componentRegistry names the struct schemas published under
// components/schemas, keyed by struct identifier.
type componentRegistry struct {
	entries   map[string]*componentEntry
	usedNames map[string]struct{}
}

type componentEntry struct {
	name   string
	schema map[string]any
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		entries:   map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
	}
}

func (r *componentRegistry) has(identifier string) bool {
	_, ok := r.entries[identifier]
	return ok
}

// reserve claims a component name before its schema is rendered, so that
// references met while rendering resolve to it.
func (r *componentRegistry) reserve(identifier string) *componentEntry {
	if entry, ok := r.entries[identifier]; ok {
		return entry
	}
	entry := &componentEntry{name: r.uniqueName(identifier)}
	r.entries[identifier] = entry
	return entry
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Struct"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func (r *componentRegistry) componentsMap() map[string]any {
	if len(r.entries) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.entries))
	for _, entry := range r.entries {
		schema := entry.schema
		if schema == nil {
			schema = map[string]any{}
		}
		out[entry.name] = schema
	}
	return out
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
