package openapi

import (
	"fmt"
	"sort"
	"strings"

	rna "github.com/goliatone/go-rna"
)

type openAPIDocumentBuilder struct {
	config     generatorConfig
	graph      *schemaGraph
	components *componentRegistry
	inlining   map[string]bool
}

func newOpenAPIDocumentBuilder(config generatorConfig) *openAPIDocumentBuilder {
	return &openAPIDocumentBuilder{
		config:     config,
		graph:      newSchemaGraph(config),
		components: newComponentRegistry(),
		inlining:   map[string]bool{},
	}
}

func (b *openAPIDocumentBuilder) build(roots []*rna.StructDescriptor) (map[string]any, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("openapi: no structs to describe")
	}
	// the whole graph is walked first so reference counts are final
	for _, root := range roots {
		if _, err := b.graph.addStruct(root); err != nil {
			return nil, err
		}
	}

	method := strings.ToLower(b.config.operation.Method)
	if method == "" {
		method = "patch"
	}
	paths := make(map[string]any, len(roots))
	for _, root := range roots {
		path := b.config.operation.pathFor(root.Identifier)
		if _, exists := paths[path]; exists {
			return nil, fmt.Errorf("openapi: path %q is produced by more than one struct", path)
		}
		paths[path] = map[string]any{
			method: b.buildOperation(root, method),
		}
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   paths,
	}
	if components := b.components.componentsMap(); components != nil {
		document["components"] = map[string]any{
			"schemas": components,
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *openAPIDocumentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *openAPIDocumentBuilder) buildOperation(root *rna.StructDescriptor, method string) map[string]any {
	content := map[string]any{
		b.config.contentType: map[string]any{
			"schema": map[string]any{
				"$ref": b.reference(root.Identifier),
			},
		},
	}

	responses := make(map[string]any, len(b.config.responses))
	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		resp := b.config.responses[status]
		responses[status] = map[string]any{
			"description": resp.Description,
		}
	}

	operation := map[string]any{
		"operationId": b.config.operation.idFor(root.Identifier, method),
		"requestBody": map[string]any{
			"required": true,
			"content":  content,
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(b.config.operation.Summary); summary != "" {
		operation["summary"] = strings.ReplaceAll(summary, StructPlaceholder, root.Identifier)
	}
	return operation
}

// reference publishes the struct schema under components and returns its
// reference.
func (b *openAPIDocumentBuilder) reference(identifier string) string {
	if b.components.has(identifier) {
		return componentRef(b.components.reserve(identifier).name)
	}
	entry := b.components.reserve(identifier)
	entry.schema = b.render(b.graph.structs[identifier])
	return componentRef(entry.name)
}

// schemaFor renders node. Struct nodes referenced once are inlined; shared
// or recursive ones become components.
func (b *openAPIDocumentBuilder) schemaFor(node *schemaNode) map[string]any {
	if node == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	if node.Ref == "" {
		return b.render(node)
	}

	id := node.Ref
	if b.components.has(id) || b.inlining[id] || b.graph.uses[id] >= 2 {
		ref := map[string]any{"$ref": b.reference(id)}
		meta := node.baseMap()
		b.addExtensions(meta, node)
		if len(meta) == 0 {
			return ref
		}
		// siblings of $ref are ignored by 3.0 readers
		meta["allOf"] = []any{ref}
		return meta
	}

	b.inlining[id] = true
	result := b.render(b.graph.structs[id])
	delete(b.inlining, id)
	for key, value := range node.baseMap() {
		result[key] = value
	}
	b.addExtensions(result, node)
	return result
}

func (b *openAPIDocumentBuilder) render(node *schemaNode) map[string]any {
	result := node.baseMap()

	if len(node.Properties) > 0 || node.Type == "object" {
		props := make(map[string]any, len(node.Properties))
		for _, key := range node.order {
			props[key] = b.schemaFor(node.Properties[key])
		}
		result["properties"] = props
	}

	if len(node.Required) > 0 {
		required := append([]string{}, node.Required...)
		sort.Strings(required)
		result["required"] = required
	}

	if node.Items != nil {
		result["items"] = b.schemaFor(node.Items)
	}

	b.addExtensions(result, node)
	return result
}

func (b *openAPIDocumentBuilder) addExtensions(result map[string]any, node *schemaNode) {
	if len(node.formgen) > 0 {
		result["x-formgen"] = orderedStringMap(node.formgen)
	}
	if len(node.relationships) > 0 {
		result["x-relationships"] = orderedStringMap(node.relationships)
	}
	for key, value := range node.additionalMapping {
		result[key] = value
	}
}

func orderedStringMap(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if pathItem == nil {
			return fmt.Errorf("openapi: path %q invalid payload", pathKey)
		}
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			requestBody, _ := operation["requestBody"].(map[string]any)
			if requestBody == nil {
				return fmt.Errorf("openapi: operation %s %s missing requestBody", method, pathKey)
			}
			content, _ := requestBody["content"].(map[string]any)
			if len(content) == 0 {
				return fmt.Errorf("openapi: operation %s %s requestBody missing content", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
