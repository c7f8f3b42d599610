package defs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a definitions file from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("defs: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("defs: parse: %w", err)
	}
	applyDefaults(&f)
	return &f, nil
}

// Marshal serializes f to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}
	for i := range f.Structs {
		s := &f.Structs[i]
		if s.Base == "" {
			s.Base = "ID"
		}
		if s.Name == "" {
			s.Name = s.Identifier
		}
		for j := range s.Properties {
			p := &s.Properties[j]
			p.Type = strings.ToLower(strings.TrimSpace(p.Type))
			p.Subtype = strings.ToLower(strings.TrimSpace(p.Subtype))
			if p.Name == "" {
				p.Name = p.Identifier
			}
		}
	}
}
