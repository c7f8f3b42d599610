// Package defs declares data block types in YAML and registers them with an
// rna.Registry.
//
// Declared properties are slots of the block's ID properties unless a Go
// type is bound with BindType, in which case properties naming a field are
// bound to it with rna.BindField.
package defs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is one definitions document.
type File struct {
	Version string      `yaml:"version"`
	Structs []StructDef `yaml:"structs"`
}

// StructDef declares one data block type.
type StructDef struct {
	Identifier   string        `yaml:"identifier"`
	Base         string        `yaml:"base,omitempty"`
	Name         string        `yaml:"name,omitempty"`
	Description  string        `yaml:"description,omitempty"`
	NameProperty string        `yaml:"name_property,omitempty"`
	Undo         bool          `yaml:"undo,omitempty"`
	Properties   []PropertyDef `yaml:"properties"`
	// Custom seeds free-form ID properties, decoded like JSON settings.
	Custom map[string]any `yaml:"custom,omitempty"`
}

// PropertyDef declares one property.
type PropertyDef struct {
	Identifier  string `yaml:"identifier"`
	Type        string `yaml:"type"`
	Subtype     string `yaml:"subtype,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Field names the Go struct field backing the property.
	Field string `yaml:"field,omitempty"`
	Size  Dims   `yaml:"size,omitempty"`

	Default any `yaml:"default,omitempty"`

	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	SoftMin   *float64 `yaml:"soft_min,omitempty"`
	SoftMax   *float64 `yaml:"soft_max,omitempty"`
	Step      float64  `yaml:"step,omitempty"`
	Precision int      `yaml:"precision,omitempty"`
	MaxLength int      `yaml:"max_length,omitempty"`

	Items []EnumItemDef `yaml:"items,omitempty"`
	// Flag makes an enum a bit flag set.
	Flag bool `yaml:"flag,omitempty"`
	// Struct names the referenced type of pointer properties.
	Struct string `yaml:"struct,omitempty"`

	ReadOnly     bool `yaml:"readonly,omitempty"`
	Animatable   bool `yaml:"animatable,omitempty"`
	LibException bool `yaml:"lib_exception,omitempty"`
	Overridable  bool `yaml:"overridable,omitempty"`
}

// EnumItemDef declares one enum item.
type EnumItemDef struct {
	Identifier  string `yaml:"identifier"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Value       int    `yaml:"value"`
}

// Dims holds array dimensions. YAML accepts a single length or a list.
type Dims []int

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dims) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		*d = Dims{n}
		return nil
	case yaml.SequenceNode:
		var dims []int
		if err := node.Decode(&dims); err != nil {
			return err
		}
		*d = dims
		return nil
	default:
		return fmt.Errorf("expected length or list of lengths, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d Dims) MarshalYAML() (any, error) {
	if len(d) == 1 {
		return d[0], nil
	}
	return []int(d), nil
}
