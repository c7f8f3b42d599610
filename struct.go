package rna

import (
	"iter"

	"github.com/goliatone/go-rna/idprop"
)

// StructDescriptor is the registered metadata of one data type.
type StructDescriptor struct {
	Identifier  string
	Name        string
	Description string
	Icon        int

	// Base links the single inheritance chain.
	Base *StructDescriptor
	Flag StructFlag
	// NameProperty is the identifier of the display name property used by
	// collection name lookups.
	NameProperty string
	// Properties are kept in declaration order.
	Properties []*PropertyDescriptor

	// Refine returns the most specific runtime type of ptr. Returning
	// ptr.Type ends the walk.
	Refine func(ptr Ptr) *StructDescriptor
	// IDProperties locates the instance's dynamic property group, creating
	// it when create is set.
	IDProperties func(ptr Ptr, create bool) *idprop.Property
	// Path returns the path of ptr relative to its owning data block.
	Path func(ptr Ptr) string
	// Instance returns the host object bound to ptr.
	Instance func(ptr Ptr) any

	Register   func(reg *Registry, s *StructDescriptor) error
	Unregister func(reg *Registry, s *StructDescriptor) error
}

// IsID reports whether the struct is an identity-bearing data block type.
func (s *StructDescriptor) IsID() bool {
	return s != nil && s.Flag&StructFlagID != 0
}

// UndoCheck reports whether edits of the struct are recorded for undo.
func (s *StructDescriptor) UndoCheck() bool {
	return s != nil && s.Flag&StructFlagUndo != 0
}

// IsA reports whether s is target or derives from it. Every type is an
// AnyTypeStruct.
func (s *StructDescriptor) IsA(target *StructDescriptor) bool {
	if target == AnyTypeStruct {
		return true
	}
	for base := s; base != nil; base = base.Base {
		if base == target {
			return true
		}
	}
	return false
}

// BaseChildOf returns the ancestor of s whose base is parent.
func (s *StructDescriptor) BaseChildOf(parent *StructDescriptor) *StructDescriptor {
	for base := s; base != nil; base = base.Base {
		if base.Base == parent {
			return base
		}
	}
	return nil
}

// IDPropertiesCheck reports whether instances may carry dynamic properties.
func (s *StructDescriptor) IDPropertiesCheck() bool {
	return s != nil && s.idPropertiesLocator() != nil && s.Flag&StructFlagNoIDProperties == 0
}

// IDPropertiesDatablockAllowed reports whether dynamic properties may
// reference data blocks.
func (s *StructDescriptor) IDPropertiesDatablockAllowed() bool {
	return s.Flag&(StructFlagNoDatablockIDProperties|StructFlagNoIDProperties) == 0
}

// IDPropertiesContainsDatablock reports whether dynamic properties of the
// struct may hold data block references.
func (s *StructDescriptor) IDPropertiesContainsDatablock() bool {
	return s.Flag&(StructFlagContainsDatablockIDProperties|StructFlagID) != 0
}

func (s *StructDescriptor) idPropertiesLocator() func(Ptr, bool) *idprop.Property {
	for base := s; base != nil; base = base.Base {
		if base.IDProperties != nil {
			return base.IDProperties
		}
	}
	return nil
}

// FindPropertyNoBase returns the property declared directly on s.
func (s *StructDescriptor) FindPropertyNoBase(identifier string) *PropertyDescriptor {
	for _, prop := range s.Properties {
		if prop.Identifier == identifier {
			return prop
		}
	}
	return nil
}

// FindProperty returns the property declared on s or one of its bases.
// Builtin properties are included.
func (s *StructDescriptor) FindProperty(identifier string) *PropertyDescriptor {
	for base := s; base != nil; base = base.Base {
		if prop := base.FindPropertyNoBase(identifier); prop != nil {
			return prop
		}
	}
	return nil
}

// AllProperties yields the properties of the base chain, most basic type
// first, skipping builtin properties.
func (s *StructDescriptor) AllProperties() iter.Seq[*PropertyDescriptor] {
	return func(yield func(*PropertyDescriptor) bool) {
		var chain []*StructDescriptor
		for base := s; base != nil; base = base.Base {
			chain = append(chain, base)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			for _, prop := range chain[i].Properties {
				if prop.Intern&InternBuiltin != 0 {
					continue
				}
				if !yield(prop) {
					return
				}
			}
		}
	}
}

// CountProperties returns the number of non builtin properties of the
// base chain.
func (s *StructDescriptor) CountProperties() int {
	n := 0
	for range s.AllProperties() {
		n++
	}
	return n
}

// NameProp returns the display name property of s or its bases.
func (s *StructDescriptor) NameProp() *PropertyDescriptor {
	for base := s; base != nil; base = base.Base {
		if base.NameProperty != "" {
			return base.FindProperty(base.NameProperty)
		}
	}
	return nil
}

// UnregisterFunc returns the unregister callback of s or its bases.
func (s *StructDescriptor) UnregisterFunc() func(*Registry, *StructDescriptor) error {
	for base := s; base != nil; base = base.Base {
		if base.Unregister != nil {
			return base.Unregister
		}
	}
	return nil
}

// StructInstance returns the host object bound to ptr, consulting the base
// chain.
func StructInstance(ptr Ptr) any {
	for base := ptr.Type; base != nil; base = base.Base {
		if base.Instance != nil {
			return base.Instance(ptr)
		}
	}
	return nil
}

// StructPath returns the path of ptr relative to its owning data block.
func StructPath(ptr Ptr) (string, bool) {
	for base := ptr.Type; base != nil; base = base.Base {
		if base.Path != nil {
			return base.Path(ptr), true
		}
	}
	return "", false
}
