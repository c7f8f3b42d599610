package rna

import (
	"slices"

	"github.com/goliatone/go-rna/idprop"
)

// Main is the database of data blocks of one session.
type Main struct {
	blocks []IDBlock
}

// NewMain returns a database holding blocks.
func NewMain(blocks ...IDBlock) *Main {
	return &Main{blocks: slices.Clone(blocks)}
}

// Add appends blocks to the database.
func (m *Main) Add(blocks ...IDBlock) {
	m.blocks = append(m.blocks, blocks...)
}

// Blocks returns the blocks in insertion order.
func (m *Main) Blocks() []IDBlock {
	return slices.Clone(m.blocks)
}

// Find returns the first block named name.
func (m *Main) Find(name string) IDBlock {
	for _, block := range m.blocks {
		if block.IDRef().Name == name {
			return block
		}
	}
	return nil
}

// Builtin structs. Their properties and callbacks are attached in init.
var (
	IDStruct = &StructDescriptor{
		Identifier:   "ID",
		Name:         "ID",
		Description:  "Base type for data blocks, defining a unique name and dynamic properties",
		Flag:         StructFlagID,
		NameProperty: "name",
	}
	PropertyGroupStruct = &StructDescriptor{
		Identifier:   "PropertyGroup",
		Name:         "Property Group",
		Description:  "Group of dynamic properties",
		NameProperty: "name",
	}
	AnyTypeStruct = &StructDescriptor{
		Identifier: "AnyType",
		Name:       "Any Type",
	}
	MainStruct = &StructDescriptor{
		Identifier:  "BlendData",
		Name:        "Main",
		Description: "Database of data blocks",
	}
	RegistryStruct = &StructDescriptor{
		Identifier:  "BlenderRNA",
		Name:        "Registry",
		Description: "Registered struct types",
	}
	StructStruct = &StructDescriptor{
		Identifier:   "Struct",
		Name:         "Struct Definition",
		Description:  "Registered metadata of a data type",
		NameProperty: "identifier",
	}
	PropertyStruct = &StructDescriptor{
		Identifier:   "Property",
		Name:         "Property Definition",
		Description:  "Registered metadata of a struct field",
		NameProperty: "identifier",
	}
)

var propertyTypeItems = NewEnumTable(
	EnumItem{Identifier: "BOOLEAN", Name: "Boolean", Value: int(TypeBoolean)},
	EnumItem{Identifier: "INT", Name: "Integer", Value: int(TypeInt)},
	EnumItem{Identifier: "FLOAT", Name: "Float", Value: int(TypeFloat)},
	EnumItem{Identifier: "STRING", Name: "String", Value: int(TypeString)},
	EnumItem{Identifier: "ENUM", Name: "Enumeration", Value: int(TypeEnum)},
	EnumItem{Identifier: "POINTER", Name: "Pointer", Value: int(TypePointer)},
	EnumItem{Identifier: "COLLECTION", Name: "Collection", Value: int(TypeCollection)},
)

func builtinStructs() []*StructDescriptor {
	return []*StructDescriptor{
		IDStruct, PropertyGroupStruct, AnyTypeStruct,
		MainStruct, RegistryStruct, StructStruct, PropertyStruct,
	}
}

func init() {
	IDStruct.Refine = func(ptr Ptr) *StructDescriptor {
		block, ok := ptr.Data.(IDBlock)
		if !ok || block.IDRef().Type == nil {
			return IDStruct
		}
		return block.IDRef().Type
	}
	IDStruct.IDProperties = func(ptr Ptr, create bool) *idprop.Property {
		block, ok := ptr.Data.(IDBlock)
		if !ok {
			return nil
		}
		id := block.IDRef()
		if id.Properties == nil && create {
			id.Properties = idprop.NewGroup("")
		}
		return id.Properties
	}
	IDStruct.Properties = []*PropertyDescriptor{
		{
			Identifier:  "name",
			Name:        "Name",
			Description: "Unique data block name",
			Type:        TypeString,
			Flag:        PropEditable,
			String: StringSpec{
				MaxLength: 64,
				Get:       func(ptr Ptr) string { return ptr.Data.(IDBlock).IDRef().Name },
				Set:       func(ptr Ptr, value string) { ptr.Data.(IDBlock).IDRef().Name = value },
			},
		},
		{
			Identifier:  "session_uuid",
			Name:        "Session UUID",
			Description: "Identifier of the block for the current session",
			Type:        TypeString,
			String: StringSpec{
				Get: func(ptr Ptr) string { return ptr.Data.(IDBlock).IDRef().SessionUUID.String() },
			},
		},
		{
			Identifier: "is_linked",
			Name:       "Linked",
			Type:       TypeBoolean,
			Bool: BoolSpec{
				Get: func(ptr Ptr) bool { return ptr.Data.(IDBlock).IDRef().IsLinked() },
			},
		},
	}

	PropertyGroupStruct.IDProperties = func(ptr Ptr, create bool) *idprop.Property {
		group, _ := ptr.Data.(*idprop.Property)
		return group
	}
	PropertyGroupStruct.Properties = []*PropertyDescriptor{
		{
			Identifier: "name",
			Name:       "Name",
			Type:       TypeString,
			Flag:       PropEditable | PropIDProperty,
		},
	}

	MainStruct.Properties = []*PropertyDescriptor{
		{
			Identifier: "ids",
			Name:       "Data Blocks",
			Type:       TypeCollection,
			Collection: CollectionSpec{
				Type:   IDStruct,
				Length: func(ptr Ptr) int { return len(ptr.Data.(*Main).blocks) },
				Item:   func(ptr Ptr, index int) any { return ptr.Data.(*Main).blocks[index] },
			},
		},
	}

	RegistryStruct.Properties = []*PropertyDescriptor{
		{
			Identifier: "structs",
			Name:       "Structs",
			Type:       TypeCollection,
			Collection: CollectionSpec{
				Type: StructStruct,
				Length: func(ptr Ptr) int {
					reg := ptr.Data.(*Registry)
					reg.mu.RLock()
					defer reg.mu.RUnlock()
					return len(reg.structs)
				},
				Item: func(ptr Ptr, index int) any {
					reg := ptr.Data.(*Registry)
					reg.mu.RLock()
					defer reg.mu.RUnlock()
					return reg.structs[index]
				},
				LookupString: func(ptr Ptr, key string) (Ptr, bool) {
					s := ptr.Data.(*Registry).Find(key)
					if s == nil {
						return NullPtr, false
					}
					return PointerInheritRefine(ptr, StructStruct, s), true
				},
			},
		},
	}

	structString := func(identifier, name string, get func(*StructDescriptor) string) *PropertyDescriptor {
		return &PropertyDescriptor{
			Identifier: identifier,
			Name:       name,
			Type:       TypeString,
			String: StringSpec{
				Get: func(ptr Ptr) string { return get(ptr.Data.(*StructDescriptor)) },
			},
		}
	}
	StructStruct.Properties = []*PropertyDescriptor{
		structString("identifier", "Identifier", func(s *StructDescriptor) string { return s.Identifier }),
		structString("name", "Name", func(s *StructDescriptor) string { return s.Name }),
		structString("description", "Description", func(s *StructDescriptor) string { return s.Description }),
		{
			Identifier: "base",
			Name:       "Base",
			Type:       TypePointer,
			Pointer: PointerSpec{
				Type: StructStruct,
				Get: func(ptr Ptr) Ptr {
					return PointerInheritRefine(ptr, StructStruct, ptr.Data.(*StructDescriptor).Base)
				},
			},
		},
		{
			Identifier: "properties",
			Name:       "Properties",
			Type:       TypeCollection,
			Collection: CollectionSpec{
				Type: PropertyStruct,
				Length: func(ptr Ptr) int {
					return ptr.Data.(*StructDescriptor).CountProperties()
				},
				Item: func(ptr Ptr, index int) any {
					i := 0
					for prop := range ptr.Data.(*StructDescriptor).AllProperties() {
						if i == index {
							return prop
						}
						i++
					}
					return nil
				},
			},
		},
	}

	propString := func(identifier, name string, get func(*PropertyDescriptor) string) *PropertyDescriptor {
		return &PropertyDescriptor{
			Identifier: identifier,
			Name:       name,
			Type:       TypeString,
			String: StringSpec{
				Get: func(ptr Ptr) string { return get(ptr.Data.(*PropertyDescriptor)) },
			},
		}
	}
	PropertyStruct.Properties = []*PropertyDescriptor{
		propString("identifier", "Identifier", func(p *PropertyDescriptor) string { return p.Identifier }),
		propString("name", "Name", func(p *PropertyDescriptor) string { return p.Name }),
		propString("description", "Description", func(p *PropertyDescriptor) string { return p.Description }),
		{
			Identifier: "type",
			Name:       "Type",
			Type:       TypeEnum,
			Enum: EnumSpec{
				Items: propertyTypeItems,
				Get:   func(ptr Ptr) int { return int(ptr.Data.(*PropertyDescriptor).Type) },
			},
		},
		{
			Identifier: "is_readonly",
			Name:       "Read Only",
			Type:       TypeBoolean,
			Bool: BoolSpec{
				Get: func(ptr Ptr) bool { return ptr.Data.(*PropertyDescriptor).Flag&PropEditable == 0 },
			},
		},
		{
			Identifier: "array_length",
			Name:       "Array Length",
			Type:       TypeInt,
			Int: IntSpec{
				Get: func(ptr Ptr) int { return ptr.Data.(*PropertyDescriptor).totalLength() },
			},
		},
	}
}
