package rna

import "slices"

// EnumItem is one entry of an EnumTable. An item with an empty Identifier is
// a separator or heading and is skipped by lookups.
type EnumItem struct {
	Identifier  string
	Name        string
	Description string
	Icon        int
	Value       int
}

// EnumTable is an immutable list of enum items.
type EnumTable struct {
	items []EnumItem
}

// NewEnumTable copies items into a table.
func NewEnumTable(items ...EnumItem) *EnumTable {
	return &EnumTable{items: slices.Clone(items)}
}

// Items returns a copy of the table items, separators included.
func (t *EnumTable) Items() []EnumItem {
	if t == nil {
		return nil
	}
	return slices.Clone(t.items)
}

// Len returns the number of items, separators included.
func (t *EnumTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.items)
}

// FindValue returns the first item holding value.
func (t *EnumTable) FindValue(value int) (EnumItem, bool) {
	if t == nil {
		return EnumItem{}, false
	}
	for _, item := range t.items {
		if item.Identifier != "" && item.Value == value {
			return item, true
		}
	}
	return EnumItem{}, false
}

// FindIdentifier returns the item named identifier.
func (t *EnumTable) FindIdentifier(identifier string) (EnumItem, bool) {
	if t == nil || identifier == "" {
		return EnumItem{}, false
	}
	for _, item := range t.items {
		if item.Identifier == identifier {
			return item, true
		}
	}
	return EnumItem{}, false
}

// Identifier returns the identifier of value.
func (t *EnumTable) Identifier(value int) (string, bool) {
	item, ok := t.FindValue(value)
	return item.Identifier, ok
}

// Value returns the value of identifier.
func (t *EnumTable) Value(identifier string) (int, bool) {
	item, ok := t.FindIdentifier(identifier)
	return item.Value, ok
}

// BitflagIdentifiers returns the identifiers of every item whose bits are
// all set in mask, in table order.
func (t *EnumTable) BitflagIdentifiers(mask int) []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, item := range t.items {
		if item.Identifier == "" || item.Value == 0 {
			continue
		}
		if mask&item.Value == item.Value {
			out = append(out, item.Identifier)
		}
	}
	return out
}

// BitflagValue combines the values of identifiers. It reports false when an
// identifier is unknown.
func (t *EnumTable) BitflagValue(identifiers ...string) (int, bool) {
	mask := 0
	for _, id := range identifiers {
		value, ok := t.Value(id)
		if !ok {
			return 0, false
		}
		mask |= value
	}
	return mask, true
}
