package defs

import (
	"fmt"

	rna "github.com/goliatone/go-rna"
)

// Block is a data block of a declared type without a bound Go type. All of
// its properties live in its ID properties.
type Block struct {
	rna.ID
}

// New returns a block of the declared data block type identifier.
func (s *Set) New(identifier, name string) (*Block, error) {
	typ := s.structs[identifier]
	if typ == nil {
		return nil, fmt.Errorf("%w: struct %q", rna.ErrNotFound, identifier)
	}
	if !typ.IsID() {
		return nil, fmt.Errorf("defs: %s is not a data block type", identifier)
	}
	return &Block{ID: rna.NewID(name, typ)}, nil
}
