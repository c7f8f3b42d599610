package rna

import (
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// resolveRead resolves ref for a read of kind. ok is false when the
// property is missing or of another kind.
func (r *Registry) resolveRead(ptr Ptr, ref PropertyRef, kind PropertyType) (ResolvedProperty, bool) {
	rp := r.Resolve(ptr, ref)
	if rp.Prop == nil || !kindMatches(rp, kind) {
		return rp, false
	}
	return rp, true
}

// resolveWrite resolves ref for a write of kind and applies the
// editability rules.
func (r *Registry) resolveWrite(ptr Ptr, ref PropertyRef, kind PropertyType, index int) (ResolvedProperty, error) {
	rp := r.Resolve(ptr, ref)
	if rp.Prop == nil {
		return rp, propertyError(ErrNotFound, ptr, ref.Identifier())
	}
	if !kindMatches(rp, kind) {
		return rp, fmt.Errorf("%w: %s.%s is %s, not %s", ErrTypeMismatch, structIdentifier(ptr.Type), rp.Identifier, rp.Prop.Type, kind)
	}
	if err := r.checkEditable(ptr, ref, index); err != nil {
		return rp, err
	}
	return rp, nil
}

// kindMatches accepts dynamic int entries for boolean access since
// booleans are stored as ints.
func kindMatches(rp ResolvedProperty, kind PropertyType) bool {
	if rp.Prop.Type == kind {
		return true
	}
	return kind == TypeBoolean && rp.Outcome == OutcomeDynamic && rp.Prop.Type == TypeInt
}

// materialize stores entry as the instance's first explicit value of the
// property. It requires an editable descriptor and a struct accepting
// dynamic properties.
func (r *Registry) materialize(ptr Ptr, rp ResolvedProperty, entry *idprop.Property) error {
	if rp.Prop.Flag&PropEditable == 0 || !ptr.Type.IDPropertiesCheck() {
		return propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	group := StructIDProperties(ptr, true)
	if group == nil {
		return propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	entry.Name = rp.Identifier
	if !group.Add(entry) {
		return fmt.Errorf("%w: %s.%s holds an entry of another type", ErrTypeMismatch, structIdentifier(ptr.Type), rp.Identifier)
	}
	return nil
}

// writeLength returns the array length a write must provide. A pure
// dynamic property missing on the instance takes the length of the values.
func writeLength(rp ResolvedProperty, n int) int {
	if rp.Outcome == OutcomeDynamic && rp.Entry == nil {
		return n
	}
	return rp.ArrayLen
}

func fill[T any](values []T, value T) {
	for i := range values {
		values[i] = value
	}
}
