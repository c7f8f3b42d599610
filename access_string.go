package rna

import (
	"context"
	"unicode/utf8"

	"github.com/goliatone/go-rna/idprop"
)

// StringGet returns the value of a string property.
func (r *Registry) StringGet(ptr Ptr, ref PropertyRef) string {
	rp, ok := r.resolveRead(ptr, ref, TypeString)
	if !ok {
		return ""
	}
	if rp.Entry != nil {
		return rp.Entry.Str()
	}
	prop := rp.Prop
	switch {
	case prop.String.Get != nil:
		return prop.String.Get(ptr)
	case prop.String.GetEx != nil:
		return prop.String.GetEx(ptr, prop)
	}
	return r.StringGetDefault(ptr, ref)
}

// StringLength returns the byte length of the value.
func (r *Registry) StringLength(ptr Ptr, ref PropertyRef) int {
	return len(r.StringGet(ptr, ref))
}

// StringMaxLength returns the maximum length in characters, zero when
// unlimited.
func StringMaxLength(ref PropertyRef) int {
	if ref.static == nil {
		return 0
	}
	return ref.static.String.MaxLength
}

// StringSet writes a string property. Values longer than the maximum
// length are cut at a character boundary.
func (r *Registry) StringSet(ctx context.Context, ptr Ptr, ref PropertyRef, value string) error {
	rp, err := r.resolveWrite(ptr, ref, TypeString, -1)
	if err != nil {
		return err
	}
	value = truncate(value, StringMaxLength(ref))

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		rp.Entry.SetStr(value)
		rp.Entry.Touch()
	case prop.String.Set != nil:
		prop.String.Set(ptr, value)
	case prop.String.SetEx != nil:
		prop.String.SetEx(ptr, prop, value)
	default:
		if err := r.materialize(ptr, rp, idprop.NewString(rp.Identifier, value)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// StringGetDefault returns the default of a string property.
func (r *Registry) StringGetDefault(ptr Ptr, ref PropertyRef) string {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.String != nil {
			return ui.String.Default
		}
		return ""
	}
	prop := ref.static
	if prop == nil {
		return ""
	}
	if prop.String.GetDefault != nil {
		return prop.String.GetDefault(ptr, prop)
	}
	return prop.String.Default
}

func truncate(value string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(value) <= maxLength {
		return value
	}
	n := 0
	for i := range value {
		if n == maxLength {
			return value[:i]
		}
		n++
	}
	return value
}
