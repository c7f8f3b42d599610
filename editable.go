package rna

import "github.com/goliatone/go-rna/idprop"

// Reasons reported when a property cannot be edited.
const (
	ReasonInternal = "This property is for internal use only and can't be edited"
	ReasonLinked   = "Can't edit this data-block"
	ReasonOverride = "Can't edit this property from an override data-block"
)

// Editable reports whether the property can be written on ptr.
func (r *Registry) Editable(ptr Ptr, ref PropertyRef) bool {
	ok, _ := r.EditableInfo(ptr, ref)
	return ok
}

// EditableInfo reports whether the property can be written on ptr and,
// when it cannot, why. Rules apply in order: internal flags, unowned
// structs, linked blocks, then library overrides.
func (r *Registry) EditableInfo(ptr Ptr, ref PropertyRef) (bool, string) {
	return r.editable(ptr, ref, -1)
}

// EditableIndex is EditableInfo for one array item, also consulting the
// item editability callback.
func (r *Registry) EditableIndex(ptr Ptr, ref PropertyRef, index int) (bool, string) {
	return r.editable(ptr, ref, index)
}

func (r *Registry) editable(ptr Ptr, ref PropertyRef, index int) (bool, string) {
	prop := dispatch(ref)
	if prop == nil {
		return false, ReasonInternal
	}

	flag := prop.Flag
	info := ""
	if prop.EditableFunc != nil {
		flag, info = prop.EditableFunc(ptr)
	}
	if index >= 0 && prop.ItemEditable != nil && !prop.ItemEditable(ptr, index) {
		flag &^= PropEditable
	}
	if flag&PropEditable == 0 || flag&PropRegister != 0 {
		if info == "" {
			info = ReasonInternal
		}
		return false, info
	}

	id := ptr.Owner
	if id == nil {
		return true, ""
	}
	if id.IsLinked() && prop.Flag&PropLibException == 0 {
		return false, ReasonLinked
	}
	if id.IsOverrideLibrary() && !Overridable(ptr, ref) {
		return false, ReasonOverride
	}
	return true, ""
}

// Overridable reports whether the property may differ on a library
// override. Registered properties use their override flags; pure dynamic
// entries use their own flags.
func Overridable(ptr Ptr, ref PropertyRef) bool {
	if ref.static != nil {
		o := ref.static.Override
		return o&OverrideNoComparison == 0 && o&OverrideOverridableLibrary != 0
	}
	if ref.dynamic != nil {
		return ref.dynamic.Flag&(idprop.FlagOverridableLibrary|idprop.FlagOverrideLibraryLocal) != 0
	}
	return false
}

// CollectionInsertable reports whether items may be inserted into or
// reordered in the collection. On library overrides this additionally
// requires a dynamic slot allowing insertion.
func (r *Registry) CollectionInsertable(ptr Ptr, ref PropertyRef) bool {
	if !r.Editable(ptr, ref) {
		return false
	}
	if !ptr.Owner.IsOverrideLibrary() {
		return true
	}
	prop := ref.static
	return prop != nil && prop.Flag&PropIDProperty != 0 && prop.Override&OverrideLibraryInsertion != 0
}

// checkEditable returns an *EditError when the property cannot be written.
func (r *Registry) checkEditable(ptr Ptr, ref PropertyRef, index int) error {
	ok, reason := r.editable(ptr, ref, index)
	if ok {
		return nil
	}
	return &EditError{
		Struct:   structIdentifier(ptr.Type),
		Property: ref.Identifier(),
		Reason:   reason,
	}
}
