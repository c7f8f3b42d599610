package rna

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing struct, property or collection item.
	ErrNotFound = errors.New("rna: not found")
	// ErrTypeMismatch reports a value or entry incompatible with the
	// declared property kind.
	ErrTypeMismatch = errors.New("rna: type mismatch")
	// ErrNotEditable reports a write rejected by the editability rules.
	ErrNotEditable = errors.New("rna: property not editable")
	// ErrDuplicateStruct reports a second registration of an identifier.
	ErrDuplicateStruct = errors.New("rna: duplicate struct identifier")
	// ErrPathInvalid reports a malformed property path.
	ErrPathInvalid = errors.New("rna: invalid path")
	// ErrIndexOutOfRange reports an array or collection index outside the
	// current length.
	ErrIndexOutOfRange = errors.New("rna: index out of range")
	// ErrArrayLength reports a value slice shorter than the property array.
	ErrArrayLength = errors.New("rna: array length mismatch")
	// ErrUnsupported reports an operation the property cannot perform, such
	// as structural edits of a static collection.
	ErrUnsupported = errors.New("rna: unsupported operation")
	// ErrPollRejected reports a pointer assignment refused by the poll
	// callback.
	ErrPollRejected = errors.New("rna: pointer value rejected")
	// ErrRawLength reports a raw transfer buffer whose length does not match
	// the collection.
	ErrRawLength = errors.New("rna: raw buffer length mismatch")
)

// EditError carries the reason a write was rejected.
type EditError struct {
	Struct   string
	Property string
	Reason   string
}

func (e *EditError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("rna: %s.%s not editable: %s", e.Struct, e.Property, e.Reason)
}

func (e *EditError) Unwrap() error {
	return ErrNotEditable
}

func propertyError(err error, ptr Ptr, identifier string) error {
	return fmt.Errorf("%w: %s.%s", err, structIdentifier(ptr.Type), identifier)
}

func structIdentifier(s *StructDescriptor) string {
	if s == nil {
		return "<nil>"
	}
	return s.Identifier
}
