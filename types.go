package rna

import "fmt"

// PropertyType is the kind of a property. It never changes after
// registration.
type PropertyType int

const (
	TypeBoolean PropertyType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeEnum
	TypePointer
	TypeCollection
)

func (t PropertyType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypePointer:
		return "pointer"
	case TypeCollection:
		return "collection"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// PropertySubType refines how a value is interpreted and displayed.
type PropertySubType int

const (
	SubtypeNone PropertySubType = iota
	SubtypeFilePath
	SubtypeDirPath
	SubtypeFileName
	SubtypeByteString
	SubtypePassword
	SubtypePixel
	SubtypeUnsigned
	SubtypePercentage
	SubtypeFactor
	SubtypeAngle
	SubtypeTime
	SubtypeDistance
	SubtypeColor
	SubtypeTranslation
	SubtypeDirection
	SubtypeVelocity
	SubtypeAcceleration
	SubtypeMatrix
	SubtypeEuler
	SubtypeQuaternion
	SubtypeAxisAngle
	SubtypeXYZ
	SubtypeXYZLength
	SubtypeColorGamma
	SubtypeCoords
	SubtypeLayer
	SubtypeLayerMember
)

// PropFlag holds property behavior bits.
type PropFlag uint32

const (
	PropEditable PropFlag = 1 << iota
	PropAnimatable
	// PropLibException keeps the property editable on linked data blocks.
	PropLibException
	// PropIDProperty declares the property as a slot backed by the
	// instance's dynamic property store.
	PropIDProperty
	PropNeverNull
	PropEnumFlag
	PropContextUpdate
	contextPropertyUpdateBit
	PropNoDepsUpdate
	// PropRegister marks properties used only while registering types.
	PropRegister
	PropHidden

	// PropContextPropertyUpdate implies PropContextUpdate.
	PropContextPropertyUpdate = PropContextUpdate | contextPropertyUpdateBit
)

// OverrideFlag holds library override behavior bits.
type OverrideFlag uint8

const (
	OverrideOverridableLibrary OverrideFlag = 1 << iota
	OverrideNoComparison
	// OverrideLibraryInsertion allows inserting items into the collection on
	// a library override.
	OverrideLibraryInsertion
)

// InternFlag holds bits maintained by the registry and binding helpers.
type InternFlag uint8

const (
	// InternBuiltin hides the property from name lookup.
	InternBuiltin InternFlag = 1 << iota
	InternRuntime
	// InternRawAccess marks a property stored at a fixed offset of its
	// struct, see BindField.
	InternRawAccess
	// InternRawArray marks a collection whose items are contiguous.
	InternRawArray
)

// StructFlag holds struct behavior bits.
type StructFlag uint8

const (
	// StructFlagID marks identity-bearing data block types.
	StructFlagID StructFlag = 1 << iota
	StructFlagUndo
	StructFlagNoIDProperties
	StructFlagNoDatablockIDProperties
	StructFlagContainsDatablockIDProperties
	StructFlagRuntime
)

// IDFlag holds data block state consulted by the editability rules.
type IDFlag uint8

const (
	// IDLinked marks a data block linked from another file.
	IDLinked IDFlag = 1 << iota
	// IDOverrideLibrary marks a local library override of a linked block.
	IDOverrideLibrary
)

// RecalcFlag describes what changed on a data block.
type RecalcFlag uint8

const (
	RecalcTransform RecalcFlag = 1 << iota
	RecalcGeometry
	RecalcParameters
	RecalcCopyOnWrite

	RecalcAll = RecalcTransform | RecalcGeometry | RecalcParameters
)

// Note is a lightweight redraw notifier code.
type Note uint32

const (
	NoteWindow Note = 1 << 24
	NoteScene  Note = 2 << 24
	NoteObject Note = 3 << 24
)

// MaxArrayDimension bounds multi dimensional arrays.
const MaxArrayDimension = 3

// MaxRefineDepth bounds the refine walk performed by the pointer
// constructors.
const MaxRefineDepth = 32
