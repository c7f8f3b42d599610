package defs

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	rna "github.com/goliatone/go-rna"
	"github.com/goliatone/go-rna/idprop"
	"github.com/goliatone/go-rna/internal/hydrate"
)

// ErrInvalid is returned when a definitions file has error reports.
var ErrInvalid = errors.New("defs: invalid definitions")

type binder func(field string, prop *rna.PropertyDescriptor) (*rna.PropertyDescriptor, error)

// Option configures a Builder.
type Option func(*Builder)

// BindType backs the properties of struct identifier that name a field with
// the fields of T. Instances of the struct must hold a *T.
func BindType[T any](identifier string) Option {
	return func(b *Builder) {
		b.binders[identifier] = func(field string, prop *rna.PropertyDescriptor) (*rna.PropertyDescriptor, error) {
			return rna.BindField[T](field, prop)
		}
		b.types[identifier] = reflect.TypeFor[T]()
	}
}

// WithDecoder overrides the decoder used for custom properties.
func WithDecoder(decoder *hydrate.Decoder) Option {
	return func(b *Builder) {
		if decoder != nil {
			b.decoder = decoder
		}
	}
}

// Builder turns definitions into registered struct descriptors.
type Builder struct {
	reg     *rna.Registry
	binders map[string]binder
	types   map[string]reflect.Type
	decoder *hydrate.Decoder
}

// NewBuilder returns a builder registering into reg.
func NewBuilder(reg *rna.Registry, opts ...Option) *Builder {
	b := &Builder{
		reg:     reg,
		binders: map[string]binder{},
		types:   map[string]reflect.Type{},
		decoder: hydrate.NewDecoder(hydrate.WithSinglePrecision()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Set holds the structs registered from one file.
type Set struct {
	structs  map[string]*rna.StructDescriptor
	defaults map[string]*idprop.Property
	order    []string
}

// Struct returns the registered descriptor of identifier.
func (s *Set) Struct(identifier string) *rna.StructDescriptor {
	return s.structs[identifier]
}

// Identifiers returns the registered identifiers in declaration order.
func (s *Set) Identifiers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Defaults returns a copy of the default ID properties of identifier: one
// entry per property stored in ID properties, plus the custom entries.
func (s *Set) Defaults(identifier string) *idprop.Property {
	group := s.defaults[identifier]
	if group == nil {
		return nil
	}
	return group.Copy()
}

// Register validates f and registers its structs in order. Problems are
// added to reports; when any is an error nothing is registered and the
// joined reports are returned wrapped in ErrInvalid.
func (b *Builder) Register(f *File, reports *rna.ReportList) (*Set, error) {
	if reports == nil {
		reports = &rna.ReportList{}
	}
	set := &Set{
		structs:  map[string]*rna.StructDescriptor{},
		defaults: map[string]*idprop.Property{},
	}
	if f == nil {
		reports.Addf(rna.ReportError, "definitions file is nil")
		return nil, fmt.Errorf("%w: %w", ErrInvalid, reports.Err())
	}

	built := make([]*rna.StructDescriptor, 0, len(f.Structs))
	for _, def := range f.Structs {
		s := b.buildStruct(def, set, reports)
		if s == nil {
			continue
		}
		set.structs[def.Identifier] = s
		set.order = append(set.order, def.Identifier)
		built = append(built, s)
	}
	if reports.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, reports.Err())
	}

	for i, s := range built {
		if err := b.reg.Register(s); err != nil {
			for _, done := range built[:i] {
				_ = b.reg.Unregister(done.Identifier)
			}
			return nil, fmt.Errorf("defs: register %s: %w", s.Identifier, err)
		}
	}
	return set, nil
}

func (b *Builder) buildStruct(def StructDef, set *Set, reports *rna.ReportList) *rna.StructDescriptor {
	if def.Identifier == "" {
		reports.Addf(rna.ReportError, "struct without identifier")
		return nil
	}
	if _, dup := set.structs[def.Identifier]; dup {
		reports.Addf(rna.ReportError, "Type identifier '%s' is declared twice.", def.Identifier)
		return nil
	}
	if !b.reg.StructAvailableOrReport(reports, def.Identifier) {
		return nil
	}
	base := b.lookup(def.Base, set)
	if base == nil {
		reports.Addf(rna.ReportError, "%s: unknown base '%s'", def.Identifier, def.Base)
		return nil
	}
	if !base.IsA(rna.IDStruct) && !base.IsA(rna.PropertyGroupStruct) {
		reports.Addf(rna.ReportError, "%s: base '%s' is neither a data block nor a property group", def.Identifier, def.Base)
		return nil
	}

	s := &rna.StructDescriptor{
		Identifier:   def.Identifier,
		Name:         def.Name,
		Description:  def.Description,
		Base:         base,
		NameProperty: def.NameProperty,
	}
	if base.IsID() {
		s.Flag |= rna.StructFlagID
	}
	if def.Undo {
		s.Flag |= rna.StructFlagUndo
	}

	bind := b.binders[def.Identifier]
	defaults := idprop.NewGroup("")
	seen := map[string]bool{}
	for _, pdef := range def.Properties {
		if pdef.Identifier == "" {
			reports.Addf(rna.ReportError, "%s: property without identifier", def.Identifier)
			continue
		}
		if seen[pdef.Identifier] || base.FindProperty(pdef.Identifier) != nil {
			reports.Addf(rna.ReportError, "%s: property '%s' is already defined", def.Identifier, pdef.Identifier)
			continue
		}
		seen[pdef.Identifier] = true

		prop, err := b.buildProperty(def.Identifier, pdef, set)
		if err != nil {
			reports.Addf(rna.ReportError, "%s.%s: %v", def.Identifier, pdef.Identifier, err)
			continue
		}
		if pdef.Field != "" {
			if bind == nil {
				reports.Addf(rna.ReportError, "%s.%s: field '%s' given but no Go type is bound", def.Identifier, pdef.Identifier, pdef.Field)
				continue
			}
			declared := prop.Type
			if prop, err = bind(pdef.Field, prop); err != nil {
				reports.Addf(rna.ReportError, "%s.%s: %v", def.Identifier, pdef.Identifier, err)
				continue
			}
			if prop.Type != declared {
				reports.Addf(rna.ReportError, "%s.%s: field '%s' holds %s, declared %s", def.Identifier, pdef.Identifier, pdef.Field, prop.Type, declared)
				continue
			}
		} else {
			prop.Flag |= rna.PropIDProperty
			if entry := defaultEntry(prop); entry != nil {
				defaults.Add(entry)
			}
		}
		s.Properties = append(s.Properties, prop)
	}

	if len(def.Custom) > 0 {
		custom, err := b.decoder.Decode(hydrate.Context{Key: def.Identifier}, def.Custom)
		if err != nil {
			reports.Addf(rna.ReportError, "%s: custom properties: %v", def.Identifier, err)
		} else {
			for _, entry := range custom.Properties() {
				if seen[entry.Name] {
					reports.Addf(rna.ReportError, "%s: custom property '%s' shadows a declared property", def.Identifier, entry.Name)
					continue
				}
				defaults.Add(entry.Copy())
			}
		}
	}

	if typ, ok := b.types[def.Identifier]; ok {
		s.Instance = func(ptr rna.Ptr) any { return ptr.Data }
		s.Register = func(_ *rna.Registry, s *rna.StructDescriptor) error {
			if !reflect.PointerTo(typ).Implements(reflect.TypeFor[rna.IDBlock]()) && s.IsID() {
				return fmt.Errorf("%s does not embed rna.ID", typ)
			}
			return nil
		}
	}
	set.defaults[def.Identifier] = defaults
	return s
}

func (b *Builder) lookup(identifier string, set *Set) *rna.StructDescriptor {
	if s, ok := set.structs[identifier]; ok {
		return s
	}
	return b.reg.Find(identifier)
}

func (b *Builder) buildProperty(owner string, def PropertyDef, set *Set) (*rna.PropertyDescriptor, error) {
	prop := &rna.PropertyDescriptor{
		Identifier:  def.Identifier,
		Name:        def.Name,
		Description: def.Description,
	}
	if !def.ReadOnly {
		prop.Flag |= rna.PropEditable
	}
	if def.Animatable {
		prop.Flag |= rna.PropAnimatable
	}
	if def.LibException {
		prop.Flag |= rna.PropLibException
	}
	if def.Overridable {
		prop.Override |= rna.OverrideOverridableLibrary
	}

	subtype, ok := ParseSubtype(def.Subtype)
	if !ok {
		return nil, fmt.Errorf("unknown subtype %q", def.Subtype)
	}
	prop.Subtype = subtype

	if len(def.Size) > rna.MaxArrayDimension {
		return nil, fmt.Errorf("%d dimensions, at most %d", len(def.Size), rna.MaxArrayDimension)
	}
	for _, n := range def.Size {
		if n <= 0 {
			return nil, fmt.Errorf("invalid array length %d", n)
		}
	}
	if len(def.Size) > 0 {
		prop.ArrayLength = append([]int(nil), def.Size...)
	}
	total := arrayTotal(def.Size)

	switch def.Type {
	case "boolean", "bool":
		prop.Type = rna.TypeBoolean
		if total > 0 {
			values, err := boolList(def.Default, total)
			if err != nil {
				return nil, err
			}
			prop.Bool.DefaultArray = values
		} else if def.Default != nil {
			v, ok := def.Default.(bool)
			if !ok {
				return nil, fmt.Errorf("default %v is not a boolean", def.Default)
			}
			prop.Bool.Default = v
		}

	case "int":
		prop.Type = rna.TypeInt
		if def.Min != nil || def.Max != nil {
			prop.Int.HardMin, prop.Int.HardMax = intRange(def.Min, def.Max)
		}
		if def.SoftMin != nil || def.SoftMax != nil {
			prop.Int.SoftMin, prop.Int.SoftMax = intRange(def.SoftMin, def.SoftMax)
		}
		prop.Int.Step = int(def.Step)
		if total > 0 {
			values, err := numberList(def.Default, total)
			if err != nil {
				return nil, err
			}
			prop.Int.DefaultArray = make([]int, total)
			for i, v := range values {
				prop.Int.DefaultArray[i] = int(v)
			}
		} else if def.Default != nil {
			v, ok := toNumber(def.Default)
			if !ok {
				return nil, fmt.Errorf("default %v is not a number", def.Default)
			}
			prop.Int.Default = int(v)
		}

	case "float":
		prop.Type = rna.TypeFloat
		if def.Min != nil || def.Max != nil {
			prop.Float.HardMin, prop.Float.HardMax = floatRange(def.Min, def.Max)
		}
		if def.SoftMin != nil || def.SoftMax != nil {
			prop.Float.SoftMin, prop.Float.SoftMax = floatRange(def.SoftMin, def.SoftMax)
		}
		prop.Float.Step = float32(def.Step)
		prop.Float.Precision = def.Precision
		if total > 0 {
			values, err := numberList(def.Default, total)
			if err != nil {
				return nil, err
			}
			prop.Float.DefaultArray = make([]float32, total)
			for i, v := range values {
				prop.Float.DefaultArray[i] = float32(v)
			}
		} else if def.Default != nil {
			v, ok := toNumber(def.Default)
			if !ok {
				return nil, fmt.Errorf("default %v is not a number", def.Default)
			}
			prop.Float.Default = float32(v)
		}

	case "string":
		if total > 0 {
			return nil, errors.New("string properties cannot be arrays")
		}
		prop.Type = rna.TypeString
		prop.String.MaxLength = def.MaxLength
		if def.Default != nil {
			v, ok := def.Default.(string)
			if !ok {
				return nil, fmt.Errorf("default %v is not a string", def.Default)
			}
			prop.String.Default = v
		}

	case "enum":
		if total > 0 {
			return nil, errors.New("enum properties cannot be arrays")
		}
		if len(def.Items) == 0 {
			return nil, errors.New("enum without items")
		}
		prop.Type = rna.TypeEnum
		if def.Flag {
			prop.Flag |= rna.PropEnumFlag
		}
		items := make([]rna.EnumItem, 0, len(def.Items))
		for _, item := range def.Items {
			if item.Identifier == "" {
				return nil, errors.New("enum item without identifier")
			}
			name := item.Name
			if name == "" {
				name = item.Identifier
			}
			items = append(items, rna.EnumItem{
				Identifier:  item.Identifier,
				Name:        name,
				Description: item.Description,
				Value:       item.Value,
			})
		}
		prop.Enum.Items = rna.NewEnumTable(items...)
		value, err := enumDefault(prop.Enum.Items, def.Default, def.Flag)
		if err != nil {
			return nil, err
		}
		prop.Enum.Default = value

	case "pointer":
		if total > 0 {
			return nil, errors.New("pointer properties cannot be arrays")
		}
		target := b.lookup(def.Struct, set)
		if target == nil && def.Struct == owner {
			return nil, errors.New("pointer to its own struct")
		}
		if target == nil {
			return nil, fmt.Errorf("unknown struct '%s'", def.Struct)
		}
		prop.Type = rna.TypePointer
		prop.Pointer.Type = target

	default:
		return nil, fmt.Errorf("unknown type %q", def.Type)
	}
	return prop, nil
}

// defaultEntry returns the stored form of the default of prop, or nil for
// kinds without one.
func defaultEntry(prop *rna.PropertyDescriptor) *idprop.Property {
	name := prop.Identifier
	switch prop.Type {
	case rna.TypeBoolean:
		if prop.IsArray() {
			values := make([]int, len(prop.Bool.DefaultArray))
			for i, v := range prop.Bool.DefaultArray {
				if v {
					values[i] = 1
				}
			}
			return idprop.NewIntArray(name, values)
		}
		return idprop.NewBool(name, prop.Bool.Default)
	case rna.TypeInt:
		if prop.IsArray() {
			return idprop.NewIntArray(name, prop.Int.DefaultArray)
		}
		return idprop.NewInt(name, prop.Int.Default)
	case rna.TypeFloat:
		if prop.IsArray() {
			return idprop.NewFloatArray(name, prop.Float.DefaultArray)
		}
		return idprop.NewFloat(name, prop.Float.Default)
	case rna.TypeString:
		return idprop.NewString(name, prop.String.Default)
	case rna.TypeEnum:
		return idprop.NewInt(name, prop.Enum.Default)
	}
	return nil
}

func enumDefault(items *rna.EnumTable, value any, flag bool) (int, error) {
	switch v := value.(type) {
	case nil:
		if flag || items.Len() == 0 {
			return 0, nil
		}
		return items.Items()[0].Value, nil
	case string:
		if n, ok := items.Value(v); ok {
			return n, nil
		}
		return 0, fmt.Errorf("default '%s' is not an item", v)
	case []any:
		if !flag {
			return 0, errors.New("list default on a non flag enum")
		}
		identifiers := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return 0, fmt.Errorf("default item %v is not an identifier", item)
			}
			identifiers = append(identifiers, s)
		}
		mask, ok := items.BitflagValue(identifiers...)
		if !ok {
			return 0, fmt.Errorf("default %v names unknown items", identifiers)
		}
		return mask, nil
	}
	return 0, fmt.Errorf("default %v is not an item identifier", value)
}

func arrayTotal(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	total := 1
	for _, n := range dims {
		total *= n
	}
	return total
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// numberList expands a scalar default to every element and checks the
// length of list defaults.
func numberList(value any, n int) ([]float64, error) {
	out := make([]float64, n)
	switch v := value.(type) {
	case nil:
		return out, nil
	case []any:
		if len(v) != n {
			return nil, fmt.Errorf("default has %d elements, expected %d", len(v), n)
		}
		for i, item := range v {
			f, ok := toNumber(item)
			if !ok {
				return nil, fmt.Errorf("default element %v is not a number", item)
			}
			out[i] = f
		}
		return out, nil
	}
	f, ok := toNumber(value)
	if !ok {
		return nil, fmt.Errorf("default %v is not a number", value)
	}
	for i := range out {
		out[i] = f
	}
	return out, nil
}

func boolList(value any, n int) ([]bool, error) {
	out := make([]bool, n)
	switch v := value.(type) {
	case nil:
		return out, nil
	case bool:
		for i := range out {
			out[i] = v
		}
		return out, nil
	case []any:
		if len(v) != n {
			return nil, fmt.Errorf("default has %d elements, expected %d", len(v), n)
		}
		for i, item := range v {
			b, ok := item.(bool)
			if !ok {
				return nil, fmt.Errorf("default element %v is not a boolean", item)
			}
			out[i] = b
		}
		return out, nil
	}
	return nil, fmt.Errorf("default %v is not a boolean", value)
}

// intRange fills a missing bound so that a one sided range is not read as
// unbounded.
func intRange(lo, hi *float64) (int, int) {
	from, to := math.MinInt32, math.MaxInt32
	if lo != nil {
		from = int(*lo)
	}
	if hi != nil {
		to = int(*hi)
	}
	return from, to
}

func floatRange(lo, hi *float64) (float32, float32) {
	from, to := float32(-math.MaxFloat32), float32(math.MaxFloat32)
	if lo != nil {
		from = float32(*lo)
	}
	if hi != nil {
		to = float32(*hi)
	}
	return from, to
}

var subtypes = map[string]rna.PropertySubType{
	"":             rna.SubtypeNone,
	"none":         rna.SubtypeNone,
	"file_path":    rna.SubtypeFilePath,
	"dir_path":     rna.SubtypeDirPath,
	"file_name":    rna.SubtypeFileName,
	"byte_string":  rna.SubtypeByteString,
	"password":     rna.SubtypePassword,
	"pixel":        rna.SubtypePixel,
	"unsigned":     rna.SubtypeUnsigned,
	"percentage":   rna.SubtypePercentage,
	"factor":       rna.SubtypeFactor,
	"angle":        rna.SubtypeAngle,
	"time":         rna.SubtypeTime,
	"distance":     rna.SubtypeDistance,
	"color":        rna.SubtypeColor,
	"translation":  rna.SubtypeTranslation,
	"direction":    rna.SubtypeDirection,
	"velocity":     rna.SubtypeVelocity,
	"acceleration": rna.SubtypeAcceleration,
	"matrix":       rna.SubtypeMatrix,
	"euler":        rna.SubtypeEuler,
	"quaternion":   rna.SubtypeQuaternion,
	"axis_angle":   rna.SubtypeAxisAngle,
	"xyz":          rna.SubtypeXYZ,
	"xyz_length":   rna.SubtypeXYZLength,
	"color_gamma":  rna.SubtypeColorGamma,
	"coords":       rna.SubtypeCoords,
	"layer":        rna.SubtypeLayer,
	"layer_member": rna.SubtypeLayerMember,
}

// ParseSubtype converts a lower case subtype name to its constant.
func ParseSubtype(name string) (rna.PropertySubType, bool) {
	subtype, ok := subtypes[strings.ToLower(name)]
	return subtype, ok
}
