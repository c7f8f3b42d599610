package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/goliatone/go-rna/idprop"
)

// RefKey marks a nested object as a foreign reference: {"$id": "Material"}.
const RefKey = "$id"

// Context carries identifiers tied to a settings payload.
type Context struct {
	// Key is the storage key of the payload, used in error messages.
	Key string
	// Name names the root group.
	Name string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated group after decoding.
type PostHook func(Context, *idprop.Property) error

// CustomDecoder replaces the default conversion when provided.
type CustomDecoder func(Context, map[string]any) (*idprop.Property, error)

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts plain JSON settings into ID property groups.
//
// Strings become String entries, booleans become Int entries holding 0 or 1,
// integral numbers become Int entries and other numbers Double entries.
// Uniform numeric lists become arrays, lists of objects become group arrays
// and objects become groups with their keys in sorted order.
type Decoder struct {
	preHooks     []PreHook
	postHooks    []PostHook
	configureDec []func(*json.Decoder)
	custom       CustomDecoder
	single       bool
	strict       bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder used by
// DecodeJSON.
func WithDecoderConfig(configure func(*json.Decoder)) DecoderOption {
	return func(d *Decoder) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

// WithCustomDecoder replaces the default conversion path.
func WithCustomDecoder(decoder CustomDecoder) DecoderOption {
	return func(d *Decoder) {
		d.custom = decoder
	}
}

// WithSinglePrecision stores fractional numbers as Float entries.
func WithSinglePrecision() DecoderOption {
	return func(d *Decoder) {
		d.single = true
	}
}

// WithStrict rejects null values and mixed lists instead of skipping them.
func WithStrict() DecoderOption {
	return func(d *Decoder) {
		d.strict = true
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeJSON parses data as a JSON object and converts it with Decode.
func (d *Decoder) DecodeJSON(ctx Context, data []byte) (*idprop.Property, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("hydrate: decode %q: %w", ctx.Key, err)
	}
	return d.Decode(ctx, payload)
}

// Decode converts payload into a group applying configured hooks.
func (d *Decoder) Decode(ctx Context, payload map[string]any) (*idprop.Property, error) {
	if payload == nil {
		return nil, fmt.Errorf("hydrate: payload is nil for %q", ctx.Key)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("hydrate: clone payload for %q: %w", ctx.Key, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Key, err)
		}
		if next != nil {
			current = next
		}
	}

	var group *idprop.Property
	if d.custom != nil {
		group, err = d.custom(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: custom decoder for %q failed: %w", ctx.Key, err)
		}
		if group == nil || group.Type() != idprop.Group {
			return nil, fmt.Errorf("hydrate: custom decoder for %q did not return a group", ctx.Key)
		}
	} else {
		group, err = d.group(ctx.Name, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: decode %q: %w", ctx.Key, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, group); err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Key, err)
		}
	}

	return group, nil
}

func (d *Decoder) group(name string, payload map[string]any) (*idprop.Property, error) {
	group := idprop.NewGroup(name)
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("unnamed entry in %q", name)
		}
		entry, err := d.entry(key, payload[key])
		if err != nil {
			return nil, err
		}
		if entry != nil {
			group.Add(entry)
		}
	}
	return group, nil
}

func (d *Decoder) entry(name string, value any) (*idprop.Property, error) {
	switch v := value.(type) {
	case nil:
		if d.strict {
			return nil, fmt.Errorf("entry %q is null", name)
		}
		return nil, nil
	case string:
		return idprop.NewString(name, v), nil
	case bool:
		return idprop.NewBool(name, v), nil
	case json.Number, float64, float32, int, int32, int64:
		f, i, isInt, err := number(v)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		if isInt {
			return idprop.NewInt(name, int(i)), nil
		}
		if d.single {
			return idprop.NewFloat(name, float32(f)), nil
		}
		return idprop.NewDouble(name, f), nil
	case map[string]any:
		if ref, ok := v[RefKey].(string); ok && len(v) == 1 {
			return idprop.NewIDRef(name, idprop.RefName(ref)), nil
		}
		return d.group(name, v)
	case []any:
		return d.list(name, v)
	default:
		return nil, fmt.Errorf("entry %q: unsupported value %T", name, value)
	}
}

func (d *Decoder) list(name string, values []any) (*idprop.Property, error) {
	if len(values) == 0 {
		return idprop.NewDoubleArray(name, nil), nil
	}
	if _, ok := values[0].(map[string]any); ok {
		out := idprop.NewGroupArray(name)
		for i, value := range values {
			m, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %q: item %d is %T, not an object", name, i, value)
			}
			item, err := d.group("", m)
			if err != nil {
				return nil, err
			}
			slot := out.Append()
			for _, child := range item.Properties() {
				slot.Add(child)
			}
		}
		return out, nil
	}

	floats := make([]float64, len(values))
	ints := make([]int, len(values))
	allInt := true
	for i, value := range values {
		if b, ok := value.(bool); ok {
			floats[i] = float64(boolToInt(b))
			ints[i] = boolToInt(b)
			continue
		}
		f, n, isInt, err := number(value)
		if err != nil {
			if d.strict {
				return nil, fmt.Errorf("entry %q: item %d: %w", name, i, err)
			}
			return nil, nil
		}
		floats[i], ints[i] = f, int(n)
		allInt = allInt && isInt
	}
	switch {
	case allInt:
		return idprop.NewIntArray(name, ints), nil
	case d.single:
		singles := make([]float32, len(floats))
		for i, f := range floats {
			singles[i] = float32(f)
		}
		return idprop.NewFloatArray(name, singles), nil
	default:
		return idprop.NewDoubleArray(name, floats), nil
	}
}

// number returns the float value of value and, for integral values, the
// exact integer.
func number(value any) (float64, int64, bool, error) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return float64(i), i, true, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, 0, false, err
		}
		return f, 0, false, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return v, int64(v), true, nil
		}
		return v, 0, false, nil
	case float32:
		return number(float64(v))
	case int:
		return float64(v), int64(v), true, nil
	case int32:
		return float64(v), int64(v), true, nil
	case int64:
		return float64(v), v, true, nil
	default:
		return 0, 0, false, fmt.Errorf("%T is not a number", value)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	decoder.UseNumber()
	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
