package rna

import "math"

const (
	minInt   = math.MinInt32
	maxInt   = math.MaxInt32
	maxFloat = math.MaxFloat32
)

type number interface {
	~int | ~float32
}

// clamp limits value to [lo, hi] and reports -1, 0 or 1 for clamped low,
// unchanged or clamped high.
func clamp[T number](value, lo, hi T) (T, int) {
	if value < lo {
		return lo, -1
	}
	if value > hi {
		return hi, 1
	}
	return value, 0
}

// IntRange returns the hard range of an int property. Dynamic entries use
// their UI data and are otherwise unbounded.
func (r *Registry) IntRange(ptr Ptr, ref PropertyRef) (hardMin, hardMax int) {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			return ui.Int.Min, ui.Int.Max
		}
		return minInt, maxInt
	}
	prop := ref.static
	if prop == nil {
		return minInt, maxInt
	}
	s := &prop.Int
	switch {
	case s.Range != nil:
		hardMin, hardMax, _, _ = s.Range(ptr)
	case s.RangeEx != nil:
		hardMin, hardMax, _, _ = s.RangeEx(ptr, prop)
	default:
		hardMin, hardMax = s.HardMin, s.HardMax
	}
	return hardMin, hardMax
}

// IntUIRange returns the soft range and step of an int property. Range
// callbacks narrow the soft range, which never exceeds the hard range they
// report.
func (r *Registry) IntUIRange(ptr Ptr, ref PropertyRef) (softMin, softMax, step int) {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			return ui.Int.SoftMin, ui.Int.SoftMax, ui.Int.Step
		}
		return minInt, maxInt, 1
	}
	prop := ref.static
	if prop == nil {
		return minInt, maxInt, 1
	}
	s := &prop.Int
	softMin, softMax = s.SoftMin, s.SoftMax

	var hardMin, hardMax int
	narrowed := true
	switch {
	case s.Range != nil:
		hardMin, hardMax, softMin, softMax = s.Range(ptr)
	case s.RangeEx != nil:
		hardMin, hardMax, softMin, softMax = s.RangeEx(ptr, prop)
	default:
		narrowed = false
	}
	if narrowed {
		softMin = max(softMin, hardMin)
		softMax = min(softMax, hardMax)
	}
	return softMin, softMax, s.Step
}

// IntClamp limits value to the hard range, reporting -1, 0 or 1.
func (r *Registry) IntClamp(ptr Ptr, ref PropertyRef, value *int) int {
	lo, hi := r.IntRange(ptr, ref)
	var result int
	*value, result = clamp(*value, lo, hi)
	return result
}

// FloatRange returns the hard range of a float property. Dynamic entries
// use their UI data and are otherwise unbounded.
func (r *Registry) FloatRange(ptr Ptr, ref PropertyRef) (hardMin, hardMax float32) {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Float != nil {
			return float32(ui.Float.Min), float32(ui.Float.Max)
		}
		return -maxFloat, maxFloat
	}
	prop := ref.static
	if prop == nil {
		return -maxFloat, maxFloat
	}
	s := &prop.Float
	switch {
	case s.Range != nil:
		hardMin, hardMax, _, _ = s.Range(ptr)
	case s.RangeEx != nil:
		hardMin, hardMax, _, _ = s.RangeEx(ptr, prop)
	default:
		hardMin, hardMax = s.HardMin, s.HardMax
	}
	return hardMin, hardMax
}

// FloatUIRange returns the soft range, step and display precision of a
// float property.
func (r *Registry) FloatUIRange(ptr Ptr, ref PropertyRef) (softMin, softMax, step float32, precision int) {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Float != nil {
			return float32(ui.Float.SoftMin), float32(ui.Float.SoftMax), ui.Float.Step, ui.Float.Precision
		}
		return -maxFloat, maxFloat, 1, 3
	}
	prop := ref.static
	if prop == nil {
		return -maxFloat, maxFloat, 1, 3
	}
	s := &prop.Float
	softMin, softMax = s.SoftMin, s.SoftMax

	var hardMin, hardMax float32
	narrowed := true
	switch {
	case s.Range != nil:
		hardMin, hardMax, softMin, softMax = s.Range(ptr)
	case s.RangeEx != nil:
		hardMin, hardMax, softMin, softMax = s.RangeEx(ptr, prop)
	default:
		narrowed = false
	}
	if narrowed {
		softMin = max(softMin, hardMin)
		softMax = min(softMax, hardMax)
	}
	return softMin, softMax, s.Step, s.Precision
}

// FloatClamp limits value to the hard range, reporting -1, 0 or 1.
func (r *Registry) FloatClamp(ptr Ptr, ref PropertyRef, value *float32) int {
	lo, hi := r.FloatRange(ptr, ref)
	var result int
	*value, result = clamp(*value, lo, hi)
	return result
}
