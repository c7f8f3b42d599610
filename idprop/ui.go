package idprop

import (
	"math"
	"slices"
)

// UIData holds optional UI metadata attached lazily to an entry.
type UIData struct {
	Description string
	Subtype     int

	Int    *IntUI
	Float  *FloatUI
	String *StringUI
}

// IntUI describes ranges and defaults for Int and Int array entries.
type IntUI struct {
	Min, Max         int
	SoftMin, SoftMax int
	Step             int
	Default          int
	DefaultArray     []int
}

// FloatUI describes ranges and defaults for Float, Double and float array
// entries.
type FloatUI struct {
	Min, Max         float64
	SoftMin, SoftMax float64
	Step             float32
	Precision        int
	Default          float64
	DefaultArray     []float64
}

// StringUI describes the default of a String entry.
type StringUI struct {
	Default string
}

// UI returns the attached UI metadata, or nil.
func (p *Property) UI() *UIData {
	if p == nil {
		return nil
	}
	return p.ui
}

// EnsureUI attaches UI metadata suited to the entry tag when missing and
// returns it.
func (p *Property) EnsureUI() *UIData {
	if p.ui != nil {
		return p.ui
	}
	ui := &UIData{}
	switch {
	case p.typ == Int || (p.typ == Array && p.subtype == Int):
		ui.Int = &IntUI{
			Min:     math.MinInt32,
			Max:     math.MaxInt32,
			SoftMin: math.MinInt32,
			SoftMax: math.MaxInt32,
			Step:    1,
		}
	case p.typ == Float || p.typ == Double || (p.typ == Array && (p.subtype == Float || p.subtype == Double)):
		ui.Float = &FloatUI{
			Min:       -math.MaxFloat32,
			Max:       math.MaxFloat32,
			SoftMin:   -math.MaxFloat32,
			SoftMax:   math.MaxFloat32,
			Step:      1,
			Precision: 3,
		}
	case p.typ == String:
		ui.String = &StringUI{}
	}
	p.ui = ui
	return ui
}

// ClearUI detaches UI metadata.
func (p *Property) ClearUI() {
	p.ui = nil
}

func (u *UIData) clone() *UIData {
	if u == nil {
		return nil
	}
	out := *u
	if u.Int != nil {
		i := *u.Int
		i.DefaultArray = slices.Clone(u.Int.DefaultArray)
		out.Int = &i
	}
	if u.Float != nil {
		f := *u.Float
		f.DefaultArray = slices.Clone(u.Float.DefaultArray)
		out.Float = &f
	}
	if u.String != nil {
		s := *u.String
		out.String = &s
	}
	return &out
}
