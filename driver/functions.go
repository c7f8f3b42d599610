package driver

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Function is a callable exposed to expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("driver: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("driver: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("driver: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("driver: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("driver: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFunctions returns a registry with the helpers commonly used by
// drivers: clamp(v, lo, hi), lerp(a, b, t) and smoothstep(e0, e1, x).
func DefaultFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	_ = r.Register("clamp", numeric(3, func(x []float64) float64 {
		return math.Min(math.Max(x[0], x[1]), x[2])
	}))
	_ = r.Register("lerp", numeric(3, func(x []float64) float64 {
		return x[0] + (x[1]-x[0])*x[2]
	}))
	_ = r.Register("smoothstep", numeric(3, func(x []float64) float64 {
		if x[1] == x[0] {
			return 0
		}
		t := math.Min(math.Max((x[2]-x[0])/(x[1]-x[0]), 0), 1)
		return t * t * (3 - 2*t)
	}))
	return r
}

func numeric(arity int, fn func([]float64) float64) Function {
	return func(args ...any) (any, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("driver: expected %d arguments, got %d", arity, len(args))
		}
		values := make([]float64, arity)
		for i, arg := range args {
			v, ok := asFloat(arg)
			if !ok {
				return nil, fmt.Errorf("driver: argument %d is %T, not a number", i, arg)
			}
			values[i] = v
		}
		return fn(values), nil
	}
}

func asFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
