package driver

import (
	"math"
	"testing"
)

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Double", func(args ...any) (any, error) {
		return args[0].(float64) * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration to fail regardless of case")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function to be rejected")
	}

	got, err := registry.Call("DOUBLE", 2.5)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != 5.0 {
		t.Fatalf("expected 5, got %v", got)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unknown function error")
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	registry := NewFunctionRegistry()
	_ = registry.Register("a", func(...any) (any, error) { return 1, nil })
	clone := registry.Clone()
	_ = registry.Register("b", func(...any) (any, error) { return 2, nil })

	if names := clone.Names(); len(names) != 1 || names[0] != "a" {
		t.Fatalf("clone should not see later registrations, got %v", names)
	}
	if names := registry.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestDefaultFunctions(t *testing.T) {
	registry := DefaultFunctions()
	cases := []struct {
		name string
		args []any
		want float64
	}{
		{name: "clamp", args: []any{1.5, 0, 1}, want: 1},
		{name: "clamp", args: []any{-2, 0.0, 1.0}, want: 0},
		{name: "lerp", args: []any{float32(2), 4, 0.5}, want: 3},
		{name: "smoothstep", args: []any{0, 1, 0.5}, want: 0.5},
		{name: "smoothstep", args: []any{1, 1, 0.5}, want: 0},
	}
	for _, tc := range cases {
		got, err := registry.Call(tc.name, tc.args...)
		if err != nil {
			t.Fatalf("%s%v: %v", tc.name, tc.args, err)
		}
		if math.Abs(got.(float64)-tc.want) > 1e-9 {
			t.Fatalf("%s%v: expected %v, got %v", tc.name, tc.args, tc.want, got)
		}
	}
	if _, err := registry.Call("clamp", 1.0); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := registry.Call("lerp", "a", 1, 2); err == nil {
		t.Fatalf("expected non numeric argument error")
	}
}
