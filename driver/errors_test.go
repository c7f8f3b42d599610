package driver

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "scale && missing", "location[2]", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "scale && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Target != "location[2]" {
		t.Fatalf("expected target metadata, got %q", evalErr.Target)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "scale", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Target != "scale" {
		t.Fatalf("target should be filled, got %q", existing.Target)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	if err := wrapEvaluatorError("expr", ErrEmptyExpression); err != ErrEmptyExpression {
		t.Fatalf("expected prefixed error unchanged, got %v", err)
	}
	err := wrapEvaluatorError("cel", errors.New("bad"))
	if !strings.HasPrefix(err.Error(), "driver: cel evaluator:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if wrapEvaluatorError("expr", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestEvaluationErrorMessage(t *testing.T) {
	err := &EvaluationError{Engine: "expr", Target: "scale", Err: errors.New("boom")}
	want := `driver: expr evaluator expr=<empty> target=scale: boom`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
