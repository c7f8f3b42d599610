package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	rna "github.com/goliatone/go-rna"
	"github.com/goliatone/go-rna/pkg/activity"
)

// Variable binds an expression name to a property path.
type Variable struct {
	Name string
	// Path is resolved from Source, or from the driven block when Source
	// is nil. A trailing [n] reads one array element.
	Path   string
	Source rna.IDBlock
}

// Driver computes one property of a data block from other properties.
type Driver struct {
	// Target is the driven path relative to the block, optionally ending
	// in [n] to drive one array element.
	Target     string
	Engine     string
	Expression string
	Variables  []Variable
	Args       map[string]any
}

// Option configures a Runner.
type Option func(*Runner)

// WithEvaluator registers evaluator for engine, replacing the default.
func WithEvaluator(engine string, evaluator Evaluator) Option {
	return func(r *Runner) {
		if evaluator == nil {
			delete(r.evaluators, engine)
			return
		}
		r.evaluators[engine] = evaluator
	}
}

// WithFunctionRegistry exposes registry to the default evaluators.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(r *Runner) {
		r.functions = registry.Clone()
	}
}

// WithEvaluatorLogger records every evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(r *Runner) {
		if logger == nil {
			r.logger = noopEvaluatorLogger{}
			return
		}
		r.logger = logger
	}
}

// WithEmitter publishes a driver.evaluated event per successful write.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(r *Runner) {
		r.emitter = emitter
	}
}

// WithClock overrides the time exposed as now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner evaluates drivers against a registry.
type Runner struct {
	registry   *rna.Registry
	evaluators map[string]Evaluator
	functions  *FunctionRegistry
	logger     EvaluatorLogger
	emitter    *activity.Emitter
	now        func() time.Time
}

// NewRunner returns a runner over registry. Engines without an explicit
// evaluator get a default one with its own program cache.
func NewRunner(registry *rna.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry:   registry,
		evaluators: map[string]Evaluator{},
		logger:     noopEvaluatorLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if _, ok := r.evaluators[EngineExpr]; !ok {
		r.evaluators[EngineExpr] = NewExprEvaluator(
			ExprWithProgramCache(NewMemoryCache()),
			ExprWithFunctionRegistry(r.functions),
		)
	}
	if _, ok := r.evaluators[EngineCEL]; !ok {
		r.evaluators[EngineCEL] = NewCELEvaluator(
			CELWithProgramCache(NewMemoryCache()),
			CELWithFunctionRegistry(r.functions),
		)
	}
	if _, ok := r.evaluators[EngineJS]; !ok && jsEvaluatorAvailable() {
		r.evaluators[EngineJS] = NewJSEvaluator(
			JSWithProgramCache(NewMemoryCache()),
			JSWithFunctionRegistry(r.functions),
		)
	}
	return r
}

// Supports reports whether engine can be evaluated.
func (r *Runner) Supports(engine string) bool {
	return r.evaluators[engineName(engine)] != nil
}

// Evaluate reads the variables of d, evaluates its expression and writes
// the result to its target on block. Writes go through the editability
// rules and the change notifier of the registry.
func (r *Runner) Evaluate(ctx context.Context, block rna.IDBlock, d Driver) (any, error) {
	origin := rna.PointerFromID(block)
	if !origin.IsValid() {
		return nil, fmt.Errorf("%w %q: no data block", ErrTarget, d.Target)
	}
	engine := engineName(d.Engine)
	evaluator := r.evaluators[engine]
	if evaluator == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}

	vars, err := r.variables(ctx, origin, d.Variables)
	if err != nil {
		return nil, err
	}
	now := r.now()
	env := Env{Vars: vars, Now: &now, Args: d.Args, Label: d.Target}

	start := time.Now()
	value, err := evaluator.Evaluate(env, d.Expression)
	err = wrapEvaluationError(engine, d.Expression, d.Target, err)
	r.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     d.Expression,
		Target:   d.Target,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}

	target, err := r.registry.PathResolve(origin, d.Target)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrTarget, d.Target, err)
	}
	if !target.Prop.IsValid() {
		return nil, fmt.Errorf("%w %q: not a property", ErrTarget, d.Target)
	}
	if err := r.registry.SetIndex(ctx, target.Ptr, target.Prop, target.Index, value); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrTarget, d.Target, err)
	}
	if err := r.publish(ctx, target, engine, d, value); err != nil {
		return value, err
	}
	return value, nil
}

// EvaluateAll evaluates drivers in order. Failures do not stop later
// drivers and are returned joined.
func (r *Runner) EvaluateAll(ctx context.Context, block rna.IDBlock, drivers ...Driver) error {
	var errs []error
	for _, d := range drivers {
		if _, err := r.Evaluate(ctx, block, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) variables(ctx context.Context, origin rna.Ptr, variables []Variable) (map[string]any, error) {
	vars := make(map[string]any, len(variables))
	for _, v := range variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, fmt.Errorf("%w %q: missing name", ErrVariable, v.Path)
		}
		src := origin
		if v.Source != nil {
			src = rna.PointerFromID(v.Source)
		}
		res, err := r.registry.PathResolve(src, v.Path)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrVariable, name, err)
		}
		if !res.Prop.IsValid() {
			return nil, fmt.Errorf("%w %s: %q is not a property", ErrVariable, name, v.Path)
		}
		value, err := r.registry.GetIndex(ctx, res.Ptr, res.Prop, res.Index)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrVariable, name, err)
		}
		vars[name] = variableValue(value)
	}
	return vars, nil
}

// variableValue replaces handles with the names of their data blocks.
func variableValue(value any) any {
	switch v := value.(type) {
	case rna.Ptr:
		if v.Owner == nil {
			return nil
		}
		return v.Owner.Name
	case []rna.Ptr:
		return len(v)
	}
	return value
}

func (r *Runner) publish(ctx context.Context, target rna.PathResult, engine string, d Driver, value any) error {
	if !r.emitter.Enabled() {
		return nil
	}
	input := activity.PropertyEventInput{
		Path:     d.Target,
		NewValue: value,
		Metadata: map[string]any{
			"engine":     engine,
			"expression": d.Expression,
		},
		OccurredAt: r.now(),
	}
	if target.Ptr.Type != nil {
		input.Struct = target.Ptr.Type.Identifier
	}
	if owner := target.Ptr.Owner; owner != nil {
		input.Owner = owner.Name
		if owner.SessionUUID != uuid.Nil {
			input.OwnerID = owner.SessionUUID.String()
		}
	}
	return r.emitter.Emit(ctx, activity.BuildDriverEvaluatedEvent(input))
}

func engineName(engine string) string {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if engine == "" {
		return EngineExpr
	}
	return engine
}
