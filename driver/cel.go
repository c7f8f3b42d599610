package driver

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Variables are
// declared dynamically typed, so the program depends on the variable names
// in use and is cached per expression and name set.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(env Env, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, ErrEmptyExpression)
	}
	env = env.withDefaults()
	program, err := e.loadOrCompile(expression, env.Vars)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, env.Label, err)
	}
	out, _, err := program.program.Eval(e.activation(env))
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, env.Label, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string) (Program, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, ErrEmptyExpression)
	}
	return &celCompiledProgram{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, vars map[string]any) (*celProgram, error) {
	key := celCacheKey(expression, vars)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(vars)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(vars map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", e.callOverloads()...))
	}
	for key := range vars {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(env Env) map[string]any {
	activation := map[string]any{
		"now":      env.timestamp(),
		"args":     env.Args,
		"metadata": env.Metadata,
	}
	for key, value := range env.Vars {
		activation[key] = value
	}
	return activation
}

type celCompiledProgram struct {
	evaluator  *celEvaluator
	expression string
}

func (p *celCompiledProgram) Evaluate(env Env) (any, error) {
	return p.evaluator.Evaluate(env, p.expression)
}

func celCacheKey(expression string, vars map[string]any) string {
	if len(vars) == 0 {
		return expression
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return expression + "\x00" + strings.Join(names, ",")
}

// callOverloads declares call(name, args...) for up to maxCallArgs
// arguments.
func (e *celEvaluator) callOverloads() []celgo.FunctionOpt {
	binding := celgo.FunctionBinding(e.callBinding())
	overloads := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
	for n := 0; n <= maxCallArgs; n++ {
		args := []*celgo.Type{celgo.StringType}
		for range n {
			args = append(args, celgo.DynType)
		}
		overloads = append(overloads, celgo.Overload(fmt.Sprintf("call_dyn_%d", n), args, celgo.DynType, binding))
	}
	return overloads
}

const maxCallArgs = 4

func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("driver: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("driver: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("driver: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
