package driver

import "time"

// Engine names.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Env carries the inputs of one evaluation.
type Env struct {
	// Vars are exposed to the expression as top level names.
	Vars     map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Label names the evaluation in errors and logs, usually the driven
	// path.
	Label string
}

// Evaluator runs expressions against an Env.
type Evaluator interface {
	Evaluate(env Env, expression string) (any, error)
	Compile(expression string) (Program, error)
}

// Program is a compiled expression.
type Program interface {
	Evaluate(env Env) (any, error)
}

func (env Env) withDefaults() Env {
	if env.Now == nil {
		now := time.Now()
		env.Now = &now
	}
	if env.Vars == nil {
		env.Vars = map[string]any{}
	}
	if env.Args == nil {
		env.Args = map[string]any{}
	}
	if env.Metadata == nil {
		env.Metadata = map[string]any{}
	}
	return env
}

func (env Env) timestamp() time.Time {
	if env.Now == nil {
		return time.Now()
	}
	return *env.Now
}
