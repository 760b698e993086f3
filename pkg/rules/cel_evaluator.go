package rules

import (
	"fmt"
	"math"

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
// Registered functions are exposed with one and two double arguments.
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

// celEvaluator declares every datum field as a double, index as an int and the
// source/receiver names as strings. CEL does not mix int and double
// arithmetic, so numeric literals combined with fields must be written as
// doubles (1.0, not 1).
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyExpression)
	}
	ctx = ctx.withDefaultMaps()
	program, err := e.loadOrCompile(expression, ctx.fieldNames())
	if err != nil {
		return nil, err
	}
	return e.run(program, expression, ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyExpression)
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) run(program *celProgram, expression string, ctx Context) (any, error) {
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, WrapEvaluationError("cel", expression, ctx.Index, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) loadOrCompile(expression string, fields []string) (*celProgram, error) {
	key := cacheKey("cel", expression, fields, e.registry)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(fields)
	if err != nil {
		return nil, WrapEvaluationError("cel", expression, -1, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, WrapEvaluationError("cel", expression, -1, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, WrapEvaluationError("cel", expression, -1, err)
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

func (e *celEvaluator) buildEnv(fields []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("index", celgo.IntType),
		celgo.Variable("source", celgo.StringType),
		celgo.Variable("receiver", celgo.StringType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Function("abs",
			celgo.Overload("abs_double", []*celgo.Type{celgo.DoubleType}, celgo.DoubleType,
				celgo.UnaryBinding(func(v ref.Val) ref.Val {
					d, ok := v.(types.Double)
					if !ok {
						return types.MaybeNoSuchOverloadErr(v)
					}
					return types.Double(math.Abs(float64(d)))
				}),
			),
		),
	}
	for _, name := range fields {
		opts = append(opts, celgo.Variable(name, celgo.DoubleType))
	}
	for _, name := range e.registryNames() {
		opts = append(opts, e.registryFunction(name))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx Context) map[string]any {
	activation := map[string]any{
		"index":    int64(ctx.Index),
		"source":   ctx.Source,
		"receiver": ctx.Receiver,
		"args":     ctx.Args,
	}
	for key, value := range ctx.Fields {
		activation[key] = value
	}
	return activation
}

func (e *celEvaluator) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *celEvaluator) registryFunction(name string) celgo.EnvOption {
	return celgo.Function(name,
		celgo.Overload(name+"_double", []*celgo.Type{celgo.DoubleType}, celgo.DoubleType,
			celgo.UnaryBinding(func(v ref.Val) ref.Val {
				return e.callRegistry(name, v)
			}),
		),
		celgo.Overload(name+"_double_double", []*celgo.Type{celgo.DoubleType, celgo.DoubleType}, celgo.DoubleType,
			celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				return e.callRegistry(name, lhs, rhs)
			}),
		),
	)
}

func (e *celEvaluator) callRegistry(name string, values ...ref.Val) ref.Val {
	args := make([]float64, 0, len(values))
	for _, val := range values {
		d, ok := val.(types.Double)
		if !ok {
			return types.MaybeNoSuchOverloadErr(val)
		}
		args = append(args, float64(d))
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	return types.Double(result)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx Context) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}
