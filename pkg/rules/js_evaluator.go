//go:build js_eval

package rules

import (
	"fmt"
	"math"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache     ProgramCache
	registry  *FunctionRegistry
	constants map[string]float64
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:     cfg.cache,
		registry:  cfg.registry,
		constants: cfg.constants,
	}
}

// JSAvailable reports whether the goja engine was compiled in.
func JSAvailable() bool {
	return true
}

func (e *jsEvaluator) Engine() string { return "js" }

func (e *jsEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	// Registry functions are bound per run, so programs are registry independent.
	key := cacheKey("js", expression, nil, nil)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapExpression(expression), false)
	if err != nil {
		return nil, WrapEvaluationError("js", expression, -1, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx Context, expression string, program *goja.Program) (any, error) {
	ctx = ctx.withDefaultMaps()
	vm := goja.New()
	if err := e.injectContext(vm, ctx); err != nil {
		return nil, WrapEvaluationError("js", expression, ctx.Index, err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, WrapEvaluationError("js", expression, ctx.Index, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx Context) error {
	bindings := make(map[string]any, len(e.constants)+len(ctx.Fields)+5)
	for name, value := range e.constants {
		bindings[name] = value
	}
	for key, value := range map[string]any{
		"index":    ctx.Index,
		"source":   ctx.Source,
		"receiver": ctx.Receiver,
		"args":     ctx.Args,
		"abs":      math.Abs,
	} {
		bindings[key] = value
	}
	for key, value := range ctx.Fields {
		bindings[key] = value
	}
	if e.registry != nil {
		for _, name := range e.registry.Names() {
			fn := name
			bindings[fn] = func(arguments ...float64) (float64, error) {
				return e.registry.Call(fn, arguments...)
			}
		}
	}
	for key, value := range bindings {
		if err := vm.Set(key, value); err != nil {
			return fmt.Errorf("bind %q: %w", key, err)
		}
	}
	return nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx Context) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.run(ctx, r.expression, r.program)
}
