package rules

import (
	"errors"
	"math"
	"testing"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

func datum(index int, dobs float64) Context {
	return Context{
		Index:    index,
		Source:   "s1",
		Receiver: "r1",
		Fields: map[string]float64{
			"dobs":               dobs,
			"standard_deviation": 0.05,
			"noise_floor":        0.1,
		},
	}
}

func TestEvaluatorsComputeNumericRule(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			got, err := evaluator.Evaluate(datum(0, -2), "standard_deviation * abs(dobs) + noise_floor")
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			value, err := ToFloat64(got)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if math.Abs(value-0.2) > 1e-12 {
				t.Fatalf("expected 0.2, got %v", value)
			}
		})
	}
}

func TestEvaluatorsComputePredicate(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			rule, err := evaluator.Compile(`dobs > 0.0 && receiver == "r1"`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			for _, tc := range []struct {
				dobs float64
				want bool
			}{{1.5, true}, {-1.5, false}} {
				got, err := rule.Evaluate(datum(3, tc.dobs))
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				b, err := ToBool(got)
				if err != nil {
					t.Fatalf("convert: %v", err)
				}
				if b != tc.want {
					t.Fatalf("dobs=%v: expected %v got %v", tc.dobs, tc.want, b)
				}
			}
		})
	}
}

func TestEvaluatorsCallRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Clip", func(args ...float64) (float64, error) {
		if len(args) != 2 {
			return 0, errors.New("clip expects two arguments")
		}
		return math.Min(args[0], args[1]), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, registry)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			got, err := evaluator.Evaluate(datum(0, 7), "clip(dobs, 5.0)")
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			value, err := ToFloat64(got)
			if err != nil || value != 5 {
				t.Fatalf("expected 5, got %v (%v)", got, err)
			}
		})
	}
}

func TestEvaluatorsRejectEmptyExpression(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			if _, err := evaluator.Evaluate(datum(0, 1), ""); !errors.Is(err, ErrEmptyExpression) {
				t.Fatalf("expected ErrEmptyExpression, got %v", err)
			}
			if _, err := evaluator.Compile(""); !errors.Is(err, ErrEmptyExpression) {
				t.Fatalf("expected ErrEmptyExpression from Compile, got %v", err)
			}
		})
	}
}

func TestEvaluatorsReportCompileErrors(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			_, err := evaluator.Evaluate(datum(0, 1), "dobs +")
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %T %v", err, err)
			}
			if evalErr.Engine != factory.name {
				t.Fatalf("expected engine %q, got %q", factory.name, evalErr.Engine)
			}
			if evalErr.Index != -1 {
				t.Fatalf("expected compile-time index -1, got %d", evalErr.Index)
			}
		})
	}
}

func TestProgramCacheReusesCompiledPrograms(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			evaluator := factory.new(cache, nil)
			if evaluator == nil {
				t.Skip("engine not compiled in")
			}
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(datum(i, float64(i)), "dobs * 2.0"); err != nil {
					t.Fatalf("evaluate: %v", err)
				}
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
		})
	}
}

func scaleRegistry(t *testing.T, factor float64) *FunctionRegistry {
	t.Helper()
	registry := NewFunctionRegistry()
	if err := registry.Register("scale", func(args ...float64) (float64, error) {
		return args[0] * factor, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return registry
}

func TestProgramCacheSeparatesRegistries(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			double := factory.new(cache, scaleRegistry(t, 2))
			if double == nil {
				t.Skip("engine not compiled in")
			}
			triple := factory.new(cache, scaleRegistry(t, 3))

			for _, tc := range []struct {
				evaluator Evaluator
				want      float64
			}{{double, 2}, {triple, 3}, {double, 2}} {
				got, err := tc.evaluator.Evaluate(datum(0, 1), "scale(1.0)")
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				if value, _ := ToFloat64(got); value != tc.want {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestFunctionRegistryCacheScope(t *testing.T) {
	var nilRegistry *FunctionRegistry
	if nilRegistry.cacheScope() != "" {
		t.Fatalf("expected empty scope for nil registry")
	}
	registry := NewFunctionRegistry()
	before := registry.cacheScope()
	if before != registry.cacheScope() {
		t.Fatalf("scope must be stable without changes")
	}
	if err := registry.Register("one", func(...float64) (float64, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	after := registry.cacheScope()
	if after == before {
		t.Fatalf("expected scope to change after Register")
	}
	if registry.Clone().cacheScope() == after {
		t.Fatalf("expected clone to have its own scope")
	}
}

func TestEngineName(t *testing.T) {
	if got := EngineName(NewExprEvaluator()); got != "expr" {
		t.Fatalf("expected expr, got %q", got)
	}
	if got := EngineName(NewCELEvaluator()); got != "cel" {
		t.Fatalf("expected cel, got %q", got)
	}
	if got := EngineName(nil); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestFunctionRegistryGuards(t *testing.T) {
	registry := NewFunctionRegistry()
	noop := func(args ...float64) (float64, error) { return 0, nil }
	if err := registry.Register("", noop); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := registry.Register("f", nil); err == nil {
		t.Fatalf("expected error for nil function")
	}
	if err := registry.Register("abs", noop); err == nil {
		t.Fatalf("expected error for builtin name")
	}
	if err := registry.Register("f", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("F", noop); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected error for unregistered function")
	}
	if _, err := registry.CallAny("f", "text"); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected conversion error, got %v", err)
	}

	clone := registry.Clone()
	_ = registry.Register("g", noop)
	if len(clone.Names()) != 1 {
		t.Fatalf("clone should not see later registrations: %v", clone.Names())
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("boom")
	existing := &EvaluationError{Engine: "expr", Index: -1, Err: base}

	err := WrapEvaluationError("cel", "dobs * 2", 4, existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "dobs * 2" || existing.Index != 4 {
		t.Fatalf("expected expression and index filled, got %+v", existing)
	}
}
