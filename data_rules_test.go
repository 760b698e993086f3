package simdata

import (
	"errors"
	"math"
	"testing"

	"github.com/goliatone/go-simdata/internal/vec"
	"github.com/goliatone/go-simdata/pkg/rules"
)

func newRuleData(t *testing.T, opts ...Option) (*Data, lineSurvey) {
	t.Helper()
	ls := newLineSurvey(t)
	opts = append([]Option{WithObserved([]float64{1, -2, 3, -4, 5, -6})}, opts...)
	data, err := New(ls.survey, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return data, ls
}

func TestApplyRuleEngines(t *testing.T) {
	cases := []struct {
		name      string
		evaluator rules.Evaluator
		expr      string
	}{
		{name: "expr", expr: `receiver == "r2" ? 1.0 : abs(dobs) * 0.5`},
		{name: "cel", evaluator: rules.NewCELEvaluator(), expr: `receiver == "r2" ? 1.0 : abs(dobs) * 0.5`},
	}
	want := []float64{0.5, 1, 1, 1, 1, 3}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []Option
			if tc.evaluator != nil {
				opts = append(opts, WithEvaluator(tc.evaluator))
			}
			var events []rules.LogEvent
			opts = append(opts, WithRuleLogger(rules.LoggerFunc(func(event rules.LogEvent) {
				events = append(events, event)
			})))
			data, _ := newRuleData(t, opts...)

			if err := data.ApplyRule(FieldNoiseFloor, tc.expr); err != nil {
				t.Fatalf("apply rule: %v", err)
			}
			if !vec.Same(data.NoiseFloor(), want) {
				t.Fatalf("expected %v, got %v", want, data.NoiseFloor())
			}
			if len(events) != 1 || events[0].Engine != tc.name || events[0].Count != 6 || events[0].Field != "noise_floor" || events[0].Err != nil {
				t.Fatalf("unexpected rule log %+v", events)
			}
		})
	}
}

func TestMaskEngines(t *testing.T) {
	cases := []struct {
		name      string
		evaluator rules.Evaluator
		expr      string
	}{
		{name: "expr", expr: `dobs > 2 || source == "s2"`},
		{name: "cel", evaluator: rules.NewCELEvaluator(), expr: `dobs > 2.0 || source == "s2"`},
	}
	want := []bool{false, false, true, false, true, true}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []Option
			if tc.evaluator != nil {
				opts = append(opts, WithEvaluator(tc.evaluator))
			}
			data, _ := newRuleData(t, opts...)
			mask, err := data.Mask(tc.expr)
			if err != nil {
				t.Fatalf("mask: %v", err)
			}
			if len(mask) != len(want) {
				t.Fatalf("expected %d entries, got %d", len(want), len(mask))
			}
			for i := range want {
				if mask[i] != want[i] {
					t.Fatalf("index %d: expected %v, got %v", i, want[i], mask[i])
				}
			}
		})
	}
}

func TestApplyRuleSeesIndexAndSyntheticFields(t *testing.T) {
	ls := newLineSurvey(t)
	sd, err := NewSynthetic(ls.survey, []float64{1, 1, 1, 1, 1, 1}, WithObserved([]float64{2, 2, 2, 2, 2, 2}))
	if err != nil {
		t.Fatalf("new synthetic: %v", err)
	}
	if err := sd.ApplyRule(FieldStandardDeviation, `(dobs - dclean) * index`); err != nil {
		t.Fatalf("apply rule: %v", err)
	}
	if !vec.Same(sd.StandardDeviation(), []float64{0, 1, 2, 3, 4, 5}) {
		t.Fatalf("unexpected std %v", sd.StandardDeviation())
	}
	if err := sd.ApplyRule(FieldClean, `dobs * 2`); err != nil {
		t.Fatalf("apply rule to dclean: %v", err)
	}
	if !vec.Same(sd.Clean(), vec.Fill(6, 4)) {
		t.Fatalf("unexpected dclean %v", sd.Clean())
	}
}

func TestApplyRuleSkipsUnsetFields(t *testing.T) {
	data, _ := newRuleData(t, WithNoiseFloor(Unset))
	if err := data.ApplyRule(FieldStandardDeviation, `noise_floor ?? 0.25`); err != nil {
		t.Fatalf("apply rule: %v", err)
	}
	if !vec.Same(data.StandardDeviation(), vec.Fill(6, 0.25)) {
		t.Fatalf("expected unset noise floor to be absent from the context, got %v", data.StandardDeviation())
	}
}

func TestApplyRuleUsesFunctionRegistry(t *testing.T) {
	registry := rules.NewFunctionRegistry()
	if err := registry.Register("clip", func(args ...float64) (float64, error) {
		return math.Min(args[0], args[1]), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	data, _ := newRuleData(t, WithFunctionRegistry(registry), WithProgramCache(rules.NewMemoryCache()))
	if err := data.ApplyRule(FieldNoiseFloor, `clip(abs(dobs), 3)`); err != nil {
		t.Fatalf("apply rule: %v", err)
	}
	if !vec.Same(data.NoiseFloor(), []float64{1, 2, 3, 3, 3, 3}) {
		t.Fatalf("unexpected noise floor %v", data.NoiseFloor())
	}
}

func TestSharedProgramCacheKeepsRegistriesApart(t *testing.T) {
	cache := rules.NewMemoryCache()
	scaled := func(factor float64) *Data {
		registry := rules.NewFunctionRegistry()
		if err := registry.Register("scale", func(args ...float64) (float64, error) {
			return args[0] * factor, nil
		}); err != nil {
			t.Fatalf("register: %v", err)
		}
		data, _ := newRuleData(t, WithFunctionRegistry(registry), WithProgramCache(cache))
		return data
	}
	a := scaled(2)
	b := scaled(3)

	for _, data := range []*Data{a, b} {
		if err := data.ApplyRule(FieldNoiseFloor, `scale(1.0)`); err != nil {
			t.Fatalf("apply rule: %v", err)
		}
	}
	if !vec.Same(a.NoiseFloor(), vec.Fill(6, 2)) || !vec.Same(b.NoiseFloor(), vec.Fill(6, 3)) {
		t.Fatalf("expected floors of 2 and 3, got %v and %v", a.NoiseFloor(), b.NoiseFloor())
	}

	if err := a.ApplyRule(FieldStandardDeviation, `scale(1.0)`); err != nil {
		t.Fatalf("apply rule: %v", err)
	}
	if !vec.Same(a.StandardDeviation(), vec.Fill(6, 2)) {
		t.Fatalf("expected cached program to stay bound to its registry, got %v", a.StandardDeviation())
	}
}

func TestApplyRuleFailuresLeaveFieldUnchanged(t *testing.T) {
	var events []rules.LogEvent
	data, _ := newRuleData(t, WithNoiseFloor(Scalar(7)), WithRuleLogger(rules.LoggerFunc(func(event rules.LogEvent) {
		events = append(events, event)
	})))

	err := data.ApplyRule(FieldNoiseFloor, `source + "!"`)
	if !errors.Is(err, rules.ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
	var evalErr *rules.EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Index != 0 || evalErr.Engine != "expr" {
		t.Fatalf("expected evaluation error at index 0, got %#v", err)
	}

	if err := data.ApplyRule(FieldNoiseFloor, ""); !errors.Is(err, rules.ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
	if err := data.ApplyRule(FieldObserved, `dobs +`); err == nil {
		t.Fatalf("expected compile error")
	}
	if err := data.ApplyRule(FieldClean, `dobs`); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	if !vec.Same(data.NoiseFloor(), vec.Fill(6, 7)) {
		t.Fatalf("failed rules modified the noise floor: %v", data.NoiseFloor())
	}
	if len(events) != 4 || events[0].Err == nil {
		t.Fatalf("expected every failure to be logged, got %+v", events)
	}
}

func TestRulesRequireSurvey(t *testing.T) {
	var data Data
	if _, err := data.Mask(`true`); !errors.Is(err, ErrNoSurvey) {
		t.Fatalf("expected ErrNoSurvey, got %v", err)
	}
}
