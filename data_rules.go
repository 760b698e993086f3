package simdata

import (
	"fmt"
	"time"

	"github.com/goliatone/go-simdata/pkg/rules"
)

// ApplyRule evaluates expression once per datum and assigns the results to
// field through the same validation as SetField. The expression sees dobs,
// standard_deviation, noise_floor and (for synthetic data) dclean at the datum,
// plus index, source and receiver. For example
//
//	data.ApplyRule(simdata.FieldNoiseFloor, `receiver == "ex" ? 1e-9 : 1e-12`)
func (d *Data) ApplyRule(field Field, expression string) error {
	start := time.Now()
	values, engine, err := evaluateEach(d, expression, rules.ToFloat64)
	if err == nil {
		err = d.SetField(field, Values(values))
	}
	d.ruleLogger().LogEvaluation(rules.LogEvent{
		Engine:   engine,
		Expr:     expression,
		Field:    string(field),
		Count:    len(values),
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

// Mask evaluates a boolean expression once per datum.
func (d *Data) Mask(expression string) ([]bool, error) {
	start := time.Now()
	mask, engine, err := evaluateEach(d, expression, rules.ToBool)
	d.ruleLogger().LogEvaluation(rules.LogEvent{
		Engine:   engine,
		Expr:     expression,
		Count:    len(mask),
		Duration: time.Since(start),
		Err:      err,
	})
	return mask, err
}

func evaluateEach[T any](d *Data, expression string, convert func(any) (T, error)) ([]T, string, error) {
	evaluator := d.ruleEvaluator()
	engine := rules.EngineName(evaluator)
	m, err := d.IndexMap()
	if err != nil {
		return nil, engine, err
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, engine, err
	}

	fields := d.Fields()
	out := make([]T, 0, len(d.dobs))
	for _, entry := range m.Entries() {
		for i := entry.Range.Begin; i < entry.Range.End; i++ {
			ctx := rules.Context{
				Index:    i,
				Source:   entry.SourceName,
				Receiver: entry.ReceiverName,
				Fields:   d.datumFields(fields, i),
			}
			result, err := rule.Evaluate(ctx)
			if err != nil {
				return nil, engine, rules.WrapEvaluationError(engine, expression, i, err)
			}
			value, err := convert(result)
			if err != nil {
				return nil, engine, rules.WrapEvaluationError(engine, expression, i, fmt.Errorf("convert result: %w", err))
			}
			out = append(out, value)
		}
	}
	return out, engine, nil
}

func (d *Data) datumFields(fields []Field, i int) map[string]float64 {
	values := make(map[string]float64, len(fields))
	for _, field := range fields {
		spec, err := d.spec(field)
		if err != nil || *spec.ref == nil {
			continue
		}
		values[string(field)] = (*spec.ref)[i]
	}
	return values
}

func (d *Data) ruleEvaluator() rules.Evaluator {
	if d.cfg.evaluator != nil {
		return d.cfg.evaluator
	}
	if d.evaluator == nil {
		var opts []rules.ExprEvaluatorOption
		if d.cfg.programCache != nil {
			opts = append(opts, rules.ExprWithProgramCache(d.cfg.programCache))
		}
		if d.cfg.functions != nil {
			opts = append(opts, rules.ExprWithFunctionRegistry(d.cfg.functions))
		}
		d.evaluator = rules.NewExprEvaluator(opts...)
	}
	return d.evaluator
}
