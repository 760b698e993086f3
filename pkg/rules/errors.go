package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyExpression is returned when an evaluator receives an empty
// expression.
var ErrEmptyExpression = errors.New("rules: expression must not be empty")

// EvaluationError captures evaluator metadata alongside the originating error.
// Index is -1 when the failure happened at compile time.
type EvaluationError struct {
	Engine string
	Expr   string
	Index  int
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Index < 0 {
		return fmt.Sprintf("rules: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
	}
	return fmt.Sprintf("rules: %s evaluator %s index=%d: %v", e.Engine, describeExpression(e.Expr), e.Index, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "rules:") {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

// WrapEvaluationError attaches engine, expression and datum index to err,
// filling only the fields an existing EvaluationError leaves empty.
func WrapEvaluationError(engine, expr string, index int, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Index < 0 {
			evalErr.Index = index
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Index:  index,
		Err:    err,
	}
}
