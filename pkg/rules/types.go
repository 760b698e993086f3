// Package rules evaluates per-datum expressions used to derive data fields and
// selection masks. Three engines share one contract: expr-lang/expr (the
// default), google/cel-go, and goja (only with the js_eval build tag).
//
// Every evaluation receives a Context describing one datum: its flat index,
// the names of the source and receiver that recorded it, and the numeric field
// values at that index (dobs, standard_deviation, noise_floor and, for
// synthetic data, dclean).
package rules

import (
	"sort"
	"strings"
	"time"
)

// Context carries the inputs for one datum.
type Context struct {
	Index    int
	Source   string
	Receiver string
	Fields   map[string]float64
	Args     map[string]any
}

func (ctx Context) withDefaultMaps() Context {
	if ctx.Fields == nil {
		ctx.Fields = map[string]float64{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx Context) fieldNames() []string {
	names := make([]string, 0, len(ctx.Fields))
	for name := range ctx.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator executes expressions against a datum context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// LogEvent describes one rule application for logging.
type LogEvent struct {
	Engine   string
	Expr     string
	Field    string
	Count    int
	Duration time.Duration
	Err      error
}

// Logger records rule applications.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

// NopLogger discards events.
type NopLogger struct{}

// LogEvaluation implements Logger.
func (NopLogger) LogEvaluation(LogEvent) {}

// EngineName reports the engine behind e.
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}

func cacheKey(engine, expr string, names []string, registry *FunctionRegistry) string {
	return engine + "|" + registry.cacheScope() + "|" + strings.Join(names, ",") + "|" + expr
}
