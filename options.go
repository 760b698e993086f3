package simdata

import (
	"github.com/goliatone/go-simdata/pkg/activity"
	"github.com/goliatone/go-simdata/pkg/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option configures a data instance at construction.
type Option func(*dataConfig)

type dataConfig struct {
	id                uuid.UUID
	observed          []float64
	standardDeviation *Value
	noiseFloor        *Value

	logger       *zap.Logger
	deprecations DeprecationLogger
	ruleLogger   rules.Logger

	activityHooks   activity.Hooks
	activityChannel string
	actorID         string
	tenantID        string

	evaluator    rules.Evaluator
	functions    *rules.FunctionRegistry
	programCache rules.ProgramCache
}

func applyOptions(opts []Option) dataConfig {
	cfg := dataConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithObserved sets the initial observed data. Without it dobs starts as NaN.
func WithObserved(values []float64) Option {
	return func(cfg *dataConfig) {
		cfg.observed = values
	}
}

// WithStandardDeviation sets the initial relative uncertainty. Without it the
// field starts as zeros.
func WithStandardDeviation(value Value) Option {
	return func(cfg *dataConfig) {
		cfg.standardDeviation = &value
	}
}

// WithNoiseFloor sets the initial absolute uncertainty floor. Without it the
// field starts as zeros.
func WithNoiseFloor(value Value) Option {
	return func(cfg *dataConfig) {
		cfg.noiseFloor = &value
	}
}

// WithID fixes the instance identifier instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(cfg *dataConfig) {
		cfg.id = id
	}
}

// WithLogger sets the logger used for deprecation notices, rule applications
// and hook failures. Defaults to zap.L() resolved at log time.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *dataConfig) {
		cfg.logger = logger
	}
}

// WithDeprecationLogger replaces the zap-backed deprecation notices.
func WithDeprecationLogger(logger DeprecationLogger) Option {
	return func(cfg *dataConfig) {
		cfg.deprecations = logger
	}
}

// WithRuleLogger replaces the zap-backed rule application log.
func WithRuleLogger(logger rules.Logger) Option {
	return func(cfg *dataConfig) {
		cfg.ruleLogger = logger
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *dataConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *dataConfig) {
		cfg.activityChannel = channel
	}
}

// WithActor records who owns the changes made through this instance.
func WithActor(actorID, tenantID string) Option {
	return func(cfg *dataConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

// WithEvaluator sets the rule engine. Defaults to the expr engine.
func WithEvaluator(e rules.Evaluator) Option {
	return func(cfg *dataConfig) {
		cfg.evaluator = e
	}
}

// WithFunctionRegistry exposes registry functions to the default rule engine.
func WithFunctionRegistry(registry *rules.FunctionRegistry) Option {
	return func(cfg *dataConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithProgramCache shares compiled rule programs across instances.
func WithProgramCache(cache rules.ProgramCache) Option {
	return func(cfg *dataConfig) {
		cfg.programCache = cache
	}
}
