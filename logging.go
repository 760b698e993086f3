package simdata

import (
	"github.com/goliatone/go-simdata/pkg/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeprecationEvent describes one call through a deprecated accessor.
type DeprecationEvent struct {
	DataID      uuid.UUID
	Accessor    string
	Replacement string
}

// DeprecationLogger receives deprecation notices. Notices are advisory and
// never change the outcome of the call that produced them.
type DeprecationLogger interface {
	LogDeprecation(DeprecationEvent)
}

// DeprecationLoggerFunc adapts a function to DeprecationLogger.
type DeprecationLoggerFunc func(DeprecationEvent)

// LogDeprecation implements DeprecationLogger.
func (f DeprecationLoggerFunc) LogDeprecation(event DeprecationEvent) {
	if f != nil {
		f(event)
	}
}

type zapDeprecationLogger struct {
	logger func() *zap.Logger
}

func (l zapDeprecationLogger) LogDeprecation(event DeprecationEvent) {
	l.logger().Warn(
		event.Accessor+" is deprecated; use "+event.Replacement,
		zap.String("data_id", event.DataID.String()),
		zap.String("accessor", event.Accessor),
		zap.String("replacement", event.Replacement),
	)
}

type zapRuleLogger struct {
	logger func() *zap.Logger
}

func (l zapRuleLogger) LogEvaluation(event rules.LogEvent) {
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.Int("count", event.Count),
		zap.Duration("duration", event.Duration),
	}
	if event.Field != "" {
		fields = append(fields, zap.String("field", event.Field))
	}
	if event.Err != nil {
		l.logger().Warn("rule failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger().Debug("rule applied", fields...)
}

func (d *Data) logger() *zap.Logger {
	if d.cfg.logger != nil {
		return d.cfg.logger
	}
	return zap.L()
}

func (d *Data) deprecationLogger() DeprecationLogger {
	if d.cfg.deprecations != nil {
		return d.cfg.deprecations
	}
	return zapDeprecationLogger{logger: d.logger}
}

func (d *Data) ruleLogger() rules.Logger {
	if d.cfg.ruleLogger != nil {
		return d.cfg.ruleLogger
	}
	return zapRuleLogger{logger: d.logger}
}
