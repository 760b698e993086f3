package simdata

import (
	"context"

	"github.com/goliatone/go-simdata/pkg/activity"
	"go.uber.org/zap"
)

// ActivityHooks returns a copy of the hooks configured on the instance.
func (d *Data) ActivityHooks() activity.Hooks {
	return d.cfg.activityHooks.Clone()
}

func (d *Data) eventInput(field Field) activity.DataEventInput {
	objectType := activity.ObjectTypeData
	if d.kind == KindSynthetic {
		objectType = activity.ObjectTypeSynthetic
	}
	return activity.DataEventInput{
		ActorID:    d.cfg.actorID,
		TenantID:   d.cfg.tenantID,
		DataID:     d.id.String(),
		ObjectType: objectType,
		Field:      string(field),
		NumData:    len(d.dobs),
	}
}

func (d *Data) emitFieldUpdated(field Field, r *Range) {
	input := d.eventInput(field)
	if r != nil {
		input.Partial = true
		input.Begin = r.Begin
		input.End = r.End
	}
	d.emit(activity.BuildFieldUpdatedEvent(input))
}

// emit never fails the caller; hook errors are logged.
func (d *Data) emit(event activity.Event) {
	if !d.emitter.Enabled() {
		return
	}
	if err := d.emitter.Emit(context.Background(), event); err != nil {
		d.logger().Warn("activity hook failed",
			zap.String("verb", event.Verb),
			zap.String("data_id", d.id.String()),
			zap.Error(err),
		)
	}
}
