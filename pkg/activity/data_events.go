package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the data model.
const (
	VerbDataCreated       = "data.created"
	VerbFieldUpdated      = "data.field.updated"
	VerbSurveyChanged     = "data.survey.changed"
	VerbDeprecatedAccess  = "data.deprecated_access"
	ObjectTypeData        = "data"
	ObjectTypeSynthetic   = "synthetic_data"
	defaultDataObjectType = ObjectTypeData
)

// DataEventInput describes the common fields for data lifecycle events.
type DataEventInput struct {
	ActorID    string
	TenantID   string
	DataID     string
	ObjectType string
	Channel    string
	Field      string
	NumData    int
	Begin      int
	End        int
	Partial    bool
	Accessor   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDataCreatedEvent constructs an event for a newly constructed data instance.
func BuildDataCreatedEvent(input DataEventInput) Event {
	return buildDataEvent(VerbDataCreated, input)
}

// BuildFieldUpdatedEvent constructs an event for a whole-field or ranged write.
func BuildFieldUpdatedEvent(input DataEventInput) Event {
	return buildDataEvent(VerbFieldUpdated, input)
}

// BuildSurveyChangedEvent constructs an event for a survey reassignment.
func BuildSurveyChangedEvent(input DataEventInput) Event {
	return buildDataEvent(VerbSurveyChanged, input)
}

// BuildDeprecatedAccessEvent constructs an event for a call through a
// deprecated accessor.
func BuildDeprecatedAccessEvent(input DataEventInput) Event {
	return buildDataEvent(VerbDeprecatedAccess, input)
}

func buildDataEvent(verb string, input DataEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Field != "" {
		metadata = ensureMetadata(metadata)
		metadata["field"] = input.Field
	}
	if input.NumData > 0 {
		metadata = ensureMetadata(metadata)
		metadata["nD"] = input.NumData
	}
	if input.Partial {
		metadata = ensureMetadata(metadata)
		metadata["begin"] = input.Begin
		metadata["end"] = input.End
	}
	if input.Accessor != "" {
		metadata = ensureMetadata(metadata)
		metadata["accessor"] = input.Accessor
	}

	objectType := strings.TrimSpace(input.ObjectType)
	if objectType == "" {
		objectType = defaultDataObjectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   strings.TrimSpace(input.DataID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
