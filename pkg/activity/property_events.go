package activity

import (
	"strings"
	"time"
)

// Verbs published by the property engine and its stores.
const (
	VerbPropertyChanged = "property.changed"
	VerbPropertyUnset   = "property.unset"
	VerbLayersApplied   = "property.layers.applied"
	VerbDriverEvaluated = "driver.evaluated"
)

// PropertyEventInput describes the common fields of property events.
type PropertyEventInput struct {
	ActorID  string
	UserID   string
	TenantID string
	Channel  string
	// Struct is the identifier of the changed instance type.
	Struct string
	// Owner is the name of the owning data block and OwnerID its session id.
	Owner   string
	OwnerID string
	Path    string

	OldValue any
	NewValue any
	// Layers lists merged layers, strongest first.
	Layers     []string
	SnapshotID string

	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPropertyChangedEvent constructs the event of a property write.
func BuildPropertyChangedEvent(input PropertyEventInput) Event {
	return buildPropertyEvent(VerbPropertyChanged, input)
}

// BuildPropertyUnsetEvent constructs the event of a property reset to its
// default.
func BuildPropertyUnsetEvent(input PropertyEventInput) Event {
	return buildPropertyEvent(VerbPropertyUnset, input)
}

// BuildLayersAppliedEvent constructs the event of merged property layers
// attached to a data block.
func BuildLayersAppliedEvent(input PropertyEventInput) Event {
	return buildPropertyEvent(VerbLayersApplied, input)
}

// BuildDriverEvaluatedEvent constructs the event of a driver writing its
// target.
func BuildDriverEvaluatedEvent(input PropertyEventInput) Event {
	return buildPropertyEvent(VerbDriverEvaluated, input)
}

func buildPropertyEvent(verb string, input PropertyEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if owner := strings.TrimSpace(input.Owner); owner != "" {
		set("owner", owner)
	}
	if input.SnapshotID != "" {
		set("snapshot_id", input.SnapshotID)
	}
	if len(input.Layers) > 0 {
		set("layers", append([]string{}, input.Layers...))
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectType := strings.TrimSpace(input.Struct)
	if objectType == "" {
		objectType = "struct"
	}
	objectID := firstNonEmpty(input.OwnerID, input.Owner, input.Path, input.SnapshotID, objectType)

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Path:       strings.TrimSpace(input.Path),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
