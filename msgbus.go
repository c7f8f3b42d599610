package rna

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-rna/pkg/activity"
)

// Actor identifies who made an edit.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// ActivityBus publishes property changes as activity events.
type ActivityBus struct {
	Emitter *activity.Emitter
	// Registry, when set, is used to attach the new value to events.
	Registry *Registry
	// Actor extracts the editing identity from the request context.
	Actor func(ctx context.Context) Actor
}

// NewActivityBus returns a bus emitting through hooks on the default
// channel.
func NewActivityBus(reg *Registry, hooks ...activity.ActivityHook) *ActivityBus {
	return &ActivityBus{
		Emitter:  activity.NewEmitter(activity.Hooks(hooks), activity.Config{Enabled: true}),
		Registry: reg,
	}
}

// PublishProperty emits a property.changed event for prop of ptr.
func (b *ActivityBus) PublishProperty(ctx context.Context, ptr Ptr, prop *PropertyDescriptor) error {
	if b == nil || !b.Emitter.Enabled() || prop == nil {
		return nil
	}
	input := b.eventInput(ctx, ptr, prop.Identifier)
	if b.Registry != nil {
		if value, err := b.Registry.Get(ctx, ptr, StaticRef(prop)); err == nil {
			input.NewValue = publishable(value)
		}
	}
	return b.Emitter.Emit(ctx, activity.BuildPropertyChangedEvent(input))
}

// PublishUnset emits a property.unset event for the entry identifier of
// ptr.
func (b *ActivityBus) PublishUnset(ctx context.Context, ptr Ptr, identifier string) error {
	if b == nil || !b.Emitter.Enabled() || identifier == "" {
		return nil
	}
	return b.Emitter.Emit(ctx, activity.BuildPropertyUnsetEvent(b.eventInput(ctx, ptr, identifier)))
}

func (b *ActivityBus) eventInput(ctx context.Context, ptr Ptr, identifier string) activity.PropertyEventInput {
	input := activity.PropertyEventInput{
		Struct: structIdentifier(ptr.Type),
		Path:   PropertyPath(ptr, identifier),
	}
	if ptr.Owner != nil {
		input.Owner = ptr.Owner.Name
		if ptr.Owner.SessionUUID != uuid.Nil {
			input.OwnerID = ptr.Owner.SessionUUID.String()
		}
	}
	if b.Actor != nil {
		actor := b.Actor(ctx)
		input.ActorID, input.UserID, input.TenantID = actor.ActorID, actor.UserID, actor.TenantID
	}
	return input
}

// PropertyPath joins the path of ptr within its data block and identifier.
func PropertyPath(ptr Ptr, identifier string) string {
	base, ok := StructPath(ptr)
	if !ok || base == "" {
		return identifier
	}
	if strings.HasPrefix(identifier, "[") {
		return base + identifier
	}
	return base + "." + identifier
}

// publishable drops handles from event payloads.
func publishable(value any) any {
	switch v := value.(type) {
	case Ptr:
		if v.Owner != nil {
			return v.Owner.Name
		}
		return nil
	case []Ptr:
		return len(v)
	default:
		return value
	}
}
