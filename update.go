package rna

import "context"

// DepsGraph receives recalculation tags.
type DepsGraph interface {
	TagUpdate(id *ID, flags RecalcFlag)
	// TagRelationsUpdate asks for the relation cache to be rebuilt.
	TagRelationsUpdate()
}

// Notifier receives redraw notes. id may be nil.
type Notifier interface {
	AddNotifier(note Note, id *ID)
}

// MessageBus publishes property changes to subscribers.
type MessageBus interface {
	PublishProperty(ctx context.Context, ptr Ptr, prop *PropertyDescriptor) error
}

// Context is the interactive context of an edit. Its absence marks non
// interactive writes such as animation evaluation.
type Context struct {
	Main  *Main
	Scene any
	Bus   MessageBus
}

type contextKey struct{}

// WithContext attaches c to ctx.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ContextFrom returns the interactive context attached to ctx, or nil.
func ContextFrom(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}

type noopDepsGraph struct{}

func (noopDepsGraph) TagUpdate(*ID, RecalcFlag) {}
func (noopDepsGraph) TagRelationsUpdate()       {}

type noopNotifier struct{}

func (noopNotifier) AddNotifier(Note, *ID) {}

// Update runs the change notifications of a write made in ctx.
func (r *Registry) Update(ctx context.Context, ptr Ptr, ref PropertyRef) {
	c := ContextFrom(ctx)
	var (
		main  *Main
		scene any
	)
	if c != nil {
		main, scene = c.Main, c.Scene
	}
	r.update(ctx, c, main, scene, ptr, ref)
}

// UpdateMain runs the change notifications of a write made without an
// interactive context.
func (r *Registry) UpdateMain(main *Main, scene any, ptr Ptr, ref PropertyRef) {
	r.update(context.Background(), nil, main, scene, ptr, ref)
}

// UpdateCheck reports whether writes to the property trigger callbacks
// beyond the generic tags.
func UpdateCheck(ref PropertyRef) bool {
	prop := ref.static
	return prop != nil && (prop.Update != nil || prop.ContextUpdate != nil || prop.ContextPropertyUpdate != nil || prop.Note != 0)
}

func (r *Registry) update(ctx context.Context, c *Context, main *Main, scene any, ptr Ptr, ref PropertyRef) {
	prop := ref.static

	if prop != nil {
		switch {
		case prop.Flag&PropContextUpdate != 0:
			if c == nil {
				break
			}
			if prop.Flag&PropContextPropertyUpdate == PropContextPropertyUpdate && prop.ContextPropertyUpdate != nil {
				prop.ContextPropertyUpdate(c, ptr, prop)
			} else if prop.ContextUpdate != nil {
				prop.ContextUpdate(c, ptr)
			}
		case prop.Update != nil:
			prop.Update(main, scene, ptr)
		}

		if prop.Note != 0 {
			r.cfg.notifier.AddNotifier(prop.Note, ptr.Owner)
		}

		if c != nil && c.Bus != nil {
			if err := c.Bus.PublishProperty(ctx, ptr, prop); err != nil {
				r.log(LogEvent{
					Kind:     LogPublishFailed,
					Struct:   structIdentifier(ptr.Type),
					Property: prop.Identifier,
					Owner:    ownerName(ptr),
					Err:      err,
				})
			}
		}

		if ptr.Owner != nil && prop.Flag&PropNoDepsUpdate == 0 {
			r.cfg.deps.TagUpdate(ptr.Owner, prop.Recalc|RecalcCopyOnWrite)
			if prop.Type == TypePointer && r.pointerTargetsID(ptr, prop) {
				r.cfg.deps.TagRelationsUpdate()
			}
		}
	}

	// Dynamic writes always use coarse invalidation, including writes to
	// registered dynamic slots.
	if prop == nil || prop.Flag&PropIDProperty != 0 {
		if ptr.Owner != nil {
			r.cfg.deps.TagUpdate(ptr.Owner, RecalcAll)
		}
		r.cfg.notifier.AddNotifier(NoteWindow, nil)
	}
}

func (r *Registry) pointerTargetsID(ptr Ptr, prop *PropertyDescriptor) bool {
	typ := prop.Pointer.Type
	if prop.Pointer.TypeFunc != nil {
		typ = prop.Pointer.TypeFunc(ptr)
	}
	return typ.IsID()
}

// UnsetPublisher is implemented by buses that announce property resets.
type UnsetPublisher interface {
	PublishUnset(ctx context.Context, ptr Ptr, identifier string) error
}

// PropertyReset is PropertyUnset for interactive edits: a removed entry
// tags the owner for coarse recalculation and is announced on the context
// bus when it implements UnsetPublisher.
func (r *Registry) PropertyReset(ctx context.Context, ptr Ptr, ref PropertyRef) bool {
	identifier := r.Resolve(ptr, ref).Identifier
	if !r.PropertyUnset(ptr, ref) {
		return false
	}
	if ptr.Owner != nil {
		r.cfg.deps.TagUpdate(ptr.Owner, RecalcAll)
	}
	r.cfg.notifier.AddNotifier(NoteWindow, nil)

	if c := ContextFrom(ctx); c != nil {
		if bus, ok := c.Bus.(UnsetPublisher); ok {
			if err := bus.PublishUnset(ctx, ptr, identifier); err != nil {
				r.log(LogEvent{
					Kind:     LogPublishFailed,
					Struct:   structIdentifier(ptr.Type),
					Property: identifier,
					Owner:    ownerName(ptr),
					Err:      err,
				})
			}
		}
	}
	return true
}
