package rna

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	logger     Logger
	translator Translator
	deps       DepsGraph
	notifier   Notifier
}

// Registry maps struct identifiers to descriptors and hosts every
// property operation. Build it once at startup, register the application
// types, then call Init.
type Registry struct {
	cfg registryConfig

	mu          sync.RWMutex
	structs     []*StructDescriptor
	byName      map[string]*StructDescriptor
	props       map[*StructDescriptor]map[string]*PropertyDescriptor
	initialized bool

	// groupMu guards lookup and lazy creation of backing property groups.
	groupMu sync.Mutex
}

// NewRegistry returns a registry holding the builtin structs.
func NewRegistry(opts ...Option) *Registry {
	cfg := registryConfig{
		logger:     noopLogger{},
		translator: identityTranslator{},
		deps:       noopDepsGraph{},
		notifier:   noopNotifier{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	reg := &Registry{
		cfg:    cfg,
		byName: make(map[string]*StructDescriptor),
	}
	reg.MustRegister(builtinStructs()...)
	return reg
}

// WithDepsGraph routes recalculation tags to deps.
func WithDepsGraph(deps DepsGraph) Option {
	return func(cfg *registryConfig) {
		if deps == nil {
			cfg.deps = noopDepsGraph{}
			return
		}
		cfg.deps = deps
	}
}

// WithNotifier routes redraw notes to notifier.
func WithNotifier(notifier Notifier) Option {
	return func(cfg *registryConfig) {
		if notifier == nil {
			cfg.notifier = noopNotifier{}
			return
		}
		cfg.notifier = notifier
	}
}

// Register adds structs to the registry. Registering an identifier twice
// fails with ErrDuplicateStruct and leaves the registry unchanged for that
// struct.
func (r *Registry) Register(structs ...*StructDescriptor) error {
	for _, s := range structs {
		if err := r.register(s); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is Register that panics on error. Use it for compiled in
// types where a duplicate is a programming error.
func (r *Registry) MustRegister(structs ...*StructDescriptor) {
	if err := r.Register(structs...); err != nil {
		panic(err)
	}
}

func (r *Registry) register(s *StructDescriptor) error {
	if s == nil || s.Identifier == "" {
		return fmt.Errorf("rna: register: struct without identifier")
	}

	r.mu.Lock()
	if _, exists := r.byName[s.Identifier]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateStruct, s.Identifier)
	}
	for _, prop := range s.Properties {
		if err := prop.checkDefaults(); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("rna: register %s: %w", s.Identifier, err)
		}
	}
	if s.Name == "" {
		s.Name = s.Identifier
	}
	for _, prop := range s.Properties {
		prop.owner = s
		prop.normalize()
		if r.initialized {
			prop.Intern |= InternRuntime
		}
	}
	if r.initialized {
		s.Flag |= StructFlagRuntime
	}
	r.structs = append(r.structs, s)
	r.byName[s.Identifier] = s
	if r.initialized {
		r.props[s] = indexProperties(s)
	}
	r.mu.Unlock()

	if s.Register != nil {
		if err := s.Register(r, s); err != nil {
			r.remove(s)
			return fmt.Errorf("rna: register %s: %w", s.Identifier, err)
		}
	}
	return nil
}

// Unregister removes the struct named identifier, running the nearest
// unregister callback of its base chain.
func (r *Registry) Unregister(identifier string) error {
	s := r.Find(identifier)
	if s == nil {
		return fmt.Errorf("%w: struct %q", ErrNotFound, identifier)
	}
	if fn := s.UnregisterFunc(); fn != nil {
		if err := fn(r, s); err != nil {
			return fmt.Errorf("rna: unregister %s: %w", identifier, err)
		}
	}
	r.remove(s)
	return nil
}

func (r *Registry) remove(s *StructDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, s.Identifier)
	if r.props != nil {
		delete(r.props, s)
	}
	r.structs = slices.DeleteFunc(r.structs, func(item *StructDescriptor) bool {
		return item == s
	})
}

// Init builds the per struct property name indices. Builtin properties are
// left out so user defined properties cannot be shadowed by them. Calling
// Init twice is a no-op.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return
	}
	r.props = make(map[*StructDescriptor]map[string]*PropertyDescriptor, len(r.structs))
	for _, s := range r.structs {
		r.props[s] = indexProperties(s)
	}
	r.initialized = true
}

// Exit drops the indices built by Init. Descriptors are left untouched.
func (r *Registry) Exit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props = nil
	r.initialized = false
}

func indexProperties(s *StructDescriptor) map[string]*PropertyDescriptor {
	index := make(map[string]*PropertyDescriptor, len(s.Properties))
	for _, prop := range s.Properties {
		if prop.Intern&InternBuiltin != 0 {
			continue
		}
		index[prop.Identifier] = prop
	}
	return index
}

// Find returns the struct named identifier, or nil.
func (r *Registry) Find(identifier string) *StructDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[identifier]
}

// Structs yields the registered structs in registration order.
func (r *Registry) Structs() iter.Seq[*StructDescriptor] {
	r.mu.RLock()
	snapshot := slices.Clone(r.structs)
	r.mu.RUnlock()
	return slices.Values(snapshot)
}

// StructFindProperty looks up a non builtin property on s and its bases
// through the name index, falling back to a scan before Init.
func (r *Registry) StructFindProperty(s *StructDescriptor, identifier string) *PropertyDescriptor {
	r.mu.RLock()
	indexed := r.initialized
	r.mu.RUnlock()

	for base := s; base != nil; base = base.Base {
		if indexed {
			r.mu.RLock()
			index, ok := r.props[base]
			r.mu.RUnlock()
			if ok {
				if prop := index[identifier]; prop != nil {
					return prop
				}
				continue
			}
		}
		if prop := base.FindPropertyNoBase(identifier); prop != nil && prop.Intern&InternBuiltin == 0 {
			return prop
		}
	}
	return nil
}

func (r *Registry) log(event LogEvent) {
	r.cfg.logger.LogEvent(event)
}
