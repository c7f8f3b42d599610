package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	rna "github.com/goliatone/go-rna"
	"github.com/goliatone/go-rna/idprop"
	"github.com/goliatone/go-rna/pkg/activity"
)

// Resolver orchestrates layered loads and merges them into a single group.
type Resolver struct {
	Store Store
	// Emitter, when set, receives a property.layers.applied event from
	// Apply.
	Emitter *activity.Emitter
}

// Layer is one stored group that took part in a resolution.
type Layer struct {
	Ref   Ref
	Meta  Meta
	Group *idprop.Property
}

// Resolution is the merged group and the layers it was built from,
// strongest first.
type Resolution struct {
	Group  *idprop.Property
	Layers []Layer
}

// Source returns the strongest layer holding the entry at path, a dotted
// path through nested groups.
func (r Resolution) Source(path string) (Layer, bool) {
	for _, layer := range r.Layers {
		if lookup(layer.Group, path) != nil {
			return layer, true
		}
	}
	return Layer{}, false
}

// Lookup returns the merged entry at path.
func (r Resolution) Lookup(path string) *idprop.Property {
	return lookup(r.Group, path)
}

func lookup(group *idprop.Property, path string) *idprop.Property {
	entry := group
	for _, name := range strings.Split(path, ".") {
		entry = entry.Get(name)
		if entry == nil {
			return nil
		}
	}
	return entry
}

// Resolve loads refs, strongest first, and merges the stored groups.
// Missing refs are skipped; ErrNoLayers is returned when none is stored.
func (r Resolver) Resolve(ctx context.Context, refs ...Ref) (Resolution, error) {
	if r.Store == nil {
		return Resolution{}, fmt.Errorf("state: store is required")
	}
	if len(refs) == 0 {
		return Resolution{}, fmt.Errorf("state: at least one ref is required")
	}
	layers, err := r.load(ctx, refs)
	if err != nil {
		return Resolution{}, err
	}
	if len(layers) == 0 {
		return Resolution{}, fmt.Errorf("%w for %v", ErrNoLayers, refs)
	}
	return merge(layers, nil), nil
}

// ResolveWithDefaults is Resolve with defaults as the weakest layer. It
// succeeds when no ref is stored.
func (r Resolver) ResolveWithDefaults(ctx context.Context, defaults *idprop.Property, refs ...Ref) (Resolution, error) {
	if r.Store == nil {
		return Resolution{}, fmt.Errorf("state: store is required")
	}
	if defaults != nil {
		if err := ValidateGroup(defaults); err != nil {
			return Resolution{}, fmt.Errorf("state: defaults: %w", err)
		}
	}
	layers, err := r.load(ctx, refs)
	if err != nil {
		return Resolution{}, err
	}
	if len(layers) == 0 && defaults == nil {
		return Resolution{}, fmt.Errorf("%w for %v", ErrNoLayers, refs)
	}
	return merge(layers, defaults), nil
}

func (r Resolver) load(ctx context.Context, refs []Ref) ([]Layer, error) {
	layers := make([]Layer, 0, len(refs))
	for _, ref := range refs {
		group, meta, ok, err := r.Store.Load(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("state: load %s: %w", ref, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, Layer{Ref: ref, Meta: meta, Group: group})
	}
	return layers, nil
}

func merge(layers []Layer, defaults *idprop.Property) Resolution {
	groups := make([]*idprop.Property, 0, len(layers)+1)
	for _, layer := range layers {
		groups = append(groups, layer.Group)
	}
	groups = append(groups, defaults)
	merged := idprop.MergeLayers(groups...)
	switch {
	case merged == nil:
		merged = idprop.NewGroup("")
	case len(layers) == 0:
		// Defaults alone are never explicitly set.
		markGhost(merged)
	}
	return Resolution{Group: merged, Layers: layers}
}

func markGhost(p *idprop.Property) {
	p.Flag |= idprop.FlagGhost
	for _, child := range p.Properties() {
		markGhost(child)
	}
	for _, item := range p.Items() {
		markGhost(item)
	}
}

// Apply resolves refs and installs the merged group as the dynamic
// properties of block, replacing any existing group.
func (r Resolver) Apply(ctx context.Context, block rna.IDBlock, refs ...Ref) (Resolution, error) {
	if block == nil || block.IDRef() == nil {
		return Resolution{}, fmt.Errorf("state: block is required")
	}
	res, err := r.Resolve(ctx, refs...)
	if err != nil {
		return Resolution{}, err
	}
	id := block.IDRef()
	id.Properties = res.Group

	if r.Emitter.Enabled() {
		input := activity.PropertyEventInput{
			Owner:  id.Name,
			Layers: make([]string, 0, len(res.Layers)),
		}
		if id.Type != nil {
			input.Struct = id.Type.Identifier
		}
		if id.SessionUUID != uuid.Nil {
			input.OwnerID = id.SessionUUID.String()
		}
		for _, layer := range res.Layers {
			key, _ := layer.Ref.Identifier()
			input.Layers = append(input.Layers, key)
		}
		if len(res.Layers) > 0 {
			input.SnapshotID = res.Layers[0].Meta.SnapshotID
		}
		if err := r.Emitter.Emit(ctx, activity.BuildLayersAppliedEvent(input)); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Mutate loads one group, applies fn to a copy, validates it, then saves.
// A missing group starts empty. When meta carries an ETag it must match the
// stored one.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*idprop.Property, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, err
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	group, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %s: %w", ref, err)
	}
	if !ok || group == nil {
		group = idprop.NewGroup("")
		loadedMeta = Meta{}
	} else {
		group = group.Copy()
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(group); err != nil {
		return nil, loadedMeta, err
	}
	if err := ValidateGroup(group); err != nil {
		return nil, loadedMeta, err
	}

	// Stores assign the snapshot id and ETag of the new version.
	saveMeta := mergeMeta(Meta{Extra: loadedMeta.Extra}, Meta{UpdatedAt: meta.UpdatedAt, Extra: meta.Extra})
	savedMeta, err := r.Store.Save(ctx, ref, group, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %s: %w", ref, err)
	}
	return group, savedMeta, nil
}
