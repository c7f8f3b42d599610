package state

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-rna/idprop"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// ErrNoLayers is returned when none of the requested refs is stored.
var ErrNoLayers = errors.New("state: no layers found")

// Ref identifies the persisted dynamic properties of one data block.
// Library names the file the block is linked from; empty means the local
// file.
type Ref struct {
	Library string
	Name    string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one property group for a single block reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (group *idprop.Property, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, group *idprop.Property, meta Meta) (Meta, error)
}

// Mutator edits a loaded group in place.
type Mutator func(group *idprop.Property) error

// Identifier returns the storage key of r.
func (r Ref) Identifier() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("state: block name is required")
	}
	if r.Library == "" {
		return "local/" + url.PathEscape(name), nil
	}
	library := strings.TrimSpace(r.Library)
	if library == "" {
		return "", fmt.Errorf("state: blank library for block %q", name)
	}
	return fmt.Sprintf("lib/%s/%s", url.PathEscape(library), url.PathEscape(name)), nil
}

// String returns a readable form of r for errors.
func (r Ref) String() string {
	if r.Library == "" {
		return r.Name
	}
	return r.Library + ":" + r.Name
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

// ValidateGroup checks that group is a group whose entries are named and
// unique at every level.
func ValidateGroup(group *idprop.Property) error {
	if group == nil {
		return fmt.Errorf("state: group is nil")
	}
	if group.Type() != idprop.Group {
		return fmt.Errorf("state: expected group, got %s", group.Type())
	}
	return validateChildren(group, "")
}

func validateChildren(group *idprop.Property, path string) error {
	seen := make(map[string]struct{}, len(group.Properties()))
	for _, child := range group.Properties() {
		if child.Name == "" {
			return fmt.Errorf("state: unnamed entry in %q", path)
		}
		if _, dup := seen[child.Name]; dup {
			return fmt.Errorf("state: duplicate entry %q in %q", child.Name, path)
		}
		seen[child.Name] = struct{}{}
		if child.Type() == idprop.Group {
			if err := validateChildren(child, joinPath(path, child.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
