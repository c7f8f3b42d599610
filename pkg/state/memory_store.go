package state

import (
	"context"
	"sync"
	"time"

	"github.com/samborkent/uuidv7"

	"github.com/goliatone/go-rna/idprop"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its deterministic key and copies
// groups on the way in and out.
//
// Saves without a snapshot id get a fresh UUIDv7; saves without an ETag
// use the snapshot id.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	group *idprop.Property
	meta  Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (*idprop.Property, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return record.group.Copy(), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, group *idprop.Property, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	if err := ValidateGroup(group); err != nil {
		return Meta{}, err
	}

	meta = cloneMeta(meta)
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuidv7.New().String()
	}
	if meta.ETag == "" {
		meta.ETag = meta.SnapshotID
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = s.now().UTC()
	}

	s.mu.Lock()
	if s.records == nil {
		s.records = map[string]memoryRecord{}
	}
	s.records[key] = memoryRecord{group: group.Copy(), meta: meta}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Delete removes the group stored for ref.
func (s *MemoryStore) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
