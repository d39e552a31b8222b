package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindfulplus/mindful/internal/common"
)

type memoryDoc struct {
	collection string
	raw        []byte
	created    time.Time
	updated    time.Time
}

// MemoryStore keeps documents in process. Values go through the same JSON
// encoding as the PostgreSQL store, so reads never alias caller maps.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*memoryDoc
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*memoryDoc),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// WithClock replaces the clock used for ServerTimestamp and document times.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(ctx context.Context, p string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, _, err := splitPath(p); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[p]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d.document(p)
}

func (s *MemoryStore) Set(ctx context.Context, p string, data map[string]any, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, _, err := splitPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	incoming := resolve(data, now)
	existing, ok := s.docs[p]
	if merge && ok {
		current, err := decode(existing.raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		incoming = mergeInto(current, incoming)
	}
	raw, err := encode(incoming)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	created := now
	if ok {
		created = existing.created
	}
	s.docs[p] = &memoryDoc{collection: collection, raw: raw, created: created, updated: now}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, p string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := splitPath(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[p]
	if !ok {
		return common.ErrorNotFound
	}
	current, err := decode(existing.raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	now := s.now()
	for k, v := range resolve(data, now) {
		current[k] = v
	}
	raw, err := encode(current)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	existing.raw = raw
	existing.updated = now
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if !validCollection(collection) {
		return "", ErrInvalidPath
	}
	id := uuid.NewString()
	if err := s.Set(ctx, Join(collection, id), data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := splitPath(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, p)
	return nil
}

func (s *MemoryStore) DeleteBatch(ctx context.Context, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(paths) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	for _, p := range paths {
		if _, _, err := splitPath(p); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.docs, p)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validCollection(q.Collection) {
		return nil, ErrInvalidPath
	}
	s.mu.RLock()
	out := make([]Document, 0)
	for p, d := range s.docs {
		if d.collection != q.Collection {
			continue
		}
		doc, err := d.document(p)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		if !matchesAll(doc.Data, q) {
			continue
		}
		out = append(out, *doc)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderBy != "" {
			a, _ := lookup(out[i].Data, q.OrderBy)
			b, _ := lookup(out[j].Data, q.OrderBy)
			if c, ok := compare(a, b); ok && c != 0 {
				if q.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return out[i].Path < out[j].Path
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func matchesAll(data map[string]any, q Query) bool {
	if q.OrderBy != "" {
		if _, ok := lookup(data, q.OrderBy); !ok {
			return false
		}
	}
	for _, f := range q.Filters {
		if !matches(data, f) {
			return false
		}
	}
	return true
}

func (d *memoryDoc) document(p string) (*Document, error) {
	data, err := decode(d.raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	_, id, _ := splitPath(p)
	return &Document{Path: p, ID: id, Data: data, CreateTime: d.created, UpdateTime: d.updated}, nil
}
