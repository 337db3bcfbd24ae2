// Package memstore is an in-memory remote backend. It backs tests and the
// "memory" driver, which lets the API run with sync enabled but no external
// service.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/remote"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]remote.Document
	now  func() time.Time
}

func New() *Store {
	return &Store{
		docs: make(map[string]remote.Document),
		now:  time.Now,
	}
}

func (s *Store) Set(ctx context.Context, path remote.Path, doc remote.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[path.String()] = s.resolve(nil, doc)

	return nil
}

func (s *Store) BatchSet(ctx context.Context, writes []remote.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single map under one lock, so the batch is atomic by construction.
	for _, w := range writes {
		s.docs[w.Path.String()] = s.resolve(nil, w.Doc)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, path remote.Path, fields remote.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[path.String()]
	if !ok {
		return remote.ErrNotFound
	}

	s.docs[path.String()] = s.resolve(existing, fields)

	return nil
}

func (s *Store) Get(ctx context.Context, path remote.Path) (remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path.String()]
	if !ok {
		return nil, remote.ErrNotFound
	}

	return clone(doc), nil
}

func (s *Store) ListWhere(ctx context.Context, storeID, collection string, filter remote.Document) (map[string]remote.Document, error) {
	prefix := remote.Path{StoreID: storeID, Collection: collection}.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]remote.Document)

	for key, doc := range s.docs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		docID := strings.TrimPrefix(key, prefix)
		if strings.Contains(docID, "/") {
			continue
		}

		if !matches(doc, filter) {
			continue
		}

		out[docID] = clone(doc)
	}

	return out, nil
}

// resolve merges fields into base, materializing Delta sentinels. A nil base
// starts from the incoming fields alone.
func (s *Store) resolve(base, fields remote.Document) remote.Document {
	out := clone(base)
	if out == nil {
		out = make(remote.Document, len(fields))
	}

	for key, value := range fields {
		delta, ok := value.(remote.Delta)
		if !ok {
			out[key] = value
			continue
		}

		switch delta.Kind {
		case remote.DeltaIncrement:
			current, _ := out[key].(float64)
			out[key] = current + delta.Amount
		case remote.DeltaServerTimestamp:
			out[key] = s.now().UnixMilli()
		}
	}

	return out
}

func matches(doc, filter remote.Document) bool {
	for key, want := range filter {
		if doc[key] != want {
			return false
		}
	}

	return true
}

func clone(doc remote.Document) remote.Document {
	if doc == nil {
		return nil
	}

	out := make(remote.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	return out
}
