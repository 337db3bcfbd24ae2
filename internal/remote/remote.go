// Package remote defines the document-store contract the sync layer pushes
// to. Backends address documents by path and overwrite whole documents, so a
// repeated push of the same entity is idempotent.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update and Get when no document exists at the
// path. Set never returns it: a missing document is created.
var ErrNotFound = errors.New("document not found")

// Path locates one document. An empty StoreID addresses a top-level
// collection shared across stores, such as users.
type Path struct {
	StoreID    string
	Collection string
	DocID      string
}

func (p Path) String() string {
	if p.StoreID == "" {
		return fmt.Sprintf("%s/%s", p.Collection, p.DocID)
	}

	return fmt.Sprintf("stores/%s/%s/%s", p.StoreID, p.Collection, p.DocID)
}

// Document is the wire shape of one record. Values are JSON-compatible
// scalars, plus the Delta sentinels which backends resolve on write.
type Document map[string]any

// Write pairs a path with its document for batch pushes.
type Write struct {
	Path Path
	Doc  Document
}

// Delta marks a field for server-side resolution instead of a literal value.
type Delta struct {
	Kind   DeltaKind
	Amount float64
}

type DeltaKind int

const (
	// DeltaIncrement adds Amount to the stored numeric field, treating a
	// missing field as zero.
	DeltaIncrement DeltaKind = iota
	// DeltaServerTimestamp stores the backend's current time.
	DeltaServerTimestamp
)

// Increment returns a sentinel that adds n to the stored field.
func Increment(n float64) Delta {
	return Delta{Kind: DeltaIncrement, Amount: n}
}

// ServerTimestamp returns a sentinel resolved to the backend's clock.
func ServerTimestamp() Delta {
	return Delta{Kind: DeltaServerTimestamp}
}

//go:generate mockgen -source=remote.go -destination=store_mock.go -package=remote

// Store is one remote backend. All writes resolve Delta sentinels.
type Store interface {
	// Set creates or fully overwrites the document at path.
	Set(ctx context.Context, path Path, doc Document) error
	// BatchSet applies every write or none of them.
	BatchSet(ctx context.Context, writes []Write) error
	// Update merges fields into an existing document. Returns ErrNotFound
	// when no document exists at path.
	Update(ctx context.Context, path Path, fields Document) error
	// Get fetches the document at path, or ErrNotFound.
	Get(ctx context.Context, path Path) (Document, error)
	// ListWhere returns the documents in a collection whose fields contain
	// every filter entry. A nil filter lists the whole collection.
	ListWhere(ctx context.Context, storeID, collection string, filter Document) (map[string]Document, error)
}
