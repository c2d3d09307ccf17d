// Package docstore defines the document-store abstraction the roster core
// persists through: JSON documents addressed by collection and ID, with
// full-document writes, atomic batches and a real-time change stream.
package docstore

import (
	"context"
	"errors"
)

// MaxBatchOps is the per-batch operation cap enforced by callers of
// ApplyBatch. Backends may reject larger batches outright.
const MaxBatchOps = 400

// ErrNotFound is returned by Get when no document exists for the ID.
var ErrNotFound = errors.New("document not found")

// ErrBatchTooLarge is returned by ApplyBatch when a batch exceeds MaxBatchOps.
var ErrBatchTooLarge = errors.New("batch exceeds maximum operation count")

// OpKind discriminates batch operations.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a single batched write.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       []byte
}

// Event is one change pushed by a Watch stream. Data is nil when the
// document was deleted.
type Event struct {
	Collection string
	ID         string
	Data       []byte
	Deleted    bool
}

// Store is the persistence collaborator for roster documents.
// Set always overwrites the whole document - there are no field patches,
// which trades partial-update races for last-writer-wins at document
// granularity.
type Store interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Set(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error

	// List returns all documents in a collection keyed by ID.
	List(ctx context.Context, collection string) (map[string][]byte, error)

	// ApplyBatch applies all operations atomically.
	ApplyBatch(ctx context.Context, ops []Op) error

	// Watch streams every subsequent change to the collection until ctx is
	// cancelled. The returned channel is closed when the stream ends.
	Watch(ctx context.Context, collection string) (<-chan Event, error)
}
