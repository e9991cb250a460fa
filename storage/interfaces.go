package storage

import (
	"context"

	"github.com/poiesic/chatindex/core"
)

// IndexWriter persists embedding pipeline artifacts. Implementations must be
// safe for concurrent use.
type IndexWriter interface {
	// SaveCheckpoint persists an interim checkpoint of pipeline progress.
	// Checkpoints are keyed by their ProcessedCount; saving a checkpoint with
	// the same count overwrites the previous one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// SaveIndex persists the complete index: the embedding matrix, the aligned
	// chunk metadata, and a full binary snapshot. The write replaces any
	// previously saved index.
	// Returns ErrInconsistentIndex if chunks and embeddings differ in length.
	SaveIndex(ctx context.Context, snapshot *core.Snapshot) error
}

// IndexReader loads persisted embedding pipeline artifacts.
type IndexReader interface {
	// LoadIndex loads the embedding matrix and chunk metadata for searching.
	// Returns ErrNotFound if no index has been saved.
	// Returns ErrInconsistentIndex if the matrix and metadata disagree on the
	// number of entries.
	LoadIndex(ctx context.Context) (*core.Index, error)

	// LoadSnapshot loads the full binary snapshot of the last completed run.
	// Returns ErrNotFound if no snapshot has been saved.
	LoadSnapshot(ctx context.Context) (*core.Snapshot, error)

	// LoadCheckpoint loads the checkpoint written at the given processed
	// count. Returns ErrNotFound if no such checkpoint exists.
	LoadCheckpoint(ctx context.Context, processedCount int) (*core.Checkpoint, error)

	// ListCheckpoints returns the processed counts of all saved checkpoints
	// in ascending order. Returns an empty slice when none exist.
	ListCheckpoints(ctx context.Context) ([]int, error)
}

// IndexStore combines reading and writing of index artifacts.
type IndexStore interface {
	IndexWriter
	IndexReader

	// Close closes the storage backend and releases resources.
	Close() error
}
