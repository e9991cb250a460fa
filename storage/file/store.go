// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/storage"
)

const (
	matrixFile         = "embeddings_matrix.bin"
	metadataFile       = "embeddings_metadata.json"
	snapshotFile       = "embeddings_snapshot.bin"
	checkpointFileTmpl = "embeddings_checkpoint_%d.bin"
)

// indexMetadata is the JSON document stored alongside the embedding matrix.
// Field order mirrors the on-disk layout consumed by external tooling.
type indexMetadata struct {
	Chunks             []core.ChunkSummary `json:"chunks"`
	TotalConversations int                 `json:"total_conversations"`
	EmbeddingCount     int                 `json:"embedding_count"`
	EmbeddingDim       int                 `json:"embedding_dim"`
	Timestamp          time.Time           `json:"timestamp"`
}

// Store persists index artifacts as flat files in a single directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ storage.IndexStore = (*Store)(nil)

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore opens a file-backed index store rooted at dir.
// Creates the directory if it doesn't exist.
func NewStore(dir string, opts ...Option) (storage.IndexStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
			info, err = os.Stat(dir)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	s := &Store{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SaveCheckpoint writes an interim checkpoint, keyed by its processed count.
func (s *Store) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := storage.MarshalCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	name := fmt.Sprintf(checkpointFileTmpl, checkpoint.ProcessedCount)
	if err := s.writeAtomic(name, data); err != nil {
		return err
	}

	s.logger.Info("checkpoint saved",
		"processed_count", checkpoint.ProcessedCount,
		"embeddings", len(checkpoint.Embeddings))
	return nil
}

// SaveIndex writes the embedding matrix, the chunk metadata document, and the
// full binary snapshot. Each artifact is written atomically.
func (s *Store) SaveIndex(ctx context.Context, snapshot *core.Snapshot) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(snapshot.Chunks) != len(snapshot.Embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			storage.ErrInconsistentIndex, len(snapshot.Chunks), len(snapshot.Embeddings))
	}

	matrixData, err := storage.MarshalMatrix(snapshot.Embeddings)
	if err != nil {
		return err
	}
	snapshotData, err := storage.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	dim := 0
	if len(snapshot.Embeddings) > 0 {
		dim = len(snapshot.Embeddings[0])
	}
	meta := indexMetadata{
		Chunks:             snapshot.Chunks,
		TotalConversations: snapshot.TotalConversations,
		EmbeddingCount:     len(snapshot.Embeddings),
		EmbeddingDim:       dim,
		Timestamp:          snapshot.CreatedAt,
	}
	if meta.Chunks == nil {
		meta.Chunks = []core.ChunkSummary{}
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrSerializationFailed, err)
	}

	if err := s.writeAtomic(matrixFile, matrixData); err != nil {
		return err
	}
	if err := s.writeAtomic(metadataFile, metaData); err != nil {
		return err
	}
	if err := s.writeAtomic(snapshotFile, snapshotData); err != nil {
		return err
	}

	s.logger.Info("index saved",
		"dir", s.dir,
		"embeddings", len(snapshot.Embeddings),
		"dim", dim)
	return nil
}

// LoadIndex reads the embedding matrix and metadata document and verifies
// that they agree on the number of entries.
func (s *Store) LoadIndex(ctx context.Context) (*core.Index, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	matrixData, err := s.readArtifact(matrixFile)
	if err != nil {
		return nil, err
	}
	metaData, err := s.readArtifact(metadataFile)
	if err != nil {
		return nil, err
	}

	embeddings, err := storage.UnmarshalMatrix(matrixData)
	if err != nil {
		return nil, err
	}
	var meta indexMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrSerializationFailed, err)
	}

	if len(embeddings) != len(meta.Chunks) {
		return nil, fmt.Errorf("%w: %d embeddings, %d chunk entries",
			storage.ErrInconsistentIndex, len(embeddings), len(meta.Chunks))
	}

	dim := meta.EmbeddingDim
	if len(embeddings) > 0 {
		dim = len(embeddings[0])
	}
	return &core.Index{
		Embeddings: embeddings,
		Chunks:     meta.Chunks,
		Summary: core.IndexSummary{
			TotalConversations: meta.TotalConversations,
			EmbeddingCount:     len(embeddings),
			EmbeddingDim:       dim,
			CreatedAt:          meta.Timestamp,
		},
	}, nil
}

// LoadSnapshot reads the full binary snapshot of the last completed run.
func (s *Store) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	data, err := s.readArtifact(snapshotFile)
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalSnapshot(data)
}

// LoadCheckpoint reads the checkpoint written at the given processed count.
func (s *Store) LoadCheckpoint(ctx context.Context, processedCount int) (*core.Checkpoint, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	data, err := s.readArtifact(fmt.Sprintf(checkpointFileTmpl, processedCount))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalCheckpoint(data)
}

// ListCheckpoints returns the processed counts of all saved checkpoints in
// ascending order.
func (s *Store) ListCheckpoints(ctx context.Context) ([]int, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	counts := []int{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var count int
		if n, err := fmt.Sscanf(entry.Name(), checkpointFileTmpl, &count); err != nil || n != 1 {
			continue
		}
		// Sscanf tolerates trailing junk; require an exact name.
		if fmt.Sprintf(checkpointFileTmpl, count) != entry.Name() {
			continue
		}
		counts = append(counts, count)
	}
	sort.Ints(counts)
	return counts, nil
}

// Close marks the store closed. Subsequent operations return ErrStorageClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	return nil
}

// readArtifact reads a file from the store directory, mapping a missing file
// to storage.ErrNotFound.
func (s *Store) readArtifact(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, err
	}
	return data, nil
}

// writeAtomic writes data to name via a temp file and rename, so readers
// never observe a partially written artifact.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
