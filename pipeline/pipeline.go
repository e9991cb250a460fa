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


package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chatindex/ai"
	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/extract"
	"github.com/poiesic/chatindex/storage"
)

const (
	// DefaultBatchSize is the number of conversations processed per batch.
	DefaultBatchSize = 100

	// DefaultCheckpointInterval is how often, in processed conversations, an
	// interim checkpoint is written.
	DefaultCheckpointInterval = 500

	// DefaultMaxRetries is the maximum number of embedding attempts per chunk.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay for embedding retry backoff.
	DefaultRetryDelay = 1 * time.Second

	defaultReportInterval = 10
)

// Pipeline drives the extractor and the embedding provider over a full
// conversation collection, in bounded batches, with periodic durable
// checkpoints and a final durable index write.
type Pipeline struct {
	store              storage.IndexWriter
	provider           ai.Provider
	extractor          *extract.Extractor
	pool               *ants.Pool
	batchSize          int
	checkpointInterval int
	maxRetries         int
	retryDelay         time.Duration
	limit              int
	progress           io.Writer
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of conversations per batch.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithCheckpointInterval sets how often, in processed conversations, an
// interim checkpoint is written. Default is DefaultCheckpointInterval.
func WithCheckpointInterval(interval int) Option {
	return func(p *Pipeline) error {
		if interval < 1 {
			interval = 1
		}
		p.checkpointInterval = interval
		return nil
	}
}

// WithPoolSize sets the worker pool size for per-chunk embedding dispatch.
// Default is 1 (sequential requests). Checkpoint writes always wait for the
// pool to drain the covered batch first.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithMaxRetries sets the maximum number of embedding attempts per chunk.
// Default is DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the base delay for embedding retry backoff.
// Default is DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.retryDelay = d
		return nil
	}
}

// WithLimit caps the number of conversations processed in a run.
// Zero means no limit, which is the default.
func WithLimit(n int) Option {
	return func(p *Pipeline) error {
		if n < 0 {
			n = 0
		}
		p.limit = n
		return nil
	}
}

// WithExtractor sets a custom conversation extractor.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithProgress sets the writer progress output is reported to.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w != nil {
			p.progress = w
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new embedding pipeline writing to store.
func NewPipeline(store storage.IndexWriter, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	extractor, err := extract.NewExtractor()
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:              store,
		provider:           provider,
		extractor:          extractor,
		pool:               pool,
		batchSize:          DefaultBatchSize,
		checkpointInterval: DefaultCheckpointInterval,
		maxRetries:         DefaultMaxRetries,
		retryDelay:         DefaultRetryDelay,
		progress:           io.Discard,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Result summarizes a completed pipeline run.
type Result struct {
	// TotalConversations is the number of conversations the run covered,
	// after applying any limit.
	TotalConversations int

	// EmbeddedCount is the number of chunks successfully embedded.
	EmbeddedCount int

	// SkippedConversations is the number of conversations dropped due to
	// extraction failures.
	SkippedConversations int

	// SkippedChunks is the number of chunks dropped due to embedding
	// failures after retries.
	SkippedChunks int

	// Checkpoints holds the processed counts of the checkpoints written.
	Checkpoints []int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Run embeds every conversation in the collection and persists the index.
// Per-conversation and per-chunk failures are logged and skipped; the run
// aborts up front if the embedding service is unreachable, and fails if the
// final index cannot be written.
func (p *Pipeline) Run(ctx context.Context, conversations []core.Conversation) (*Result, error) {
	if !p.provider.IsReachable(ctx) {
		return nil, ErrServiceUnreachable
	}

	if p.limit > 0 && len(conversations) > p.limit {
		conversations = conversations[:p.limit]
	}
	total := len(conversations)

	p.logger.Info("starting embedding run",
		"conversations", total,
		"batch_size", p.batchSize,
		"checkpoint_interval", p.checkpointInterval)

	tracker := NewProgressTracker(p.progress, total, defaultReportInterval)
	tracker.Start()

	result := &Result{TotalConversations: total}
	allChunks := []core.ChunkSummary{}
	allEmbeddings := [][]float32{}
	embedder := p.provider.Embedder()

	for batchStart := 0; batchStart < total; batchStart += p.batchSize {
		batchEnd := batchStart + p.batchSize
		if batchEnd > total {
			batchEnd = total
		}

		p.logger.Debug("processing batch",
			"batch", batchStart/p.batchSize+1,
			"from", batchStart,
			"to", batchEnd)

		var batchChunks []core.Chunk
		for i := batchStart; i < batchEnd; i++ {
			chunks, err := p.extractor.Extract(&conversations[i])
			if err != nil {
				p.logger.Error("error extracting conversation",
					"index", i, "err", err)
				result.SkippedConversations++
				continue
			}
			batchChunks = append(batchChunks, chunks...)
		}

		vectors := p.embedBatch(ctx, embedder, batchChunks)
		for i, chunk := range batchChunks {
			if vectors[i] == nil {
				result.SkippedChunks++
				continue
			}
			allChunks = append(allChunks, chunk.Summary())
			allEmbeddings = append(allEmbeddings, vectors[i])
		}

		tracker.Update(batchEnd)

		if (batchEnd%p.checkpointInterval == 0 || batchEnd == total) && len(allEmbeddings) > 0 {
			checkpoint := &core.Checkpoint{
				Chunks:         allChunks,
				Embeddings:     allEmbeddings,
				ProcessedCount: batchEnd,
				CreatedAt:      time.Now().UTC(),
			}
			if err := p.store.SaveCheckpoint(ctx, checkpoint); err != nil {
				p.logger.Error("error saving checkpoint",
					"processed_count", batchEnd, "err", err)
			} else {
				result.Checkpoints = append(result.Checkpoints, batchEnd)
			}
		}
	}

	snapshot := &core.Snapshot{
		Chunks:             allChunks,
		Embeddings:         allEmbeddings,
		TotalConversations: total,
		EmbeddingCount:     len(allEmbeddings),
		CreatedAt:          time.Now().UTC(),
	}
	if err := p.store.SaveIndex(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}

	tracker.Finish()
	result.EmbeddedCount = len(allEmbeddings)
	result.Elapsed = tracker.Elapsed()

	p.logger.Info("embedding run complete",
		"conversations", total,
		"embeddings", result.EmbeddedCount,
		"skipped_chunks", result.SkippedChunks,
		"elapsed", result.Elapsed.Round(time.Second))
	return result, nil
}

// embedBatch embeds a batch of chunks through the worker pool and returns the
// vectors positionally aligned with the input. Failed chunks yield nil rows.
// Returns only after every in-flight request for the batch has settled.
func (p *Pipeline) embedBatch(ctx context.Context, embedder ai.Embedder, chunks []core.Chunk) [][]float32 {
	vectors := make([][]float32, len(chunks))

	var wg sync.WaitGroup
	for i := range chunks {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunk := &chunks[i]

			var vec []float32
			err := retryEmbed(ctx, p.logger, func() error {
				var embedErr error
				vec, embedErr = embedder.EmbedText(ctx, chunk.Text)
				return embedErr
			}, p.maxRetries, p.retryDelay)
			if err != nil {
				p.logger.Error("error embedding chunk",
					"chunk_id", chunk.ChunkID, "err", err)
				return
			}
			vectors[i] = vec
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool unavailable; run inline rather than dropping the chunk.
			task()
		}
	}
	wg.Wait()

	return vectors
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
