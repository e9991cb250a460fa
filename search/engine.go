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


package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/chatindex/ai"
	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/storage"
)

// Engine answers similarity queries over a loaded index. It is read-only
// after construction and safe for concurrent queries.
type Engine struct {
	index    *core.Index
	rows     [][]float32 // normalized copy of the embedding matrix
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine loads the index from store and builds a search engine over it.
// Loading failures, including storage.ErrNotFound for an absent or partial
// index, surface to the caller; no engine is returned in that case.
func NewEngine(ctx context.Context, store storage.IndexReader, provider ai.Provider, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	index, err := store.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		index:    index,
		rows:     normalizeRows(index.Embeddings),
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.logger.Info("search engine ready",
		"embeddings", index.Summary.EmbeddingCount,
		"dim", index.Summary.EmbeddingDim)
	return e, nil
}

// Summary returns the totals recorded with the loaded index.
func (e *Engine) Summary() core.IndexSummary {
	return e.index.Summary
}

// Search embeds the query and returns the topK most similar entries by
// cosine similarity, highest first. A query that cannot be embedded yields
// an empty result, not an error, so a long-lived search session survives
// provider hiccups.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	return e.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor is Search with observation hooks for each stage.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	if topK <= 0 || len(e.rows) == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}
	monitor.AfterQueryEmbedding(embedding)

	queryNorm := NormalizeVector(embedding)
	if isZeroVector(queryNorm) {
		e.logger.Warn("query embedding has zero norm", "query", query)
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	results := e.rank(queryNorm, -1, topK)
	monitor.Finish(results)
	return results, nil
}

// FindSimilar returns the topK entries most similar to the first indexed
// chunk of the given conversation, never including that chunk itself. An
// unknown conversation ID yields an empty result.
func (e *Engine) FindSimilar(ctx context.Context, conversationID string, topK int) ([]*core.SearchResult, error) {
	if topK <= 0 || len(e.rows) == 0 {
		return []*core.SearchResult{}, nil
	}

	target := -1
	for i := range e.index.Chunks {
		if e.index.Chunks[i].ConversationID == conversationID {
			target = i
			break
		}
	}
	if target < 0 {
		e.logger.Warn("conversation not found in index", "conversation_id", conversationID)
		return []*core.SearchResult{}, nil
	}

	targetNorm := NormalizeVector(e.index.Embeddings[target])
	if isZeroVector(targetNorm) {
		e.logger.Warn("target embedding has zero norm", "conversation_id", conversationID)
		return []*core.SearchResult{}, nil
	}

	return e.rank(targetNorm, target, topK), nil
}

// rank scores every row against a unit query vector and returns the topK
// hits in descending score order. exclude is a row index left out of the
// ranking, or -1.
func (e *Engine) rank(queryNorm []float32, exclude, topK int) []*core.SearchResult {
	results := make([]*core.SearchResult, 0, len(e.rows))
	for i, row := range e.rows {
		if i == exclude {
			continue
		}
		results = append(results, &core.SearchResult{
			Chunk: &e.index.Chunks[i],
			Score: dotProduct(row, queryNorm),
		})
	}

	// Stable: equal scores keep index order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Statistics aggregates reporting statistics over the loaded index.
// Returns ErrEmptyIndex when the index has no entries.
func (e *Engine) Statistics() (*core.IndexStats, error) {
	chunks := e.index.Chunks
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	stats := &core.IndexStats{
		TotalEmbeddings:    len(chunks),
		TotalConversations: e.index.Summary.TotalConversations,
		EmbeddingDim:       e.index.Summary.EmbeddingDim,
		CreatedAt:          e.index.Summary.CreatedAt,
	}

	stats.Messages.Min = chunks[0].MessageCount
	stats.Messages.Max = chunks[0].MessageCount
	titles := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		count := chunks[i].MessageCount
		if count < stats.Messages.Min {
			stats.Messages.Min = count
		}
		if count > stats.Messages.Max {
			stats.Messages.Max = count
		}
		stats.Messages.Total += count
		titles[chunks[i].Title] = struct{}{}
	}
	stats.Messages.Avg = float64(stats.Messages.Total) / float64(len(chunks))
	stats.UniqueTitles = len(titles)
	stats.DuplicateTitles = len(chunks) - len(titles)

	return stats, nil
}
