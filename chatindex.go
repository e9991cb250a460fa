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


package chatindex

import (
	"context"
	"log/slog"

	"github.com/poiesic/chatindex/ai"
	"github.com/poiesic/chatindex/ai/ollama"
	"github.com/poiesic/chatindex/pipeline"
	"github.com/poiesic/chatindex/search"
	"github.com/poiesic/chatindex/storage"
	"github.com/poiesic/chatindex/storage/file"
)

// Index bundles a file-backed index store with an embedding provider and acts
// as the factory for pipelines and search engines over that store.
type Index struct {
	store    storage.IndexStore
	provider ai.Provider
	logger   *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the embedding service configuration used to build the
// default provider.
func WithAIConfig(cfg *ai.Config) IndexOption {
	return func(o *indexOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider injects a pre-built embedding provider, bypassing the default
// Ollama provider. Useful for tests.
func WithProvider(provider ai.Provider) IndexOption {
	return func(o *indexOptions) {
		o.provider = provider
	}
}

// Open opens (or creates) the index directory at dir and wires up the
// embedding provider.
func Open(dir string, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	store, err := file.NewStore(dir)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = ollama.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Index{
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and the store.
func (ix *Index) Close() error {
	if err := ix.provider.Close(); err != nil {
		ix.logger.Error("error closing embedding provider", "err", err)
	}
	if err := ix.store.Close(); err != nil {
		ix.logger.Error("error closing index store", "err", err)
		return err
	}
	return nil
}

// Store exposes the underlying index store.
func (ix *Index) Store() storage.IndexStore {
	return ix.store
}

// NewPipeline creates a batch embedding pipeline writing to this index.
func (ix *Index) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(ix.store, ix.provider, opts...)
}

// NewEngine loads the persisted index and creates a search engine over it.
// Fails with storage.ErrNotFound if no index has been built yet.
func (ix *Index) NewEngine(ctx context.Context, opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(ctx, ix.store, ix.provider, opts...)
}
