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


package ollama

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/chatindex/ai"
)

// ErrEmptyResponse indicates the embedding service answered without vectors.
var ErrEmptyResponse = errors.New("embedding service returned no vectors")

// probeTimeout bounds the reachability check.
const probeTimeout = 5 * time.Second

// Provider implements ai.Provider against an Ollama server.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	client   *http.Client
	logger   *slog.Logger
}

// NewProvider creates a new embedding provider backed by an Ollama server.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		client:   &http.Client{Timeout: probeTimeout},
		logger:   slog.Default().With("component", "ollama-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// IsReachable probes the server's tags endpoint and reports whether it
// answered with success. A false result means a batch run would fail on
// every chunk and should abort instead.
func (p *Provider) IsReachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.Host+"/api/tags", nil)
	if err != nil {
		p.logger.Error("failed to build probe request", "err", err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("embedding service unreachable", "host", p.config.Host, "err", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing ollama provider")
	return nil
}
