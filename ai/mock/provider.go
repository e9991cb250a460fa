package mock

import (
	"context"

	"github.com/poiesic/chatindex/ai"
)

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	embedder *MockEmbedder

	// Unreachable makes IsReachable report false.
	Unreachable bool
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider backed by a deterministic mock embedder.
// The provider reports itself reachable unless Unreachable is set.
func NewMockProvider() *MockProvider {
	return &MockProvider{embedder: NewMockEmbedder()}
}

// Embedder returns the mock embedding service.
func (m *MockProvider) Embedder() ai.Embedder {
	return m.embedder
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (m *MockProvider) GetMockEmbedder() *MockEmbedder {
	return m.embedder
}

// IsReachable reports the configured reachability.
func (m *MockProvider) IsReachable(ctx context.Context) bool {
	return !m.Unreachable
}

// Close is a no-op.
func (m *MockProvider) Close() error {
	return nil
}
