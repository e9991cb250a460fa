package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chatindex/ai/mock"
	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/storage"
	"github.com/poiesic/chatindex/storage/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReader serves a pre-built index without touching disk.
type stubReader struct {
	index *core.Index
}

var _ storage.IndexReader = (*stubReader)(nil)

func (r *stubReader) LoadIndex(ctx context.Context) (*core.Index, error) {
	return r.index, nil
}

func (r *stubReader) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	return nil, storage.ErrNotFound
}

func (r *stubReader) LoadCheckpoint(ctx context.Context, processedCount int) (*core.Checkpoint, error) {
	return nil, storage.ErrNotFound
}

func (r *stubReader) ListCheckpoints(ctx context.Context) ([]int, error) {
	return nil, nil
}

func testIndex() *core.Index {
	return &core.Index{
		Embeddings: [][]float32{
			{1, 0},
			{0, 1},
			{0.9, 0.1},
		},
		Chunks: []core.ChunkSummary{
			{Id: 1, ConversationID: "conv-a", ChunkID: "conv-a_full", Title: "Alpha", MessageCount: 2, TextPreview: "Title: Alpha"},
			{Id: 2, ConversationID: "conv-b", ChunkID: "conv-b_full", Title: "Beta", MessageCount: 8, TextPreview: "Title: Beta"},
			{Id: 3, ConversationID: "conv-c", ChunkID: "conv-c_full", Title: "Alpha", MessageCount: 5, TextPreview: "Title: Alpha"},
		},
		Summary: core.IndexSummary{
			TotalConversations: 3,
			EmbeddingCount:     3,
			EmbeddingDim:       2,
			CreatedAt:          time.Now().UTC(),
		},
	}
}

func newTestEngine(t *testing.T, index *core.Index, provider *mock.MockProvider) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), &stubReader{index: index}, provider)
	require.NoError(t, err)
	return engine
}

func TestNewEngine_Validation(t *testing.T) {
	provider := mock.NewMockProvider()

	t.Run("requires store", func(t *testing.T) {
		_, err := NewEngine(context.Background(), nil, provider)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewEngine(context.Background(), &stubReader{index: testIndex()}, nil)
		assert.ErrorIs(t, err, ErrProviderRequired)
	})
}

func TestNewEngine_MissingIndex(t *testing.T) {
	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = NewEngine(context.Background(), store, mock.NewMockProvider())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_Search_Ranking(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	engine := newTestEngine(t, testIndex(), provider)

	results, err := engine.Search(context.Background(), "alpha things", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "conv-a", results[0].Chunk.ConversationID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)

	assert.Equal(t, "conv-c", results[1].Chunk.ConversationID)
	assert.InDelta(t, 0.9938, results[1].Score, 1e-3)
}

func TestEngine_Search_TopKBounds(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	engine := newTestEngine(t, testIndex(), provider)
	ctx := context.Background()

	t.Run("never more than stored rows", func(t *testing.T) {
		results, err := engine.Search(ctx, "query", 50)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		results, err := engine.Search(ctx, "query", 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestEngine_Search_EmbedFailure(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}
	engine := newTestEngine(t, testIndex(), provider)

	results, err := engine.Search(context.Background(), "query", 5)
	require.NoError(t, err, "a failed query embedding should not be fatal")
	assert.Empty(t, results)
}

func TestEngine_Search_ZeroQueryVector(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 0}, nil
	}
	engine := newTestEngine(t, testIndex(), provider)

	results, err := engine.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_SearchWithMonitor(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	engine := newTestEngine(t, testIndex(), provider)

	monitor := &capturingMonitor{}
	results, err := engine.SearchWithMonitor(context.Background(), "alpha", 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, "alpha", monitor.query)
	assert.Equal(t, []float32{1, 0}, monitor.embedding)
	assert.Equal(t, results, monitor.results)
}

type capturingMonitor struct {
	query     string
	embedding []float32
	results   []*core.SearchResult
}

func (m *capturingMonitor) Start(query string)                  { m.query = query }
func (m *capturingMonitor) AfterQueryEmbedding(v []float32)     { m.embedding = v }
func (m *capturingMonitor) Finish(results []*core.SearchResult) { m.results = results }

func TestEngine_FindSimilar(t *testing.T) {
	provider := mock.NewMockProvider()
	engine := newTestEngine(t, testIndex(), provider)
	ctx := context.Background()

	t.Run("excludes the queried conversation", func(t *testing.T) {
		results, err := engine.FindSimilar(ctx, "conv-a", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, result := range results {
			assert.NotEqual(t, "conv-a", result.Chunk.ConversationID)
		}
		// conv-c is the nearest neighbor of conv-a.
		assert.Equal(t, "conv-c", results[0].Chunk.ConversationID)
	})

	t.Run("respects topK", func(t *testing.T) {
		results, err := engine.FindSimilar(ctx, "conv-a", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		results, err := engine.FindSimilar(ctx, "no-such-conv", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestEngine_Statistics(t *testing.T) {
	provider := mock.NewMockProvider()

	t.Run("aggregates", func(t *testing.T) {
		engine := newTestEngine(t, testIndex(), provider)

		stats, err := engine.Statistics()
		require.NoError(t, err)

		assert.Equal(t, 3, stats.TotalEmbeddings)
		assert.Equal(t, 3, stats.TotalConversations)
		assert.Equal(t, 2, stats.EmbeddingDim)
		assert.Equal(t, 2, stats.Messages.Min)
		assert.Equal(t, 8, stats.Messages.Max)
		assert.Equal(t, 15, stats.Messages.Total)
		assert.InDelta(t, 5.0, stats.Messages.Avg, 1e-9)
		assert.Equal(t, 2, stats.UniqueTitles, "Alpha appears twice")
		assert.Equal(t, 1, stats.DuplicateTitles)
	})

	t.Run("empty index", func(t *testing.T) {
		engine := newTestEngine(t, &core.Index{}, provider)

		_, err := engine.Statistics()
		assert.ErrorIs(t, err, ErrEmptyIndex)
	})
}

func TestEngine_Summary(t *testing.T) {
	engine := newTestEngine(t, testIndex(), mock.NewMockProvider())
	summary := engine.Summary()
	assert.Equal(t, 3, summary.EmbeddingCount)
	assert.Equal(t, 2, summary.EmbeddingDim)
}
