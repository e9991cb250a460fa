package storage

import (
	"testing"
	"time"

	"github.com/poiesic/chatindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalMatrix(t *testing.T) {
	tests := []struct {
		name   string
		matrix [][]float32
	}{
		{"empty matrix", [][]float32{}},
		{"single row", [][]float32{{0.1, 0.2, 0.3}}},
		{"multiple rows", [][]float32{
			{1.0, 0.0, -1.0},
			{0.5, 0.25, 0.125},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalMatrix(tt.matrix)
			require.NoError(t, err)

			decoded, err := UnmarshalMatrix(data)
			require.NoError(t, err)
			require.Len(t, decoded, len(tt.matrix))
			for i := range tt.matrix {
				assert.Equal(t, tt.matrix[i], decoded[i])
			}
		})
	}
}

func TestMarshalMatrix_Ragged(t *testing.T) {
	_, err := MarshalMatrix([][]float32{
		{1.0, 2.0},
		{1.0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshalMatrix_Truncated(t *testing.T) {
	data, err := MarshalMatrix([][]float32{{1.0, 2.0}, {3.0, 4.0}})
	require.NoError(t, err)

	_, err = UnmarshalMatrix(data[:len(data)-3])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestUnmarshalMatrix_Corrupt(t *testing.T) {
	// Zigzag-encoded row count of -1 followed by a zero dimension.
	_, err := UnmarshalMatrix([]byte{0x01, 0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	checkpoint := &core.Checkpoint{
		Chunks: []core.ChunkSummary{
			{
				Id:             core.IDFromContent("first chunk"),
				ConversationID: "conv-1",
				ChunkID:        "conv-1_full",
				Title:          "First",
				MessageCount:   3,
				TextPreview:    "Title: First",
			},
			{
				Id:             core.IDFromContent("second chunk"),
				ConversationID: "conv-2",
				ChunkID:        "conv-2_full",
				Title:          "Second",
				MessageCount:   1,
				TextPreview:    "Title: Second",
			},
		},
		Embeddings: [][]float32{
			{0.1, 0.2, 0.3},
			{0.4, 0.5, 0.6},
		},
		ProcessedCount: 500,
		CreatedAt:      now,
	}

	data, err := MarshalCheckpoint(checkpoint)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Chunks, decoded.Chunks)
	assert.Equal(t, checkpoint.Embeddings, decoded.Embeddings)
	assert.Equal(t, checkpoint.ProcessedCount, decoded.ProcessedCount)
	assert.True(t, checkpoint.CreatedAt.Equal(decoded.CreatedAt))
}

func TestUnmarshalCheckpoint_Truncated(t *testing.T) {
	data, err := MarshalCheckpoint(&core.Checkpoint{
		Chunks: []core.ChunkSummary{{
			Id:             core.IDFromContent("cut short"),
			ConversationID: "conv-1",
			ChunkID:        "conv-1_full",
			Title:          "Cut short",
			MessageCount:   2,
			TextPreview:    "Title: Cut short",
		}},
		Embeddings:     [][]float32{{0.1, 0.2}},
		ProcessedCount: 1,
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = UnmarshalCheckpoint(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalSnapshot(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		snapshot *core.Snapshot
	}{
		{
			name: "empty snapshot",
			snapshot: &core.Snapshot{
				Chunks:     []core.ChunkSummary{},
				Embeddings: [][]float32{},
				CreatedAt:  now,
			},
		},
		{
			name: "full snapshot",
			snapshot: &core.Snapshot{
				Chunks: []core.ChunkSummary{
					{
						Id:             core.IDFromContent("snapshot chunk"),
						ConversationID: "conv-9",
						ChunkID:        "conv-9_full",
						Title:          "Planning session",
						MessageCount:   12,
						TextPreview:    "Title: Planning session",
					},
				},
				Embeddings:         [][]float32{{0.9, -0.1, 0.3, 0.0}},
				TotalConversations: 1,
				EmbeddingCount:     1,
				CreatedAt:          now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalSnapshot(tt.snapshot)
			require.NoError(t, err)

			decoded, err := UnmarshalSnapshot(data)
			require.NoError(t, err)
			require.Len(t, decoded.Chunks, len(tt.snapshot.Chunks))
			require.Len(t, decoded.Embeddings, len(tt.snapshot.Embeddings))
			for i := range tt.snapshot.Chunks {
				assert.Equal(t, tt.snapshot.Chunks[i], decoded.Chunks[i])
			}
			for i := range tt.snapshot.Embeddings {
				assert.Equal(t, tt.snapshot.Embeddings[i], decoded.Embeddings[i])
			}
			assert.Equal(t, tt.snapshot.TotalConversations, decoded.TotalConversations)
			assert.Equal(t, tt.snapshot.EmbeddingCount, decoded.EmbeddingCount)
			assert.True(t, tt.snapshot.CreatedAt.Equal(decoded.CreatedAt))
		})
	}
}
