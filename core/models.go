package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed chunks.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkMeta carries the fixed metadata attached to a Chunk at extraction time.
type ChunkMeta struct {
	Title        string
	MessageCount int
	// Truncated reports whether the formatted conversation text exceeded the
	// extractor's maximum chunk length before truncation.
	Truncated bool
}

// Chunk is a unit of extracted conversation text ready for embedding.
// Chunks are immutable once created.
type Chunk struct {
	ConversationID string
	ChunkID        string
	Text           string
	Meta           ChunkMeta
}

// PreviewLength is the number of characters of chunk text preserved in a
// ChunkSummary.
const PreviewLength = 200

// Summary derives the persisted summary record for the chunk.
// The summary ID is content-based, so identical chunk text yields identical IDs.
func (c *Chunk) Summary() ChunkSummary {
	return ChunkSummary{
		Id:             IDFromContent(c.Text),
		ConversationID: c.ConversationID,
		ChunkID:        c.ChunkID,
		Title:          c.Meta.Title,
		MessageCount:   c.Meta.MessageCount,
		TextPreview:    TruncateRunes(c.Text, PreviewLength),
	}
}

// ChunkSummary describes one row of the embedding matrix. Row i of the matrix
// holds the embedding for summary i; the two sequences must stay positionally
// aligned.
type ChunkSummary struct {
	Id             ID     `json:"id"`
	ConversationID string `json:"conversation_id"`
	ChunkID        string `json:"chunk_id"`
	Title          string `json:"title"`
	MessageCount   int    `json:"message_count"`
	TextPreview    string `json:"text_preview"`
}

// Checkpoint is an interim durable snapshot of pipeline progress, written every
// N processed conversations. Checkpoints are strictly additive snapshots of the
// same growing collections.
type Checkpoint struct {
	Chunks         []ChunkSummary
	Embeddings     [][]float32
	ProcessedCount int
	CreatedAt      time.Time
}

// Snapshot is the full binary artifact persisted when a pipeline run finishes.
// It holds everything needed to rebuild the index without re-embedding.
type Snapshot struct {
	Chunks             []ChunkSummary
	Embeddings         [][]float32
	TotalConversations int
	EmbeddingCount     int
	CreatedAt          time.Time
}

// IndexSummary holds the totals recorded alongside a persisted index.
type IndexSummary struct {
	TotalConversations int       `json:"total_conversations"`
	EmbeddingCount     int       `json:"embedding_count"`
	EmbeddingDim       int       `json:"embedding_dim"`
	CreatedAt          time.Time `json:"timestamp"`
}

// Index is a loaded index: the dense embedding matrix, the aligned chunk
// summaries, and the recorded totals. Read-only once loaded.
type Index struct {
	Embeddings [][]float32
	Chunks     []ChunkSummary
	Summary    IndexSummary
}

// MessageStats aggregates message counts across all indexed chunks.
type MessageStats struct {
	Min   int
	Max   int
	Avg   float64
	Total int
}

// IndexStats describes a loaded index for reporting.
type IndexStats struct {
	TotalEmbeddings    int
	TotalConversations int
	EmbeddingDim       int
	CreatedAt          time.Time
	Messages           MessageStats
	UniqueTitles       int
	DuplicateTitles    int
}

// SearchResult is a similarity search hit: a chunk summary with its cosine
// similarity score against the query.
type SearchResult struct {
	Chunk *ChunkSummary
	Score float32
}

// TruncateRunes returns s cut to at most n Unicode code points, never
// splitting a rune.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
