package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "Title: Trip planning\n\nUSER: Where should we go hiking this summer?\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{name: "shorter than limit", s: "hello", n: 10, want: "hello"},
		{name: "exact limit", s: "hello", n: 5, want: "hello"},
		{name: "over limit", s: "hello world", n: 5, want: "hello"},
		{name: "zero limit", s: "hello", n: 0, want: ""},
		{name: "negative limit", s: "hello", n: -1, want: ""},
		{name: "multibyte runes stay whole", s: "héllo wörld", n: 6, want: "héllo "},
		{name: "empty string", s: "", n: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.s, tt.n); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

func TestChunk_Summary(t *testing.T) {
	chunk := Chunk{
		ConversationID: "c1",
		ChunkID:        "c1_full",
		Text:           "Title: Hello\n\nUSER: Hi there\n",
		Meta: ChunkMeta{
			Title:        "Hello",
			MessageCount: 1,
		},
	}

	summary := chunk.Summary()

	if summary.ConversationID != "c1" {
		t.Errorf("ConversationID = %q, want %q", summary.ConversationID, "c1")
	}
	if summary.ChunkID != "c1_full" {
		t.Errorf("ChunkID = %q, want %q", summary.ChunkID, "c1_full")
	}
	if summary.Title != "Hello" {
		t.Errorf("Title = %q, want %q", summary.Title, "Hello")
	}
	if summary.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", summary.MessageCount)
	}
	if summary.TextPreview != chunk.Text {
		t.Errorf("TextPreview = %q, want full text for short chunks", summary.TextPreview)
	}
	if summary.Id != IDFromContent(chunk.Text) {
		t.Errorf("Id is not content-based")
	}
}

func TestChunk_Summary_PreviewTruncation(t *testing.T) {
	long := make([]byte, 0, 1000)
	for i := 0; i < 1000; i++ {
		long = append(long, 'a')
	}
	chunk := Chunk{ConversationID: "c2", ChunkID: "c2_full", Text: string(long)}

	summary := chunk.Summary()
	if len(summary.TextPreview) != PreviewLength {
		t.Errorf("TextPreview length = %d, want %d", len(summary.TextPreview), PreviewLength)
	}
}
