package extract

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/chatindex/core"
)

const (
	// DefaultMaxChunkLength is the default maximum chunk length in characters.
	DefaultMaxChunkLength = 8000

	// UnknownConversationID is used when a conversation carries no id.
	UnknownConversationID = "unknown"

	// UntitledConversation is used when a conversation carries no title.
	UntitledConversation = "Untitled"
)

// Extractor turns raw conversation records into embeddable text chunks.
// It is pure and stateless; the same conversation always yields byte-identical
// chunks.
type Extractor struct {
	maxChunkLength int
	logger         *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithMaxChunkLength sets the maximum chunk length in characters.
// Default is DefaultMaxChunkLength.
func WithMaxChunkLength(n int) Option {
	return func(e *Extractor) error {
		if n <= 0 {
			return core.ErrInvalidChunkLength
		}
		e.maxChunkLength = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates a new extractor.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		maxChunkLength: DefaultMaxChunkLength,
		logger:         slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// message is one extracted speaker turn.
type message struct {
	role    string
	content string
}

// Extract derives zero or more chunks from a conversation. Missing fields
// degrade to defaults rather than errors: a conversation without an id becomes
// "unknown", without a title "Untitled", and a node whose message carries no
// usable text contributes nothing. A conversation with no extractable messages
// yields an empty chunk sequence.
//
// One conversation currently yields at most one chunk covering the whole
// formatted transcript; splitting very long conversations into several chunks
// is left open (chunk ids already carry a suffix for that reason).
func (e *Extractor) Extract(conv *core.Conversation) ([]core.Chunk, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	id := conv.ID
	if id == "" {
		id = UnknownConversationID
	}
	title := conv.Title
	if title == "" {
		title = UntitledConversation
	}

	messages := extractMessages(conv)
	if len(messages) == 0 {
		return nil, nil
	}

	full := formatConversation(title, messages)
	chunk := core.Chunk{
		ConversationID: id,
		ChunkID:        id + "_full",
		Text:           core.TruncateRunes(full, e.maxChunkLength),
		Meta: core.ChunkMeta{
			Title:        title,
			MessageCount: len(messages),
			Truncated:    utf8.RuneCountInString(full) > e.maxChunkLength,
		},
	}
	return []core.Chunk{chunk}, nil
}

// extractMessages walks the node mapping in stored order and collects speaker
// turns. Text parts of one message are joined with a single space.
func extractMessages(conv *core.Conversation) []message {
	var messages []message
	for _, entry := range conv.Mapping {
		msg := entry.Node.Message
		if msg == nil || len(msg.Content.Parts) == 0 {
			continue
		}

		var textParts []string
		for _, part := range msg.Content.Parts {
			if part.HasText {
				textParts = append(textParts, part.Text)
			}
		}
		if len(textParts) == 0 {
			continue
		}

		role := msg.Author.Role
		if role == "" {
			role = "unknown"
		}
		messages = append(messages, message{
			role:    role,
			content: strings.Join(textParts, " "),
		})
	}
	return messages
}

// formatConversation renders the transcript as a title header followed by one
// "ROLE: content" line per message, each separated by a blank line.
func formatConversation(title string, messages []message) string {
	lines := make([]string, 0, 2+2*len(messages))
	lines = append(lines, "Title: "+title, "")
	for _, msg := range messages {
		lines = append(lines, strings.ToUpper(msg.role)+": "+msg.content, "")
	}
	return strings.Join(lines, "\n")
}
