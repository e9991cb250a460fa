package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/storage"
)

// ReadConversations decodes a bulk export document: a single JSON array of
// conversation records.
func ReadConversations(r io.Reader) ([]core.Conversation, error) {
	var conversations []core.Conversation
	if err := json.NewDecoder(r).Decode(&conversations); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}
	return conversations, nil
}

// LoadConversations reads a bulk export document from disk.
// A missing file is reported as storage.ErrNotFound.
func LoadConversations(path string) ([]core.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: conversations file %s", storage.ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return ReadConversations(f)
}
