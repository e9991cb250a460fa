package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/chatindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConversations(t *testing.T) {
	t.Run("valid collection", func(t *testing.T) {
		doc := `[{"id":"c1","title":"One","mapping":{}},{"id":"c2","title":"Two","mapping":{}}]`
		conversations, err := ReadConversations(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		assert.Equal(t, "c1", conversations[0].ID)
		assert.Equal(t, "Two", conversations[1].Title)
	})

	t.Run("empty collection", func(t *testing.T) {
		conversations, err := ReadConversations(strings.NewReader(`[]`))
		require.NoError(t, err)
		assert.Empty(t, conversations)
	})

	t.Run("invalid document", func(t *testing.T) {
		_, err := ReadConversations(strings.NewReader(`{"not":"an array"`))
		assert.Error(t, err)
	})
}

func TestLoadConversations(t *testing.T) {
	t.Run("missing file is not found", func(t *testing.T) {
		_, err := LoadConversations(filepath.Join(t.TempDir(), "nope.json"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conversations.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":"c1","title":"One","mapping":{}}]`), 0644))

		conversations, err := LoadConversations(path)
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		assert.Equal(t, "c1", conversations[0].ID)
	})
}
