package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "all-minilm", cfg.Model)
	assert.Equal(t, 384, cfg.Dimension)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434", cfg.Host)
		assert.Equal(t, "all-minilm", cfg.Model)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080"))

		assert.Equal(t, "http://custom:8080", cfg.Host)
	})

	t.Run("with custom model", func(t *testing.T) {
		cfg := NewConfig(WithModel("nomic-embed-text"))

		assert.Equal(t, "nomic-embed-text", cfg.Model)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080"),
			WithModel("nomic-embed-text"),
			WithDimension(768),
			WithTimeout(time.Minute),
		)

		assert.Equal(t, "http://custom:8080", cfg.Host)
		assert.Equal(t, "nomic-embed-text", cfg.Model)
		assert.Equal(t, 768, cfg.Dimension)
		assert.Equal(t, time.Minute, cfg.Timeout)
	})
}

func TestConfig_Normalize(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434/"))
	cfg.Normalize()

	assert.Equal(t, "http://localhost:11434", cfg.Host)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := NewConfig(WithDimension(0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := NewConfig(WithTimeout(0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434", cfg.Host)
	})
}
