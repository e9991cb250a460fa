package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("already normalized", func(t *testing.T) {
		v := NormalizeVector([]float32{1, 0, 0})
		assert.Equal(t, []float32{1, 0, 0}, v)
	})

	t.Run("zero vector", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		v := NormalizeVector([]float32{})
		assert.Empty(t, v)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{2, 0}
		_ = NormalizeVector(in)
		assert.Equal(t, []float32{2, 0}, in)
	})
}

func TestCosineSimilarity_Properties(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.5}
	b := []float32{-0.1, 0.9, 0.4, 0.2}

	t.Run("symmetric", func(t *testing.T) {
		ab := dotProduct(NormalizeVector(a), NormalizeVector(b))
		ba := dotProduct(NormalizeVector(b), NormalizeVector(a))
		assert.InDelta(t, ab, ba, 1e-6)
	})

	t.Run("self similarity is one", func(t *testing.T) {
		aa := dotProduct(NormalizeVector(a), NormalizeVector(a))
		assert.InDelta(t, 1.0, aa, 1e-6)
	})
}

func TestNormalizeRows(t *testing.T) {
	matrix := [][]float32{
		{3, 4},
		{0, 0},
		{1, 0},
	}
	rows := normalizeRows(matrix)
	require.Len(t, rows, 3)

	assert.InDelta(t, 0.6, rows[0][0], 1e-6)
	assert.InDelta(t, 0.8, rows[0][1], 1e-6)

	// Zero rows stay zero instead of going infinite.
	assert.Equal(t, []float32{0, 0}, rows[1])

	assert.InDelta(t, 1.0, rows[2][0], 1e-6)

	// Input is untouched.
	assert.Equal(t, []float32{3, 4}, matrix[0])
}

func TestIsZeroVector(t *testing.T) {
	assert.True(t, isZeroVector([]float32{0, 0}))
	assert.True(t, isZeroVector(nil))
	assert.False(t, isZeroVector([]float32{0, 0.001}))
}
