package search

import "math"

// rowEpsilon keeps row normalization finite for zero rows. Matches the
// epsilon used when the matrix was produced, so scores stay comparable.
const rowEpsilon = 1e-8

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// normalizeRows returns a copy of the matrix with every row scaled by
// 1/(norm+rowEpsilon). Zero rows stay (effectively) zero instead of
// producing infinities.
func normalizeRows(matrix [][]float32) [][]float32 {
	normalized := make([][]float32, len(matrix))
	for i, row := range matrix {
		var magnitude float64
		for _, val := range row {
			magnitude += float64(val) * float64(val)
		}
		scale := float32(1.0 / (math.Sqrt(magnitude) + rowEpsilon))

		out := make([]float32, len(row))
		for j, val := range row {
			out[j] = val * scale
		}
		normalized[i] = out
	}
	return normalized
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// isZeroVector reports whether every component of v is zero.
func isZeroVector(v []float32) bool {
	for _, val := range v {
		if val != 0 {
			return false
		}
	}
	return true
}
