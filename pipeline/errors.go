package pipeline

import "errors"

var (
	// ErrStoreRequired is returned when NewPipeline is called without a store.
	ErrStoreRequired = errors.New("index store is required")

	// ErrProviderRequired is returned when NewPipeline is called without an
	// embedding provider.
	ErrProviderRequired = errors.New("embedding provider is required")

	// ErrServiceUnreachable is returned when the embedding service fails the
	// connectivity probe before a run starts.
	ErrServiceUnreachable = errors.New("embedding service is unreachable")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
