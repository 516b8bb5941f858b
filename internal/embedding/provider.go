// Package embedding produces fixed-dimension vectors for short product names
// via an external embeddings API.
package embedding

import (
	"context"
	"fmt"
	"time"
)

// Provider generates embeddings for product-name matching.
type Provider interface {
	// EmbedBatch generates embeddings for multiple texts in a single API call.
	// The result is positional: result[i] belongs to texts[i]. Entries the
	// backend did not return are nil; callers must treat them as missing.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion returns the model identifier, used for cache invalidation.
	ModelVersion() string

	// Dimension returns the embedding dimension.
	Dimension() int
}

// EmbeddingError reports a failure of the embedding backend.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	if e.Err == nil {
		return "embedding request failed"
	}
	return "embedding request failed: " + e.Err.Error()
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// RetryConfig controls retry behavior for embedding generation
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns sensible retry defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// EmbedWithRetry generates embeddings with exponential backoff on failure.
func EmbedWithRetry(ctx context.Context, provider Provider, texts []string, cfg RetryConfig) ([][]float32, error) {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		embeddings, err := provider.EmbedBatch(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("embedding generation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}
