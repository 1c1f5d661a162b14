package embeddings

import (
	"context"
	"sync"
	"time"
)

// RateLimitedEmbedder wraps an Embedder with a token bucket rate limiter, so
// large ingestion jobs stay under the provider's requests-per-minute quota.
type RateLimitedEmbedder struct {
	embedder Embedder
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedEmbedder wraps the given embedder with a rate limiter that
// allows at most rpm embed requests per minute. rpm < 1 returns the embedder
// unchanged.
func NewRateLimitedEmbedder(embedder Embedder, rpm int) Embedder {
	if rpm < 1 {
		return embedder
	}
	return &RateLimitedEmbedder{
		embedder: embedder,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedEmbedder) Name() string { return r.embedder.Name() }

func (r *RateLimitedEmbedder) Dimensions() int { return r.embedder.Dimensions() }

func (r *RateLimitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.embedder.Embed(ctx, texts)
}

func (r *RateLimitedEmbedder) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
