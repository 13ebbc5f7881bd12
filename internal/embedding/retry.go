package embedding

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperjump/scholar/internal/errs"
	"go.uber.org/zap"
)

// RetryEmbedder retries transient document-embedding failures with
// exponential backoff. Query embedding is not retried: the caller bounds it
// with a timeout and a user is waiting.
type RetryEmbedder struct {
	Embedder
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// RetryOption configures a RetryEmbedder.
type RetryOption func(*RetryEmbedder)

// WithRetryLogger logs each retried attempt.
func WithRetryLogger(l *zap.Logger) RetryOption {
	return func(r *RetryEmbedder) { r.logger = l }
}

// WithBackOff replaces the exponential schedule, mainly for tests.
func WithBackOff(newBackOff func() backoff.BackOff) RetryOption {
	return func(r *RetryEmbedder) { r.newBackOff = newBackOff }
}

// NewRetryEmbedder wraps inner so EmbedBatch is attempted up to maxRetries+1 times.
func NewRetryEmbedder(inner Embedder, maxRetries int, opts ...RetryOption) *RetryEmbedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	r := &RetryEmbedder{
		Embedder:   inner,
		maxRetries: uint64(maxRetries),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EmbedBatch embeds texts, retrying only errors marked retryable.
func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	attempt := 0
	op := func() error {
		attempt++
		vecs, err := r.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if !errs.IsRetryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			if r.logger != nil {
				r.logger.Warn("embedding batch failed, retrying",
					zap.Int("attempt", attempt), zap.Int("texts", len(texts)), zap.Error(err))
			}
			return err
		}
		out = vecs
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, errs.NewEmbeddingError("embed documents", err, false)
	}
	return out, nil
}
