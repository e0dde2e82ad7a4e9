package llm

import (
	"context"
	"time"
)

const maxRetryDelay = 30 * time.Second

type retrying struct {
	next     ChatModel
	attempts int
	base     time.Duration
}

// WithRetry retries failed completions with exponential backoff, doubling
// the delay after each attempt up to 30s. Context errors are not retried.
func WithRetry(m ChatModel, attempts int, base time.Duration) ChatModel {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = time.Second
	}
	return &retrying{next: m, attempts: attempts, base: base}
}

func (r *retrying) Complete(ctx context.Context, system, user string) (string, error) {
	var (
		out string
		err error
	)
	delay := r.base
	for attempt := 1; ; attempt++ {
		out, err = r.next.Complete(ctx, system, user)
		if err == nil || attempt >= r.attempts || ctx.Err() != nil {
			return out, err
		}
		select {
		case <-ctx.Done():
			return "", err
		case <-time.After(delay):
		}
		if delay < maxRetryDelay {
			delay = min(delay*2, maxRetryDelay)
		}
	}
}
