package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryPolicy bounds retries of transient generation failures with
// exponential backoff. The per-call timeout lives in the client, not here.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     12 * time.Second,
	}
}

// Do runs call until it succeeds, fails terminally, or the attempt ceiling
// is reached. Only transient errors are retried.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) (*GenerationResponse, error)) (*GenerationResponse, error) {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		response, err := call(ctx)
		if err == nil {
			return response, nil
		}

		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}

		delay := backoff(attempt, p.InitialDelay, p.MaxDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", p.MaxAttempts, lastErr)
}

func backoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	delay := float64(initialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	jitter := delay * 0.2 * (2*rand.Float64() - 1) // -20% to +20%
	delay += jitter

	return time.Duration(delay)
}

// classifyMessage flags provider error text that signals a transient
// condition: throttling, server-side failures, or network trouble.
// Deadline expiry counts as transient so the retry policy covers timeouts.
func classifyMessage(msg string) bool {
	if strings.Contains(msg, "ThrottlingException") ||
		strings.Contains(msg, "TooManyRequestsException") ||
		strings.Contains(msg, "Rate exceeded") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429") {
		return true
	}

	if strings.Contains(msg, "InternalServerException") ||
		strings.Contains(msg, "ServiceUnavailableException") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") {
		return true
	}

	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") {
		return true
	}

	return false
}

// ClassifyError wraps a provider error as a GenerationError, deciding
// transience from an optional HTTP status and the error text.
func ClassifyError(err error, statusCode int) *GenerationError {
	transient := statusCode == 429 || statusCode >= 500
	if statusCode == 0 {
		transient = classifyMessage(err.Error())
	}
	return &GenerationError{Transient: transient, Err: err}
}
