package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	resp, err := fastPolicy().Do(context.Background(), func(context.Context) (*GenerationResponse, error) {
		calls++
		return &GenerationResponse{Content: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if resp.Content != "ok" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
}

func TestRetryPolicy_RetriesTransient(t *testing.T) {
	calls := 0
	resp, err := fastPolicy().Do(context.Background(), func(context.Context) (*GenerationResponse, error) {
		calls++
		if calls < 2 {
			return nil, &GenerationError{Transient: true, Err: errors.New("rate limited")}
		}
		return &GenerationResponse{Content: "recovered"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected success on attempt 2, got %d calls", calls)
	}
	if resp.Content != "recovered" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
}

func TestRetryPolicy_TerminalNotRetried(t *testing.T) {
	calls := 0
	terminal := &GenerationError{Transient: false, Err: errors.New("invalid request")}
	_, err := fastPolicy().Do(context.Background(), func(context.Context) (*GenerationResponse, error) {
		calls++
		return nil, terminal
	})
	if calls != 1 {
		t.Errorf("terminal error should not be retried, got %d calls", calls)
	}
	if !errors.Is(err, terminal) {
		t.Errorf("expected terminal error surfaced, got %v", err)
	}
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := fastPolicy().Do(context.Background(), func(context.Context) (*GenerationResponse, error) {
		calls++
		return nil, &GenerationError{Transient: true, Err: errors.New("overloaded")}
	})
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}

func TestRetryPolicy_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
	}

	_, err := policy.Do(ctx, func(context.Context) (*GenerationResponse, error) {
		cancel()
		return nil, &GenerationError{Transient: true, Err: errors.New("busy")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		transient  bool
	}{
		{"throttled status", errors.New("slow down"), 429, true},
		{"server error status", errors.New("boom"), 503, true},
		{"bad request status", errors.New("bad input"), 400, false},
		{"throttle message", errors.New("ThrottlingException: Rate exceeded"), 0, true},
		{"network message", errors.New("read tcp: connection reset by peer"), 0, true},
		{"deadline message", errors.New("context deadline exceeded"), 0, true},
		{"auth message", errors.New("invalid api key"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genErr := ClassifyError(tt.err, tt.statusCode)
			if genErr.Transient != tt.transient {
				t.Errorf("expected transient=%v, got %v", tt.transient, genErr.Transient)
			}
			if !errors.Is(genErr, tt.err) {
				t.Errorf("expected original error preserved")
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(errors.New("plain")) {
		t.Error("plain error should not be transient")
	}
	if !IsTransient(&GenerationError{Transient: true, Err: errors.New("x")}) {
		t.Error("transient GenerationError should be transient")
	}
	wrapped := &GenerationError{Transient: true, Err: errors.New("x")}
	if !IsTransient(errHolder{wrapped}) {
		t.Error("wrapped transient error should be detected")
	}
}

type errHolder struct{ err error }

func (e errHolder) Error() string { return e.err.Error() }
func (e errHolder) Unwrap() error { return e.err }
