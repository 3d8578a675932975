package llm

import (
	"errors"
	"fmt"
)

// ErrMissingCredential reports that no API credential was available when
// the client was constructed. Construction fails fast; credentials are
// never re-resolved per call.
var ErrMissingCredential = errors.New("missing API credential")

// GenerationError wraps a failed model call. Transient errors (rate
// limits, timeouts, 5xx) are eligible for retry; terminal errors (bad
// request, auth failure, content policy) are surfaced immediately.
type GenerationError struct {
	Transient bool
	Err       error
}

func (e *GenerationError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("generation failed (%s): %v", kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable generation failure.
func IsTransient(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Transient
	}
	return false
}
