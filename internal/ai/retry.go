package ai

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrNoAPIKey means no credential is configured. It blocks generation
// actions only; study and library flows never depend on it.
var ErrNoAPIKey = errors.New("no OpenAI API key set, please add one in settings")

// ExhaustedError is the terminal failure raised when every attempt of a
// remote call failed. Distinct from ErrNoAPIKey so callers can tell a
// configuration problem from a generation problem.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// retryableError marks a failure that may be re-attempted: truncated or
// filtered completions, missing structured payloads, parse failures and
// transport errors all qualify.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(format string, args ...any) error {
	return &retryableError{err: fmt.Errorf(format, args...)}
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// withRetry re-issues fn until it succeeds, returns a non-retryable error,
// or maxAttempts is reached. Re-issuance is immediate, no backoff. Both
// remote call sites (generation and validation) go through here.
func withRetry[T any](maxAttempts int, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(attempt)
		if err == nil {
			return v, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
		logrus.Debugf("attempt %d/%d failed: %v", attempt, maxAttempts, err)
	}
	return zero, &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}
