package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout           = errors.New("scoring timeout")
	ErrEngine            = errors.New("scoring engine error")
	ErrMalformedResponse = errors.New("malformed scoring response")
)

// TimeoutError reports an attempt that exceeded the configured timeout.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return ErrTimeout.Error()
	}
	return fmt.Sprintf("%s: %v", ErrTimeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// EngineError reports a non-2xx response. StatusCode is 0 when the engine
// could not be reached at all; Err then carries the transport failure.
type EngineError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *EngineError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: unreachable: %v", ErrEngine, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", ErrEngine, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrEngine, e.StatusCode, e.Body)
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// Retryable reports whether another attempt may succeed.
func (e *EngineError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// MalformedResponseError reports a 2xx body that does not satisfy the response contract.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
