package translator

import "fmt"

// MalformedResponseError reports a provider response that could not be
// parsed as the expected structured data.
type MalformedResponseError struct {
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed translation response: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// MissingChunkError reports chunk ids that stayed untranslated after the
// whole retry-then-fallback ladder was exhausted.
type MissingChunkError struct {
	IDs []string
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("translation missing for %d chunk(s): %v", len(e.IDs), e.IDs)
}

// AuthError reports a rejected credential. It is never retried.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("translation provider rejected credentials: %v", e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// RateLimitError reports provider throttling. The batch translator retries
// once after a bounded backoff before surfacing it.
type RateLimitError struct {
	Cause error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("translation provider throttled the request: %v", e.Cause)
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

// TimeoutError reports a provider call that exceeded its wait budget.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("translation provider timed out: %v", e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }
