package retry

import (
	"fmt"
	"time"
)

// ThrottledError is returned before the operation is even attempted when its
// key is still inside the backoff window from earlier failures. Callers
// should treat it as "try again later", not as evidence the platform is
// failing right now.
type ThrottledError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("operation %q throttled, retry after %s", e.Key, e.RetryAfter.Round(time.Millisecond))
}

// ExhaustedError wraps the last observed error after the retry budget was
// spent. errors.Is/As see through to the underlying cause.
type ExhaustedError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation %q failed after %d attempts: %v", e.Key, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }
