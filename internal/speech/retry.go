package speech

import (
	"fmt"
	"time"
)

// RetryPolicy bounds how long a session waits for the engine to begin
// speaking. Each attempt waits Delay for the start event before cancelling
// and speaking again.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Delay: 500 * time.Millisecond}
}

func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.Delay <= 0 {
		return fmt.Errorf("retry delay must be > 0, got %s", p.Delay)
	}
	return nil
}
