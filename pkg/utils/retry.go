package utils

import (
	"context"
	"errors"
	"time"
)

const retryDelay = 300 * time.Millisecond

// TryNTimes calls f until it succeeds or n attempts are made. Context errors
// are returned immediately.
func TryNTimes(f func() error, n int) (err error) {
	if n < 1 {
		n = 1
	}

	for i := 0; i < n; i++ {
		if err = f(); err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if i < n-1 {
			time.Sleep(retryDelay)
		}
	}

	return err
}
