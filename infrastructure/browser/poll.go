package browser

import (
	"context"
	"fmt"
	"time"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// DefaultPollInterval matches the WebDriver client's explicit wait interval.
const DefaultPollInterval = 100 * time.Millisecond

// Poll - evaluates cond every interval until it holds, fails, ctx ends or
// timeout elapses. cond is always evaluated at least once.
func Poll(ctx context.Context, cond interfaces.Condition, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	start := time.Now()
	deadline := start.Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w after %v", entities.ErrWaitTimeout, time.Since(start).Round(time.Millisecond))
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
