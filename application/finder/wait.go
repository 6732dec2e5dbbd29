package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// waitFailure tags a timed out wait with the kind of locate failure it is.
type waitFailure struct {
	kind error
	what string
	err  error
}

func (w *waitFailure) Error() string {
	return w.what + ": " + w.err.Error()
}

func (w *waitFailure) Unwrap() []error {
	return []error{w.kind, w.err}
}

// timedOut tags err as kind when it is a wait timeout; other errors pass through.
func timedOut(err error, kind error, what string) error {
	if err == nil || !errors.Is(err, entities.ErrWaitTimeout) {
		return err
	}
	return &waitFailure{kind: kind, what: what, err: err}
}

func (f *Finder) waitLocated(ctx context.Context, by entities.Locator, cfg entities.FindConfig) error {
	err := f.driver.Wait(ctx, func(ctx context.Context) (bool, error) {
		els, err := f.driver.FindElements(ctx, by)
		if err != nil {
			return false, err
		}
		return len(els) > 0, nil
	}, cfg.Timeout())
	return timedOut(err, entities.ErrNotLocated, "waiting for element to be located")
}

func (f *Finder) waitVisible(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	err := f.driver.Wait(ctx, func(context.Context) (bool, error) {
		return el.IsDisplayed()
	}, timeout)
	return timedOut(err, entities.ErrNotVisible, "waiting until element is visible")
}

func (f *Finder) waitEnabled(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	err := f.driver.Wait(ctx, func(context.Context) (bool, error) {
		return el.IsEnabled()
	}, timeout)
	return timedOut(err, entities.ErrNotEnabled, "waiting until element is enabled")
}

// WaitDisappear - waits until the element matching by is no longer visible.
// An element that does not exist counts as already gone. No screenshot is
// taken and MustFind is ignored.
func (f *Finder) WaitDisappear(ctx context.Context, by entities.Locator, cfgs ...entities.FindConfig) error {
	cfg := f.Config(cfgs...)

	el, err := f.driver.FindElement(ctx, by)
	if errors.Is(err, entities.ErrNoSuchElement) {
		return nil
	}
	if err != nil {
		return err
	}

	err = f.driver.Wait(ctx, func(context.Context) (bool, error) {
		shown, err := el.IsDisplayed()
		if errors.Is(err, entities.ErrNoSuchElement) {
			return true, nil
		}
		return !shown, err
	}, cfg.Timeout())
	if err == nil || !errors.Is(err, entities.ErrWaitTimeout) {
		return err
	}

	err = fmt.Errorf("%w: waiting until element is not visible: %w\nBy: %s", entities.ErrStillVisible, err, by)
	if cfg.Message.String != "" {
		err = fmt.Errorf("%w\nMessage: %s", err, cfg.Message.String)
	}
	return err
}

// SwitchToFrame - waits until the driver can switch into frame, then
// switches. Only an unavailable frame is retried; other errors are returned
// as the driver reported them.
func (f *Finder) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	var last error
	// Bounded by the page-wide timeout; only running out of it becomes
	// ErrFrameUnavailable, any other error passes through as is.
	err := f.driver.Wait(ctx, func(ctx context.Context) (bool, error) {
		err := f.driver.SwitchToFrame(ctx, frame)
		if errors.Is(err, entities.ErrFrameUnavailable) || errors.Is(err, entities.ErrNoSuchElement) {
			last = err
			return false, nil
		}
		return err == nil, err
	}, f.defaults.Timeout())
	if err != nil && errors.Is(err, entities.ErrWaitTimeout) {
		return fmt.Errorf("%w: waiting to switch to %s: %w (last: %v)", entities.ErrFrameUnavailable, frame, err, last)
	}
	return err
}

// SwitchToDefault - returns focus to the top-level document
func (f *Finder) SwitchToDefault(ctx context.Context) error {
	return f.driver.SwitchToDefault(ctx)
}
