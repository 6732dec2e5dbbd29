package entities

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-stack/stack"
)

// Error kinds. FindError and wrapped driver errors match them with errors.Is.
var (
	ErrUnsupportedBrowser = errors.New("unsupported browser")
	ErrUnsupportedBackend = errors.New("unsupported driver backend")
	ErrPageUnusable       = errors.New("page is not usable")
	ErrWaitTimeout        = errors.New("wait timed out")
	ErrNoSuchElement      = errors.New("no such element")
	ErrNotLocated         = errors.New("element not located")
	ErrNotVisible         = errors.New("element not visible")
	ErrNotEnabled         = errors.New("element not enabled")
	ErrStillVisible       = errors.New("element still visible")
	ErrFrameUnavailable   = errors.New("frame not available")
)

// FindError is a locate failure enriched with what was looked for and the
// diagnostics gathered when it failed.
type FindError struct {
	Kind    error
	Err     error
	Locator Locator
	Message string

	// Screenshot is the saved screenshot path, empty when none was taken.
	Screenshot    string
	ScreenshotErr error

	// Stack is the caller's stack with the locate helpers trimmed off.
	Stack stack.CallStack
}

func (e *FindError) Error() string {
	var b strings.Builder
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	b.WriteString("\nBy: ")
	b.WriteString(e.Locator.String())
	if e.Message != "" {
		b.WriteString("\nMessage: ")
		b.WriteString(e.Message)
	}
	if e.Screenshot != "" {
		b.WriteString("\nScreenshot: ")
		b.WriteString(e.Screenshot)
	} else if e.ScreenshotErr != nil {
		b.WriteString("\nScreenshot failed: ")
		b.WriteString(e.ScreenshotErr.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FindError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Format prints the caller stack after the message for %+v.
func (e *FindError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, e.Error())
			for _, c := range e.Stack {
				f := c.Frame()
				fmt.Fprintf(s, "\n    at %s (%s:%d)", f.Function, f.File, f.Line)
			}
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
