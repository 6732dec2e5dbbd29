package interfaces

import (
	"context"
	"strconv"
	"time"

	"selenium_page/domain/entities"
)

// Condition is polled by Driver.Wait until it reports true or fails
type Condition func(ctx context.Context) (bool, error)

// Element is a handle to an element, valid only within its session
type Element interface {
	// IsDisplayed reports whether the element is visible
	IsDisplayed() (bool, error)

	// IsEnabled reports whether the element is enabled
	IsEnabled() (bool, error)

	// Click clicks the element
	Click() error

	// SendKeys types text into the element
	SendKeys(text string) error

	// Text returns the visible text
	Text() (string, error)

	// GetAttribute returns an attribute or property value
	GetAttribute(name string) (string, error)
}

// Driver is a live browser session. Calls against one Driver must be serial.
type Driver interface {
	// Get navigates to a URL
	Get(ctx context.Context, url string) error

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// FindElement returns the first match, or an error wrapping
	// entities.ErrNoSuchElement. It does not wait.
	FindElement(ctx context.Context, by entities.Locator) (Element, error)

	// FindElements returns every match; none is not an error. It does not wait.
	FindElements(ctx context.Context, by entities.Locator) ([]Element, error)

	// Wait polls cond until it holds. A timeout returns an error wrapping
	// entities.ErrWaitTimeout; an error from cond is returned as is.
	Wait(ctx context.Context, cond Condition, timeout time.Duration) error

	// SwitchToFrame moves focus into a frame
	SwitchToFrame(ctx context.Context, frame Frame) error

	// SwitchToDefault moves focus back to the top-level document
	SwitchToDefault(ctx context.Context) error

	// Screenshot captures the page as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// MaximizeWindow maximizes the current window
	MaximizeWindow(ctx context.Context) error

	// ResizeWindow sets the current window size
	ResizeWindow(ctx context.Context, width, height int) error

	// Active reports whether the session can still take commands
	Active() bool

	// CloseWindow closes the current window
	CloseWindow(ctx context.Context) error

	// Quit ends the session and releases the browser
	Quit() error
}

type frameKind int

const (
	frameIndex frameKind = iota
	frameElement
	frameLocator
)

// Frame references an embedded document by index, element or locator.
type Frame struct {
	kind    frameKind
	index   int
	element Element
	locator entities.Locator
}

// FrameIndex - references the n-th frame of the current document
func FrameIndex(n int) Frame { return Frame{kind: frameIndex, index: n} }

// FrameElement - references the frame an iframe element hosts
func FrameElement(el Element) Frame { return Frame{kind: frameElement, element: el} }

// FrameBy - references the frame hosted by the first element matching by
func FrameBy(by entities.Locator) Frame { return Frame{kind: frameLocator, locator: by} }

// Index returns the frame index, if the frame is referenced by one.
func (f Frame) Index() (int, bool) { return f.index, f.kind == frameIndex }

// Element returns the frame element, if the frame is referenced by one.
func (f Frame) Element() (Element, bool) { return f.element, f.kind == frameElement }

// Locator returns the frame locator, if the frame is referenced by one.
func (f Frame) Locator() (entities.Locator, bool) { return f.locator, f.kind == frameLocator }

func (f Frame) String() string {
	switch f.kind {
	case frameElement:
		return "frame(element)"
	case frameLocator:
		return "frame(" + f.locator.String() + ")"
	default:
		return "frame(" + strconv.Itoa(f.index) + ")"
	}
}
