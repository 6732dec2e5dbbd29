package interfaces

import (
	"context"

	"selenium_page/domain/entities"
)

// Page is what a site page object composes: a driver session with the
// locate helpers bound to it
type Page interface {
	// Open sizes the window and navigates to url
	Open(ctx context.Context, url string, resolution ...entities.Resolution) error

	// Close closes the browser window
	Close(ctx context.Context) error

	// Find locates one element, waiting as configured
	Find(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) (entities.Optional[Element], error)

	// FindAll locates every matching element, waiting as configured
	FindAll(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) (entities.Optional[[]Element], error)

	// WaitDisappear waits until the element is gone or hidden
	WaitDisappear(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) error

	// SwitchToFrame moves focus into a frame once it is available
	SwitchToFrame(ctx context.Context, frame Frame) error

	// SwitchToDefault moves focus back to the top-level document
	SwitchToDefault(ctx context.Context) error

	// DataTest builds the custom attribute locator for value
	DataTest(value string) entities.Locator

	// Driver returns the underlying session
	Driver() Driver
}
