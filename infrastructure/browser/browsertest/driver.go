// Package browsertest provides a scripted in-memory Driver for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
	"selenium_page/infrastructure/browser"
)

// PNG is the screenshot a Driver returns unless told otherwise.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// Element is a scripted element. Delays count from the moment it is added
// to a Driver; zero means immediately.
type Element struct {
	Name         string
	Value        string
	Attrs        map[string]string
	AppearAfter  time.Duration
	VisibleAfter time.Duration
	EnabledAfter time.Duration
	// HideAfter makes a visible element hidden again; zero means never.
	HideAfter time.Duration
	Hidden    bool
	Disabled  bool
	// Frame is the name of the frame this element hosts, if it is an iframe.
	Frame string
	// InFrame is the frame the element lives in; empty is the top document.
	InFrame string

	d      *Driver
	added  time.Time
	clicks int
	keys   []string
}

func (e *Element) since() time.Duration {
	return time.Since(e.added)
}

func (e *Element) present() bool {
	return e.since() >= e.AppearAfter
}

// IsDisplayed implements interfaces.Element.
func (e *Element) IsDisplayed() (bool, error) {
	if err := e.d.command("displayed " + e.Name); err != nil {
		return false, err
	}
	if !e.present() {
		return false, fmt.Errorf("%w: %s", entities.ErrNoSuchElement, e.Name)
	}
	if e.Hidden {
		return false, nil
	}
	since := e.since()
	if e.HideAfter > 0 && since >= e.HideAfter {
		return false, nil
	}
	return since >= e.VisibleAfter, nil
}

// IsEnabled implements interfaces.Element.
func (e *Element) IsEnabled() (bool, error) {
	if err := e.d.command("enabled " + e.Name); err != nil {
		return false, err
	}
	return !e.Disabled && e.since() >= e.EnabledAfter, nil
}

// Click implements interfaces.Element.
func (e *Element) Click() error {
	if err := e.d.command("click " + e.Name); err != nil {
		return err
	}
	e.d.mu.Lock()
	e.clicks++
	e.d.mu.Unlock()
	return nil
}

// SendKeys implements interfaces.Element.
func (e *Element) SendKeys(text string) error {
	if err := e.d.command("keys " + e.Name); err != nil {
		return err
	}
	e.d.mu.Lock()
	e.keys = append(e.keys, text)
	e.d.mu.Unlock()
	return nil
}

// Text implements interfaces.Element.
func (e *Element) Text() (string, error) {
	return e.Value, e.d.command("text " + e.Name)
}

// GetAttribute implements interfaces.Element.
func (e *Element) GetAttribute(name string) (string, error) {
	if err := e.d.command("attribute " + e.Name); err != nil {
		return "", err
	}
	if name == "innerText" {
		return e.Value, nil
	}
	return e.Attrs[name], nil
}

// Clicks returns how many times the element was clicked.
func (e *Element) Clicks() int {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.clicks
}

// Keys returns everything typed into the element.
func (e *Element) Keys() []string {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return append([]string(nil), e.keys...)
}

// Driver is an in-memory interfaces.Driver.
type Driver struct {
	PollInterval time.Duration

	// ScreenshotErr fails Screenshot when set.
	ScreenshotErr error
	// CommandErr fails every command when set.
	CommandErr error

	mu       sync.Mutex
	elements map[entities.Locator][]*Element
	frames   []string
	frame    string
	url      string
	title    string
	window   entities.Resolution
	calls    []string
	closed   bool
	quit     bool
	shots    int
}

var _ interfaces.Driver = (*Driver)(nil)

// New - creates an empty driver
func New() *Driver {
	return &Driver{
		PollInterval: 10 * time.Millisecond,
		elements:     make(map[entities.Locator][]*Element),
	}
}

// Add registers elements under by; their delays start now.
func (d *Driver) Add(by entities.Locator, els ...*Element) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	for _, el := range els {
		el.d = d
		el.added = now
		if el.Frame != "" {
			d.frames = append(d.frames, el.Frame)
		}
	}
	d.elements[by] = append(d.elements[by], els...)
	return d
}

// SetTitle sets what Title returns.
func (d *Driver) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

func (d *Driver) command(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, name)
	if d.quit {
		return errors.New("browsertest: session ended")
	}
	return d.CommandErr
}

func (d *Driver) match(by entities.Locator) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	for _, el := range d.elements[by] {
		if el.InFrame == d.frame && el.present() {
			out = append(out, el)
		}
	}
	return out
}

// Get implements interfaces.Driver.
func (d *Driver) Get(_ context.Context, url string) error {
	if err := d.command("get " + url); err != nil {
		return err
	}
	d.mu.Lock()
	d.url = url
	d.frame = ""
	d.closed = false
	d.mu.Unlock()
	return nil
}

// Title implements interfaces.Driver.
func (d *Driver) Title(context.Context) (string, error) {
	if err := d.command("title"); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

// FindElement implements interfaces.Driver.
func (d *Driver) FindElement(_ context.Context, by entities.Locator) (interfaces.Element, error) {
	if err := d.command("find " + by.String()); err != nil {
		return nil, err
	}
	els := d.match(by)
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoSuchElement, by)
	}
	return els[0], nil
}

// FindElements implements interfaces.Driver.
func (d *Driver) FindElements(_ context.Context, by entities.Locator) ([]interfaces.Element, error) {
	if err := d.command("find all " + by.String()); err != nil {
		return nil, err
	}
	els := d.match(by)
	out := make([]interfaces.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

// Wait implements interfaces.Driver.
func (d *Driver) Wait(ctx context.Context, cond interfaces.Condition, timeout time.Duration) error {
	return browser.Poll(ctx, cond, timeout, d.PollInterval)
}

// SwitchToFrame implements interfaces.Driver.
func (d *Driver) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	if err := d.command("frame " + frame.String()); err != nil {
		return err
	}
	var name string
	if i, ok := frame.Index(); ok {
		d.mu.Lock()
		if i >= 0 && i < len(d.frames) {
			name = d.frames[i]
		}
		d.mu.Unlock()
	}
	if el, ok := frame.Element(); ok {
		if fe, ok := el.(*Element); ok && fe.present() {
			name = fe.Frame
		}
	}
	if by, ok := frame.Locator(); ok {
		if els := d.match(by); len(els) > 0 {
			name = els[0].Frame
		}
	}
	if name == "" {
		return fmt.Errorf("%w: %s", entities.ErrFrameUnavailable, frame)
	}
	d.mu.Lock()
	d.frame = name
	d.mu.Unlock()
	return nil
}

// SwitchToDefault implements interfaces.Driver.
func (d *Driver) SwitchToDefault(context.Context) error {
	if err := d.command("frame default"); err != nil {
		return err
	}
	d.mu.Lock()
	d.frame = ""
	d.mu.Unlock()
	return nil
}

// Screenshot implements interfaces.Driver.
func (d *Driver) Screenshot(context.Context) ([]byte, error) {
	if err := d.command("screenshot"); err != nil {
		return nil, err
	}
	if d.ScreenshotErr != nil {
		return nil, d.ScreenshotErr
	}
	d.mu.Lock()
	d.shots++
	d.mu.Unlock()
	return PNG, nil
}

// MaximizeWindow implements interfaces.Driver.
func (d *Driver) MaximizeWindow(context.Context) error {
	if err := d.command("maximize"); err != nil {
		return err
	}
	d.mu.Lock()
	d.window = entities.ResolutionMaximize
	d.mu.Unlock()
	return nil
}

// ResizeWindow implements interfaces.Driver.
func (d *Driver) ResizeWindow(_ context.Context, width, height int) error {
	if err := d.command(fmt.Sprintf("resize %dx%d", width, height)); err != nil {
		return err
	}
	d.mu.Lock()
	d.window = entities.Resolution{Width: width, Height: height}
	d.mu.Unlock()
	return nil
}

// Active implements interfaces.Driver.
func (d *Driver) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.quit
}

// CloseWindow implements interfaces.Driver.
func (d *Driver) CloseWindow(context.Context) error {
	if err := d.command("close"); err != nil {
		return err
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// Quit implements interfaces.Driver.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "quit")
	d.quit = true
	return nil
}

// URL returns the last navigated URL.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// Window returns the last window size set.
func (d *Driver) Window() entities.Resolution {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// Frame returns the name of the focused frame; empty is the top document.
func (d *Driver) Frame() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Closed reports whether CloseWindow was called since the last Get.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Screenshots returns how many screenshots were taken.
func (d *Driver) Screenshots() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shots
}

// Calls returns every command issued, in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}
