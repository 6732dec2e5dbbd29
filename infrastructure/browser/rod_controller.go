package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// rodKeys maps DOM key names onto rod's key table.
var rodKeys = map[string]input.Key{
	"Enter":     input.Enter,
	"Tab":       input.Tab,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
}

type RodController struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	root     *rod.Page
	logger   *logrus.Logger

	mu    sync.Mutex
	frame *rod.Page
	quit  bool
}

var _ interfaces.Driver = (*RodController)(nil)

// rodBinary - finds the browser binary for chrome or Edge
func rodBinary(browser, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if browser == entities.BrowserEdge {
		for _, name := range []string{"microsoft-edge", "microsoft-edge-stable", "msedge"} {
			if path, err := exec.LookPath(name); err == nil {
				return path, nil
			}
		}
		return "", errors.New("Microsoft Edge not found. Please install it or set driverPath")
	}
	if path, found := launcher.LookPath(); found {
		return path, nil
	}
	return "", nil
}

// NewRodController - launches (or connects to) a chromium browser over CDP
func NewRodController(ctx context.Context, cfg entities.PageConfig, logger *logrus.Logger) (*RodController, error) {
	browser := cfg.Browser.String
	if browser != entities.BrowserChrome && browser != entities.BrowserEdge {
		return nil, fmt.Errorf("%w: %q has no DevTools protocol endpoint", entities.ErrUnsupportedBrowser, browser)
	}

	r := &RodController{logger: logger}
	controlURL := cfg.RemoteURL.String
	if controlURL == "" {
		bin, err := rodBinary(browser, cfg.DriverPath.String)
		if err != nil {
			return nil, err
		}
		headless, args := splitHeadless(cfg.BrowserArgs)
		// ctx bounds only the launch; the browser process outlives it.
		l := launcher.New().Context(ctx).Headless(headless)
		if bin != "" {
			logger.Infof("Using browser binary at: %s", bin)
			l = l.Bin(bin)
		}
		for _, arg := range args {
			name, value, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
			if value == "" {
				l = l.Set(flags.Flag(name))
			} else {
				l = l.Set(flags.Flag(name), value)
			}
		}
		controlURL, err = l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		r.launcher = l
	}

	r.browser = rod.New().Context(ctx).ControlURL(controlURL)
	if err := r.browser.Connect(); err != nil {
		r.cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	// The connection must outlive the construction context.
	r.browser = r.browser.Context(context.Background())

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create page: %w", err), r.Quit())
	}
	r.root = page
	r.frame = page
	return r, nil
}

func (r *RodController) current(ctx context.Context) *rod.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame.Context(ctx)
}

// Get - navigates and waits for the load event
func (r *RodController) Get(ctx context.Context, url string) error {
	page := r.root.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	r.mu.Lock()
	r.frame = r.root
	r.mu.Unlock()
	return nil
}

// Title - returns the document title
func (r *RodController) Title(ctx context.Context) (string, error) {
	info, err := r.root.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (r *RodController) query(ctx context.Context, by entities.Locator) (rod.Elements, error) {
	page := r.current(ctx)
	kind, selector := by.Selector()
	if kind == entities.SelectorXPath {
		return page.ElementsX(selector)
	}
	return page.Elements(selector)
}

// FindElement - queries the focused frame once
func (r *RodController) FindElement(ctx context.Context, by entities.Locator) (interfaces.Element, error) {
	els, err := r.query(ctx, by)
	if err != nil {
		return nil, rodErr(err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoSuchElement, by)
	}
	return &rodElement{el: els[0]}, nil
}

// FindElements - queries the focused frame once for every match
func (r *RodController) FindElements(ctx context.Context, by entities.Locator) ([]interfaces.Element, error) {
	els, err := r.query(ctx, by)
	if err != nil {
		return nil, rodErr(err)
	}
	out := make([]interfaces.Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

// Wait - polls cond
func (r *RodController) Wait(ctx context.Context, cond interfaces.Condition, timeout time.Duration) error {
	return Poll(ctx, cond, timeout, DefaultPollInterval)
}

// SwitchToFrame - focuses the document of an iframe
func (r *RodController) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	var el *rod.Element
	if i, ok := frame.Index(); ok {
		iframes, err := r.current(ctx).Elements("iframe, frame")
		if err != nil {
			return rodErr(err)
		}
		if i >= 0 && i < len(iframes) {
			el = iframes[i]
		}
	}
	if e, ok := frame.Element(); ok {
		re, isRod := e.(*rodElement)
		if !isRod {
			return fmt.Errorf("frame element %T does not belong to a rod session", e)
		}
		el = re.el
	}
	if by, ok := frame.Locator(); ok {
		found, err := r.FindElement(ctx, by)
		if err != nil {
			return fmt.Errorf("%w: %w", entities.ErrFrameUnavailable, err)
		}
		el = found.(*rodElement).el
	}
	if el == nil {
		return fmt.Errorf("%w: %s", entities.ErrFrameUnavailable, frame)
	}

	doc, err := el.Frame()
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrFrameUnavailable, rodErr(err))
	}
	r.mu.Lock()
	r.frame = doc.Context(context.Background())
	r.mu.Unlock()
	return nil
}

// SwitchToDefault - focuses the top-level document
func (r *RodController) SwitchToDefault(ctx context.Context) error {
	r.mu.Lock()
	r.frame = r.root
	r.mu.Unlock()
	return nil
}

// Screenshot - captures the full page as PNG
func (r *RodController) Screenshot(ctx context.Context) ([]byte, error) {
	return r.root.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// MaximizeWindow - maximizes the browser window
func (r *RodController) MaximizeWindow(ctx context.Context) error {
	return r.root.Context(ctx).SetWindow(&proto.BrowserBounds{
		WindowState: proto.BrowserWindowStateMaximized,
	})
}

// ResizeWindow - restores and resizes the browser window
func (r *RodController) ResizeWindow(ctx context.Context, width, height int) error {
	page := r.root.Context(ctx)
	if err := page.SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateNormal}); err != nil {
		return err
	}
	return page.SetWindow(&proto.BrowserBounds{
		Width:       &width,
		Height:      &height,
		WindowState: proto.BrowserWindowStateNormal,
	})
}

// Active - reports whether the browser connection is still up
func (r *RodController) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.quit {
		return false
	}
	_, err := r.root.Info()
	return err == nil
}

// CloseWindow - closes the page
func (r *RodController) CloseWindow(ctx context.Context) error {
	return r.root.Context(ctx).Close()
}

// Quit - closes the browser and cleans up the launched process
func (r *RodController) Quit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.quit {
		return nil
	}
	r.quit = true
	var err error
	if r.browser != nil {
		err = multierr.Append(err, r.browser.Close())
	}
	r.cleanup()
	return err
}

func (r *RodController) cleanup() {
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
	}
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) IsDisplayed() (bool, error) {
	ok, err := e.el.Visible()
	return ok, rodErr(err)
}

func (e *rodElement) IsEnabled() (bool, error) {
	disabled, err := e.el.Disabled()
	return !disabled, rodErr(err)
}

func (e *rodElement) Click() error {
	return rodErr(e.el.Click(proto.InputMouseButtonLeft, 1))
}

func (e *rodElement) SendKeys(text string) error {
	for _, stroke := range splitKeys(text) {
		var err error
		if stroke.key != "" {
			err = e.el.Type(rodKeys[stroke.key])
		} else {
			err = e.el.Input(stroke.text)
		}
		if err != nil {
			return rodErr(err)
		}
	}
	return nil
}

func (e *rodElement) Text() (string, error) {
	text, err := e.el.Text()
	return text, rodErr(err)
}

// GetAttribute - returns the attribute, or the DOM property of that name
func (e *rodElement) GetAttribute(name string) (string, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", rodErr(err)
	}
	if value != nil {
		return *value, nil
	}
	prop, err := e.el.Property(name)
	if err != nil {
		return "", rodErr(err)
	}
	if prop.Nil() {
		return "", nil
	}
	return prop.Str(), nil
}

// rodErr - maps lost-node errors onto ErrNoSuchElement
func rodErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "Cannot find context with specified id") ||
		strings.Contains(msg, "Could not find node with given id") ||
		strings.Contains(msg, "Node is detached") {
		return fmt.Errorf("%w: %w", entities.ErrNoSuchElement, err)
	}
	return err
}
