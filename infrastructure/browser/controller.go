package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

type browserController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger

	mu    sync.Mutex
	frame playwright.Frame
	quit  bool
}

var _ interfaces.Driver = (*browserController)(nil)

// playwrightBrowsers - browser type and channel serving each browser
func playwrightBrowser(pw *playwright.Playwright, browser string) (playwright.BrowserType, string, error) {
	switch browser {
	case entities.BrowserChrome:
		return pw.Chromium, "", nil
	case entities.BrowserEdge:
		return pw.Chromium, "msedge", nil
	case entities.BrowserFirefox:
		return pw.Firefox, "", nil
	case entities.BrowserSafari:
		return pw.WebKit, "", nil
	}
	return nil, "", fmt.Errorf("%w: %q has no playwright engine", entities.ErrUnsupportedBrowser, browser)
}

// NewBrowserController - launches a browser through playwright
func NewBrowserController(cfg entities.PageConfig, logger *logrus.Logger) (interfaces.Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType, channel, err := playwrightBrowser(pw, cfg.Browser.String)
	if err != nil {
		pw.Stop()
		return nil, err
	}

	headless, args := splitHeadless(cfg.BrowserArgs)
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     args,
	}
	if channel != "" {
		opts.Channel = playwright.String(channel)
	}
	if path := cfg.DriverPath.String; path != "" {
		opts.ExecutablePath = playwright.String(path)
	}
	if len(cfg.Capabilities) > 0 {
		logger.Debugf("Capabilities are WebDriver-only and are ignored by playwright: %v", cfg.Capabilities)
	}

	var browser playwright.Browser
	if url := cfg.RemoteURL.String; url != "" {
		browser, err = browserType.Connect(url)
	} else {
		browser, err = browserType.Launch(opts)
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create context: %w", err), multierr.Append(browser.Close(), pw.Stop()))
	}

	page, err := context.NewPage()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create page: %w", err), multierr.Append(browser.Close(), pw.Stop()))
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	return &browserController{
		pw:      pw,
		browser: browser,
		context: context,
		page:    page,
		logger:  logger,
		frame:   page.MainFrame(),
	}, nil
}

func (b *browserController) current() playwright.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame
}

// Get - navigates to the specified URL
func (b *browserController) Get(ctx context.Context, url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(30000),
	})
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.frame = b.page.MainFrame()
	b.mu.Unlock()
	return nil
}

// Title - returns the document title
func (b *browserController) Title(ctx context.Context) (string, error) {
	return b.page.Title()
}

func playwrightSelector(by entities.Locator) string {
	kind, selector := by.Selector()
	if kind == entities.SelectorXPath {
		return "xpath=" + selector
	}
	return "css=" + selector
}

// FindElement - queries the focused frame once
func (b *browserController) FindElement(ctx context.Context, by entities.Locator) (interfaces.Element, error) {
	handle, err := b.current().QuerySelector(playwrightSelector(by))
	if err != nil {
		return nil, playwrightErr(err)
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoSuchElement, by)
	}
	return &playwrightElement{handle: handle}, nil
}

// FindElements - queries the focused frame once for every match
func (b *browserController) FindElements(ctx context.Context, by entities.Locator) ([]interfaces.Element, error) {
	handles, err := b.current().QuerySelectorAll(playwrightSelector(by))
	if err != nil {
		return nil, playwrightErr(err)
	}
	out := make([]interfaces.Element, len(handles))
	for i, h := range handles {
		out[i] = &playwrightElement{handle: h}
	}
	return out, nil
}

// Wait - polls cond
func (b *browserController) Wait(ctx context.Context, cond interfaces.Condition, timeout time.Duration) error {
	return Poll(ctx, cond, timeout, DefaultPollInterval)
}

// SwitchToFrame - focuses a child frame of the current one
func (b *browserController) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	var target playwright.Frame
	if i, ok := frame.Index(); ok {
		children := b.current().ChildFrames()
		if i >= 0 && i < len(children) {
			target = children[i]
		}
	}
	el, ok := frame.Element()
	if by, isLocator := frame.Locator(); isLocator {
		found, err := b.FindElement(ctx, by)
		if err != nil {
			return fmt.Errorf("%w: %w", entities.ErrFrameUnavailable, err)
		}
		el, ok = found, true
	}
	if ok {
		pe, isPlaywright := el.(*playwrightElement)
		if !isPlaywright {
			return fmt.Errorf("frame element %T does not belong to a playwright session", el)
		}
		content, err := pe.handle.ContentFrame()
		if err != nil {
			return fmt.Errorf("%w: %w", entities.ErrFrameUnavailable, playwrightErr(err))
		}
		target = content
	}
	if target == nil {
		return fmt.Errorf("%w: %s", entities.ErrFrameUnavailable, frame)
	}

	b.mu.Lock()
	b.frame = target
	b.mu.Unlock()
	return nil
}

// SwitchToDefault - focuses the main frame
func (b *browserController) SwitchToDefault(ctx context.Context) error {
	b.mu.Lock()
	b.frame = b.page.MainFrame()
	b.mu.Unlock()
	return nil
}

// Screenshot - takes a screenshot of the current page
func (b *browserController) Screenshot(ctx context.Context) ([]byte, error) {
	return b.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// MaximizeWindow - sizes the viewport to the available screen
func (b *browserController) MaximizeWindow(ctx context.Context) error {
	result, err := b.page.Evaluate(`() => [window.screen.availWidth, window.screen.availHeight]`)
	if err != nil {
		return fmt.Errorf("failed to read screen size: %w", err)
	}
	size, ok := result.([]interface{})
	if !ok || len(size) != 2 {
		return fmt.Errorf("unexpected screen size %v", result)
	}
	return b.page.SetViewportSize(getInt(size[0]), getInt(size[1]))
}

// ResizeWindow - sets the viewport size
func (b *browserController) ResizeWindow(ctx context.Context, width, height int) error {
	return b.page.SetViewportSize(width, height)
}

// Active - reports whether the page can still take commands
func (b *browserController) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.quit && b.page != nil && !b.page.IsClosed()
}

// CloseWindow - closes the page
func (b *browserController) CloseWindow(ctx context.Context) error {
	return b.page.Close()
}

// Quit - closes the context, the browser and the playwright driver
func (b *browserController) Quit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.quit {
		return nil
	}
	b.quit = true

	var err error
	if b.context != nil {
		err = multierr.Append(err, ignoreClosed(b.context.Close()))
	}
	if b.browser != nil {
		err = multierr.Append(err, ignoreClosed(b.browser.Close()))
	}
	return multierr.Append(err, b.pw.Stop())
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) IsDisplayed() (bool, error) {
	ok, err := e.handle.IsVisible()
	return ok, playwrightErr(err)
}

func (e *playwrightElement) IsEnabled() (bool, error) {
	ok, err := e.handle.IsEnabled()
	return ok, playwrightErr(err)
}

func (e *playwrightElement) Click() error {
	return playwrightErr(e.handle.Click())
}

func (e *playwrightElement) SendKeys(text string) error {
	for _, stroke := range splitKeys(text) {
		var err error
		if stroke.key != "" {
			err = e.handle.Press(stroke.key)
		} else {
			err = e.handle.Type(stroke.text)
		}
		if err != nil {
			return playwrightErr(err)
		}
	}
	return nil
}

func (e *playwrightElement) Text() (string, error) {
	text, err := e.handle.InnerText()
	return text, playwrightErr(err)
}

// GetAttribute - returns the attribute, or the DOM property of that name
func (e *playwrightElement) GetAttribute(name string) (string, error) {
	value, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", playwrightErr(err)
	}
	if value != "" {
		return value, nil
	}
	prop, err := e.handle.Evaluate(`(el, name) => el[name] == null ? "" : String(el[name])`, name)
	if err != nil {
		return "", playwrightErr(err)
	}
	s, _ := prop.(string)
	return s, nil
}

// playwrightErr - maps detached-node errors onto ErrNoSuchElement
func playwrightErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "not attached to the DOM") || strings.Contains(msg, "Element is detached") {
		return fmt.Errorf("%w: %w", entities.ErrNoSuchElement, err)
	}
	return err
}

func ignoreClosed(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed") {
		return nil
	}
	return err
}

// getInt - converts a JSON number to int
func getInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return 0
}
