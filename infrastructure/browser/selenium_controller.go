package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/multierr"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// seleniumDrivers maps a browser to the driver binary that serves it.
var seleniumDrivers = map[string]string{
	entities.BrowserChrome:  "chromedriver",
	entities.BrowserFirefox: "geckodriver",
	entities.BrowserEdge:    "msedgedriver",
	entities.BrowserOpera:   "operadriver",
	entities.BrowserSafari:  "safaridriver",
	entities.BrowserIE:      "IEDriverServer",
}

type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger

	mu   sync.Mutex
	quit bool
}

var _ interfaces.Driver = (*SeleniumController)(nil)

// findDriver - finds the driver executable for a browser
func findDriver(browser, configured string) (string, error) {
	name := seleniumDrivers[browser]
	for _, path := range []string{configured, os.Getenv("BROWSER_DRIVER_PATH")} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join(os.Getenv("HOME"), "bin", name),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found. Please install it or set BROWSER_DRIVER_PATH environment variable", name)
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary() string {
	if path := os.Getenv("CHROME_BINARY_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// seleniumCapabilities - builds W3C capabilities for the page config
func seleniumCapabilities(cfg entities.PageConfig, logger *logrus.Logger) selenium.Capabilities {
	browser := cfg.Browser.String
	caps := selenium.Capabilities{"browserName": browser}
	for _, c := range cfg.Capabilities {
		caps[c.Prop] = c.Value
	}

	switch browser {
	case entities.BrowserChrome, entities.BrowserOpera:
		chromeCaps := chrome.Capabilities{Args: cfg.BrowserArgs}
		if bin := findChromeBinary(); bin != "" && browser == entities.BrowserChrome {
			logger.Infof("Using Chrome binary at: %s", bin)
			chromeCaps.Path = bin
		}
		caps.AddChrome(chromeCaps)
	case entities.BrowserEdge:
		caps["ms:edgeOptions"] = map[string]interface{}{"args": cfg.BrowserArgs}
	case entities.BrowserFirefox:
		caps.AddFirefox(firefox.Capabilities{Args: cfg.BrowserArgs})
	default:
		if len(cfg.BrowserArgs) > 0 {
			logger.Warnf("Browser arguments are not supported for %q and will be ignored", browser)
		}
	}
	return caps
}

// startSeleniumService - starts a local driver service and returns its URL
func startSeleniumService(cfg entities.PageConfig, logger *logrus.Logger) (*selenium.Service, string, error) {
	browser := cfg.Browser.String
	port := int(cfg.DriverPort.Int64)

	driverPath, err := findDriver(browser, cfg.DriverPath.String)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find driver: %w", err)
	}
	logger.Infof("Using %s at: %s", seleniumDrivers[browser], driverPath)

	switch browser {
	case entities.BrowserChrome, entities.BrowserEdge, entities.BrowserOpera:
		service, err := selenium.NewChromeDriverService(driverPath, port)
		if err != nil {
			return nil, "", fmt.Errorf("failed to start %s: %w", seleniumDrivers[browser], err)
		}
		return service, fmt.Sprintf("http://localhost:%d/wd/hub", port), nil
	case entities.BrowserFirefox:
		service, err := selenium.NewGeckoDriverService(driverPath, port)
		if err != nil {
			return nil, "", fmt.Errorf("failed to start geckodriver: %w", err)
		}
		return service, fmt.Sprintf("http://localhost:%d", port), nil
	}
	return nil, "", fmt.Errorf("%w: %q needs a running %s, set remoteUrl",
		entities.ErrUnsupportedBrowser, browser, seleniumDrivers[browser])
}

// NewSeleniumController - starts a WebDriver session, on a local driver
// service or on the remote endpoint in cfg.RemoteURL
func NewSeleniumController(cfg entities.PageConfig, logger *logrus.Logger) (*SeleniumController, error) {
	var service *selenium.Service
	url := cfg.RemoteURL.String
	if url == "" {
		var err error
		service, url, err = startSeleniumService(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	wd, err := selenium.NewRemote(seleniumCapabilities(cfg, logger), url)
	if err != nil {
		if service != nil {
			service.Stop()
		}
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}, nil
}

// Get - navigates browser to specified URL
func (s *SeleniumController) Get(ctx context.Context, url string) error {
	s.logger.Debugf("Navigating to: %s", url)
	return seleniumErr(s.wd.Get(url))
}

// Title - returns current page title
func (s *SeleniumController) Title(ctx context.Context) (string, error) {
	title, err := s.wd.Title()
	return title, seleniumErr(err)
}

// FindElement - finds the first element matching by, without waiting
func (s *SeleniumController) FindElement(ctx context.Context, by entities.Locator) (interfaces.Element, error) {
	el, err := s.wd.FindElement(string(by.Strategy), by.Value)
	if err != nil {
		return nil, seleniumErr(err)
	}
	return &seleniumElement{el: el}, nil
}

// FindElements - finds every element matching by, without waiting
func (s *SeleniumController) FindElements(ctx context.Context, by entities.Locator) ([]interfaces.Element, error) {
	els, err := s.wd.FindElements(string(by.Strategy), by.Value)
	if err != nil {
		err = seleniumErr(err)
		if errors.Is(err, entities.ErrNoSuchElement) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]interfaces.Element, len(els))
	for i, el := range els {
		out[i] = &seleniumElement{el: el}
	}
	return out, nil
}

// Wait - delegates to the WebDriver client's explicit wait
func (s *SeleniumController) Wait(ctx context.Context, cond interfaces.Condition, timeout time.Duration) error {
	var condErr error
	err := s.wd.WaitWithTimeoutAndInterval(func(selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			condErr = err
			return false, err
		}
		ok, err := cond(ctx)
		if err != nil {
			condErr = err
		}
		return ok, err
	}, timeout, DefaultPollInterval)
	if err == nil {
		return nil
	}
	if condErr != nil {
		return condErr
	}
	return fmt.Errorf("%w: %v", entities.ErrWaitTimeout, err)
}

// SwitchToFrame - moves focus into a frame
func (s *SeleniumController) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	if i, ok := frame.Index(); ok {
		return seleniumErr(s.wd.SwitchFrame(i))
	}
	el, ok := frame.Element()
	if by, isLocator := frame.Locator(); isLocator {
		found, err := s.FindElement(ctx, by)
		if err != nil {
			return err
		}
		el, ok = found, true
	}
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrFrameUnavailable, frame)
	}
	se, ok := el.(*seleniumElement)
	if !ok {
		return fmt.Errorf("frame element %T does not belong to a selenium session", el)
	}
	return seleniumErr(s.wd.SwitchFrame(se.el))
}

// SwitchToDefault - moves focus back to the top-level document
func (s *SeleniumController) SwitchToDefault(ctx context.Context) error {
	return seleniumErr(s.wd.SwitchFrame(nil))
}

// Screenshot - takes screenshot of current page
func (s *SeleniumController) Screenshot(ctx context.Context) ([]byte, error) {
	png, err := s.wd.Screenshot()
	return png, seleniumErr(err)
}

// MaximizeWindow - maximizes the current window
func (s *SeleniumController) MaximizeWindow(ctx context.Context) error {
	return seleniumErr(s.wd.MaximizeWindow(""))
}

// ResizeWindow - resizes the current window
func (s *SeleniumController) ResizeWindow(ctx context.Context, width, height int) error {
	return seleniumErr(s.wd.ResizeWindow("", width, height))
}

// Active - checks the session still answers
func (s *SeleniumController) Active() bool {
	s.mu.Lock()
	quit := s.quit
	s.mu.Unlock()
	if quit || s.wd == nil {
		return false
	}
	_, err := s.wd.CurrentWindowHandle()
	return err == nil
}

// CloseWindow - closes the current window
func (s *SeleniumController) CloseWindow(ctx context.Context) error {
	return seleniumErr(s.wd.Close())
}

// Quit - ends the session and stops the driver service
func (s *SeleniumController) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit {
		return nil
	}
	s.quit = true

	var err error
	if s.wd != nil {
		err = multierr.Append(err, s.wd.Quit())
	}
	if s.service != nil {
		err = multierr.Append(err, s.service.Stop())
	}
	return err
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e *seleniumElement) IsDisplayed() (bool, error) {
	ok, err := e.el.IsDisplayed()
	return ok, seleniumErr(err)
}

func (e *seleniumElement) IsEnabled() (bool, error) {
	ok, err := e.el.IsEnabled()
	return ok, seleniumErr(err)
}

func (e *seleniumElement) Click() error {
	return seleniumErr(e.el.Click())
}

func (e *seleniumElement) SendKeys(text string) error {
	return seleniumErr(e.el.SendKeys(text))
}

func (e *seleniumElement) Text() (string, error) {
	text, err := e.el.Text()
	return text, seleniumErr(err)
}

func (e *seleniumElement) GetAttribute(name string) (string, error) {
	value, err := e.el.GetAttribute(name)
	return value, seleniumErr(err)
}

// seleniumErr - maps WebDriver error codes onto the entities error kinds
func seleniumErr(err error) error {
	if err == nil {
		return nil
	}
	code := ""
	var serr *selenium.Error
	if errors.As(err, &serr) {
		code = serr.Err
	}
	msg := err.Error()
	switch {
	case code == "no such element", code == "stale element reference",
		strings.Contains(msg, "no such element"), strings.Contains(msg, "stale element reference"):
		return fmt.Errorf("%w: %w", entities.ErrNoSuchElement, err)
	case code == "no such frame", strings.Contains(msg, "no such frame"):
		return fmt.Errorf("%w: %w", entities.ErrFrameUnavailable, err)
	}
	return err
}
