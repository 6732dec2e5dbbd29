package browser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// backendBrowsers lists the browsers each backend can drive.
var backendBrowsers = map[string]mapset.Set[string]{
	entities.BackendSelenium: entities.SupportedBrowsers(),
	entities.BackendPlaywright: mapset.NewSet(
		entities.BrowserChrome, entities.BrowserEdge, entities.BrowserFirefox, entities.BrowserSafari,
	),
	entities.BackendRod: mapset.NewSet(entities.BrowserChrome, entities.BrowserEdge),
}

// BackendBrowsers - returns the browsers a backend can drive, sorted
func BackendBrowsers(backend string) ([]string, error) {
	set, ok := backendBrowsers[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q, available backends: %s",
			entities.ErrUnsupportedBackend, backend, strings.Join(entities.Backends, ", "))
	}
	browsers := set.ToSlice()
	sort.Strings(browsers)
	return browsers, nil
}

// NewDriver - starts a session on the backend and browser named by cfg
func NewDriver(ctx context.Context, cfg entities.PageConfig, logger *logrus.Logger) (interfaces.Driver, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	backend, browser := cfg.Backend.String, cfg.Browser.String

	supported, err := BackendBrowsers(backend)
	if err != nil {
		return nil, err
	}
	if !backendBrowsers[backend].Contains(browser) {
		return nil, fmt.Errorf("%w: %q is not supported by the %s backend, use one of: %s",
			entities.ErrUnsupportedBrowser, browser, backend, strings.Join(supported, ", "))
	}

	logger.WithFields(logrus.Fields{
		"backend": backend,
		"browser": browser,
	}).Debug("Starting browser session")

	switch backend {
	case entities.BackendPlaywright:
		return NewBrowserController(cfg, logger)
	case entities.BackendRod:
		d, err := NewRodController(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		d, err := NewSeleniumController(cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
