package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
	"selenium_page/infrastructure/browser/browsertest"
)

type testState struct {
	*globalState
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	env    map[string]string
	logs   *logtest.Hook

	mu      sync.Mutex
	configs []entities.PageConfig
	drivers map[string]*browsertest.Driver
}

// newTestState builds a global state whose driver factory hands out the
// scripted driver registered for the requested browser.
func newTestState(t *testing.T) *testState {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	ts := &testState{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		env:     map[string]string{},
		logs:    hook,
		drivers: map[string]*browsertest.Driver{},
	}
	ts.globalState = &globalState{
		ctx:    context.Background(),
		fs:     afero.NewMemMapFs(),
		stdin:  strings.NewReader(""),
		stdout: ts.stdout,
		stderr: ts.stderr,
		lookupEnv: func(key string) (string, bool) {
			v, ok := ts.env[key]
			return v, ok
		},
		logger:  logger,
		noColor: true,
		newDriver: func(_ context.Context, cfg entities.PageConfig, _ *logrus.Logger) (interfaces.Driver, error) {
			ts.mu.Lock()
			defer ts.mu.Unlock()
			ts.configs = append(ts.configs, cfg)
			d, ok := ts.drivers[cfg.Browser.String]
			if !ok {
				return nil, errors.New("no " + cfg.Browser.String + " installed")
			}
			return d, nil
		},
	}
	return ts
}

func (ts *testState) driver(browser string) *browsertest.Driver {
	d := browsertest.New()
	ts.drivers[browser] = d
	return d
}

func (ts *testState) lastConfig(t *testing.T) entities.PageConfig {
	t.Helper()
	require.NotEmpty(t, ts.configs)
	return ts.configs[len(ts.configs)-1]
}

func TestBrowsersCommand(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)

	require.NoError(t, run(ts.globalState, []string{"browsers", "--backend", "rod"}))
	assert.Equal(t,
		"  selenium: MicrosoftEdge, chrome, firefox, internet explorer, opera, safari\n"+
			"  playwright: MicrosoftEdge, chrome, firefox, safari\n"+
			"* rod: MicrosoftEdge, chrome\n",
		ts.stdout.String())
}

func TestFindCommand(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	d := ts.driver(entities.BrowserChrome)
	d.Add(entities.ByCSS("h1"), &browsertest.Element{Name: "h1", Value: "Example Domain"})

	require.NoError(t, run(ts.globalState, []string{"find", "https://example.com", "--css", "h1", "-r", "desktop"}))
	assert.Equal(t, "[0] Example Domain\n", ts.stdout.String())
	assert.Equal(t, "https://example.com", d.URL())
	assert.Equal(t, entities.ResolutionDesktop, d.Window())
	assert.False(t, d.Active())
}

func TestFindCommandAll(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	d := ts.driver(entities.BrowserChrome)
	d.Add(entities.ByXPath("//li"),
		&browsertest.Element{Name: "a", Value: "one"},
		&browsertest.Element{Name: "b", Value: "two"},
	)

	require.NoError(t, run(ts.globalState, []string{
		"find", "https://example.com", "--xpath", "//li", "--all", "--open-resolution", "mobile",
	}))
	assert.Equal(t, "[0] one\n[1] two\n", ts.stdout.String())
	assert.Equal(t, entities.ResolutionMobile, d.Window())
}

func TestFindCommandSoftMiss(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	ts.driver(entities.BrowserChrome)

	require.NoError(t, run(ts.globalState, []string{
		"find", "https://example.com", "--css", ".missing", "--must-find=false", "--timeout", "30",
	}))
	assert.Equal(t, "By(css selector, .missing) not found\n", ts.stdout.String())
}

func TestFindCommandFailure(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	ts.driver(entities.BrowserChrome)

	err := run(ts.globalState, []string{
		"find", "https://example.com", "--css", ".missing",
		"--timeout-ms", "30", "--screenshot-dir", "/shots", "--screenshot-name", "t1",
		"--message", "Button 'I Agree' not found",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrNotLocated)

	stderr := ts.stderr.String()
	assert.Contains(t, stderr, "By(css selector, .missing)")
	assert.Contains(t, stderr, "Message: Button 'I Agree' not found")
	assert.Contains(t, stderr, "Screenshot: /shots/t1.png")
	assert.NotContains(t, stderr, "\n    at ")

	exists, err := afero.Exists(ts.fs, "/shots/t1.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindCommandDebugStack(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	ts.driver(entities.BrowserChrome)

	err := run(ts.globalState, []string{
		"find", "https://example.com", "--id", "nope", "--timeout-ms", "30", "--screenshot=false", "--log-level", "debug",
	})
	require.Error(t, err)
	assert.Contains(t, ts.stderr.String(), "\n    at ")
}

func TestWaitDisappearCommand(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	ts.driver(entities.BrowserChrome)

	require.NoError(t, run(ts.globalState, []string{"wait-disappear", "https://example.com", "--class", "spinner"}))
	assert.Equal(t, "By(class name, spinner) is gone\n", ts.stdout.String())

	ts.driver(entities.BrowserChrome).Add(entities.ByClassName("banner"), &browsertest.Element{Name: "banner"})
	err := run(ts.globalState, []string{"wait-disappear", "https://example.com", "--class", "banner", "--timeout", "30"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrStillVisible)
}

func TestUnsupportedBrowser(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)

	err := run(ts.globalState, []string{"find", "https://example.com", "--css", "h1", "--browser", "netscape"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrUnsupportedBrowser)
	assert.Contains(t, ts.stderr.String(), `"netscape" is not supported browser. Selenium-Page supports: chrome, safari, firefox, internet explorer, MicrosoftEdge, opera`)
	assert.Empty(t, ts.configs)

	entry := ts.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
}

func TestConfigLayers(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	ts.driver(entities.BrowserFirefox).Add(entities.ByCSS("h1"), &browsertest.Element{Name: "h1", Value: "x"})
	ts.driver(entities.BrowserSafari).Add(entities.ByCSS("h1"), &browsertest.Element{Name: "h1", Value: "x"})

	require.NoError(t, afero.WriteFile(ts.fs, "/conf/page.yaml", []byte(
		"browser: opera\nresolution: 1024x768\nfindDefaults:\n  timeoutMs: 4000\n"), 0o644))
	require.NoError(t, afero.WriteFile(ts.fs, dotEnvFile, []byte(
		"SELENIUM_PAGE_BROWSER=firefox\nSELENIUM_PAGE_TIMEOUT_MS=3000\n"), 0o644))

	require.NoError(t, run(ts.globalState, []string{"find", "https://example.com", "--css", "h1", "-c", "/conf/page.yaml"}))
	cfg := ts.lastConfig(t)
	assert.Equal(t, entities.BrowserFirefox, cfg.Browser.String)
	assert.Equal(t, entities.Resolution{Width: 1024, Height: 768}, cfg.Resolution)
	assert.Equal(t, int64(3000), cfg.FindDefaults.TimeoutMs.Int64)

	ts.env["SELENIUM_PAGE_TIMEOUT_MS"] = "2500"
	require.NoError(t, run(ts.globalState, []string{
		"find", "https://example.com", "--css", "h1", "-c", "/conf/page.yaml", "--browser", "safari",
	}))
	cfg = ts.lastConfig(t)
	assert.Equal(t, entities.BrowserSafari, cfg.Browser.String)
	assert.Equal(t, int64(2500), cfg.FindDefaults.TimeoutMs.Int64)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)

	err := run(ts.globalState, []string{"browsers", "--log-level", "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestMissingConfigFile(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)

	err := run(ts.globalState, []string{"browsers", "--config", "/nope.yaml"})
	assert.ErrorContains(t, err, "failed to read config /nope.yaml")
}

func TestGetLocator(t *testing.T) {
	t.Parallel()
	parse := func(args ...string) *pflag.FlagSet {
		flags := locatorFlagSet()
		require.NoError(t, flags.Parse(args))
		return flags
	}

	by, err := getLocator(parse("--data-test", "login"), "data-qa")
	require.NoError(t, err)
	assert.Equal(t, entities.ByCSS(`*[data-qa="login"]`), by)

	by, err = getLocator(parse("--partial-link-text", "Sign"), "")
	require.NoError(t, err)
	assert.Equal(t, entities.ByPartialLinkText("Sign"), by)

	_, err = getLocator(parse(), "")
	assert.EqualError(t, err, "a locator is required, e.g. --css or --xpath")

	_, err = getLocator(parse("--css", "h1", "--id", "x"), "")
	assert.EqualError(t, err, "only one locator may be given, got --css, --id")

	_, err = getLocator(parse("--name", ""), "")
	assert.ErrorContains(t, err, "empty value")
}

func TestGetConfigOnlyChangedFlags(t *testing.T) {
	t.Parallel()
	flags := pageFlagSet()
	flags.AddFlagSet(rootFlagSet(&globalState{}))
	require.NoError(t, flags.Parse([]string{
		"--browser-arg=--headless", "--browser-arg=--lang=de",
		"--capability", "acceptInsecureCerts=true", "--wait-visible=false",
	}))

	conf, err := getConfig(flags)
	require.NoError(t, err)
	assert.False(t, conf.Page.Browser.Valid)
	assert.False(t, conf.LogLevel.Valid)
	assert.False(t, conf.Page.FindDefaults.TimeoutMs.Valid)
	assert.True(t, conf.Page.Resolution.IsZero())
	assert.Equal(t, []string{"--headless", "--lang=de"}, conf.Page.BrowserArgs)
	assert.Equal(t, []entities.Capability{{Prop: "acceptInsecureCerts", Value: true}}, conf.Page.Capabilities)
	assert.True(t, conf.Page.FindDefaults.WaitBeVisible.Valid)
	assert.False(t, conf.Page.FindDefaults.WaitBeVisible.Bool)

	flags = pageFlagSet()
	require.NoError(t, flags.Parse([]string{"--browser", "firefox"}))
	conf, err = getConfig(flags)
	require.NoError(t, err)
	assert.False(t, conf.LogLevel.Valid)
	assert.True(t, conf.Page.Browser.Valid)
	assert.Equal(t, entities.BrowserFirefox, conf.Page.Browser.String)

	flags = pageFlagSet()
	require.NoError(t, flags.Parse([]string{"--resolution", "huge"}))
	_, err = getConfig(flags)
	assert.Error(t, err)
}

func TestShellCommand(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	d := ts.driver(entities.BrowserChrome)
	d.SetTitle("Example Domain")
	ts.stdin = strings.NewReader("title\nquit\n")

	require.NoError(t, run(ts.globalState, []string{"shell", "https://example.com"}))
	assert.Contains(t, ts.stdout.String(), "Example Domain\n")
	assert.Contains(t, ts.stdout.String(), "Bye!")
	assert.Equal(t, "https://example.com", d.URL())
	assert.False(t, d.Active())
}

func googleDriver(ts *testState, browser string) *browsertest.Driver {
	d := ts.driver(browser)
	d.Add(entities.ByCSS("input[title='Search'], textarea[name='q']"), &browsertest.Element{Name: "q"})
	d.Add(entities.ByCSS("#search .g"),
		&browsertest.Element{Name: "r1", Value: "Selenium\nhttps://selenium.dev"},
		&browsertest.Element{Name: "r2", Value: "WebDriver | W3C\nhttps://w3.org"},
	)
	return d
}

func TestDemoGoogle(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	d := googleDriver(ts, entities.BrowserChrome)

	require.NoError(t, run(ts.globalState, []string{
		"demo", "google", "webdriver", "--timeout-ms", "30", "--results", "1", "--url", "https://www.google.de",
	}))
	assert.Equal(t,
		"✓ chrome: 2 results for \"webdriver\"\n"+
			"    1. Selenium\n",
		ts.stdout.String())
	assert.Equal(t, "https://www.google.de", d.URL())
}

func TestDemoGoogleAllBrowsers(t *testing.T) {
	t.Parallel()
	ts := newTestState(t)
	googleDriver(ts, entities.BrowserChrome)

	err := run(ts.globalState, []string{"demo", "google", "--browser", "all", "--timeout-ms", "30"})
	require.Error(t, err)
	assert.EqualError(t, err, "5 of 6 browsers failed")

	out := ts.stdout.String()
	assert.Contains(t, out, "✓ chrome: 2 results for \"selenium\"")
	assert.Contains(t, out, "✗ firefox: failed to start driver: no firefox installed")
	assert.Contains(t, out, "✗ internet explorer:")
	assert.Len(t, ts.configs, len(entities.Browsers))
}
