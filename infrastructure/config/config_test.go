package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"selenium_page/domain/entities"
)

func lookupMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

const sampleYAML = `
browser: firefox
backend: playwright
browserArgs: ["--headless", "--lang=en"]
browserCapability:
  - prop: acceptInsecureCerts
    value: true
resolution: 1280x720
remoteUrl: http://grid:4444/wd/hub
driverPort: 4444
logLevel: debug
findConfig:
  dataTestAttr: data-qa
  screenshot: false
findDefaults:
  timeoutMs: 5000
  mustFind: false
`

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("Explicit", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/etc/page.yaml", []byte(sampleYAML), 0o644))

		conf, err := ReadFile(fs, "/etc/page.yaml")
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("firefox"), conf.Page.Browser)
		assert.Equal(t, null.StringFrom("playwright"), conf.Page.Backend)
		assert.Equal(t, []string{"--headless", "--lang=en"}, conf.Page.BrowserArgs)
		assert.Equal(t, []entities.Capability{{Prop: "acceptInsecureCerts", Value: true}}, conf.Page.Capabilities)
		assert.Equal(t, entities.Resolution{Width: 1280, Height: 720}, conf.Page.Resolution)
		assert.Equal(t, null.StringFrom("http://grid:4444/wd/hub"), conf.Page.RemoteURL)
		assert.Equal(t, null.IntFrom(4444), conf.Page.DriverPort)
		assert.Equal(t, null.StringFrom("debug"), conf.LogLevel)
		assert.Equal(t, null.StringFrom("data-qa"), conf.Page.FindConfig.DataTestAttr)
		assert.Equal(t, null.BoolFrom(false), conf.Page.FindConfig.Screenshot)
		assert.Equal(t, null.IntFrom(5000), conf.Page.FindDefaults.TimeoutMs)
		assert.Equal(t, null.BoolFrom(false), conf.Page.FindDefaults.MustFind)

		assert.False(t, conf.Page.DriverPath.Valid)
		assert.False(t, conf.Page.FindConfig.ScreenshotDir.Valid)
		assert.False(t, conf.Page.FindDefaults.WaitBeVisible.Valid)
	})

	t.Run("ExplicitMissing", func(t *testing.T) {
		t.Parallel()
		_, err := ReadFile(afero.NewMemMapFs(), "nope.yaml")
		assert.ErrorContains(t, err, "failed to read config nope.yaml")
	})

	t.Run("DefaultMissing", func(t *testing.T) {
		t.Parallel()
		conf, err := ReadFile(afero.NewMemMapFs(), "")
		require.NoError(t, err)
		assert.Equal(t, Config{}, conf)
	})

	t.Run("DefaultPresent", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, DefaultFile, []byte("browser: safari\nresolution: {width: 800, height: 600}\n"), 0o644))

		conf, err := ReadFile(fs, "")
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("safari"), conf.Page.Browser)
		assert.Equal(t, entities.Resolution{Width: 800, Height: 600}, conf.Page.Resolution)
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("resolution: huge\n"), 0o644))

		_, err := ReadFile(fs, "bad.yaml")
		assert.ErrorContains(t, err, "failed to parse config bad.yaml")
	})
}

func TestReadEnv(t *testing.T) {
	t.Parallel()

	conf, err := ReadEnv(lookupMap(map[string]string{
		"SELENIUM_PAGE_BROWSER":        "MicrosoftEdge",
		"SELENIUM_PAGE_BROWSER_ARGS":   "--headless, --mute-audio",
		"SELENIUM_PAGE_CAPABILITIES":   "pageLoadStrategy=eager,acceptInsecureCerts=true",
		"SELENIUM_PAGE_RESOLUTION":     "mobile",
		"SELENIUM_PAGE_DRIVER_PORT":    "9999",
		"SELENIUM_PAGE_SCREENSHOT":     "false",
		"SELENIUM_PAGE_TIMEOUT_MS":     "300",
		"SELENIUM_PAGE_WAIT_VISIBLE":   "false",
		"SELENIUM_PAGE_LOG_LEVEL":      "warn",
		"SELENIUM_PAGE_DATA_TEST_ATTR": "data-cy",
	}))
	require.NoError(t, err)

	assert.Equal(t, null.StringFrom(entities.BrowserEdge), conf.Page.Browser)
	assert.Equal(t, []string{"--headless", "--mute-audio"}, conf.Page.BrowserArgs)
	assert.Equal(t, []entities.Capability{
		{Prop: "pageLoadStrategy", Value: "eager"},
		{Prop: "acceptInsecureCerts", Value: true},
	}, conf.Page.Capabilities)
	assert.Equal(t, entities.ResolutionMobile, conf.Page.Resolution)
	assert.Equal(t, null.IntFrom(9999), conf.Page.DriverPort)
	assert.Equal(t, null.BoolFrom(false), conf.Page.FindConfig.Screenshot)
	assert.Equal(t, null.StringFrom("data-cy"), conf.Page.FindConfig.DataTestAttr)
	assert.Equal(t, null.IntFrom(300), conf.Page.FindDefaults.TimeoutMs)
	assert.Equal(t, null.BoolFrom(false), conf.Page.FindDefaults.WaitBeVisible)
	assert.Equal(t, null.StringFrom("warn"), conf.LogLevel)

	assert.False(t, conf.Page.Backend.Valid)
	assert.False(t, conf.Page.FindDefaults.MustFind.Valid)
}

func TestReadEnvEmpty(t *testing.T) {
	t.Parallel()
	conf, err := ReadEnv(lookupMap(nil))
	require.NoError(t, err)
	assert.False(t, conf.Page.Browser.Valid)
	assert.True(t, conf.Page.Resolution.IsZero())
	assert.Empty(t, conf.Page.Capabilities)
}

func TestReadEnvInvalid(t *testing.T) {
	t.Parallel()

	_, err := ReadEnv(lookupMap(map[string]string{"SELENIUM_PAGE_RESOLUTION": "wide"}))
	assert.ErrorContains(t, err, `invalid resolution "wide"`)

	_, err = ReadEnv(lookupMap(map[string]string{"SELENIUM_PAGE_CAPABILITIES": "justaprop"}))
	assert.ErrorContains(t, err, `capability "justaprop" is not in prop=value form`)

	_, err = ReadEnv(lookupMap(map[string]string{"SELENIUM_PAGE_TIMEOUT_MS": "soon"}))
	assert.ErrorContains(t, err, "failed to read environment")
}

func TestConsolidate(t *testing.T) {
	t.Parallel()

	fileConf := Config{
		LogLevel: null.StringFrom("debug"),
		Page: entities.PageConfig{
			Browser:      null.StringFrom(entities.BrowserFirefox),
			Resolution:   entities.ResolutionDesktop,
			FindDefaults: entities.FindConfig{TimeoutMs: null.IntFrom(5000)},
		},
	}
	envConf := Config{
		Page: entities.PageConfig{
			Browser:      null.StringFrom(entities.BrowserSafari),
			FindDefaults: entities.FindConfig{TimeoutMs: null.IntFrom(3000), MustFind: null.BoolFrom(false)},
		},
	}
	cliConf := Config{
		Page: entities.PageConfig{
			Browser: null.StringFrom(entities.BrowserOpera),
		},
	}

	conf, err := Consolidate(fileConf, envConf, cliConf)
	require.NoError(t, err)
	assert.Equal(t, entities.BrowserOpera, conf.Page.Browser.String)
	assert.Equal(t, entities.BackendSelenium, conf.Page.Backend.String)
	assert.Equal(t, entities.ResolutionDesktop, conf.Page.Resolution)
	assert.Equal(t, int64(3000), conf.Page.FindDefaults.TimeoutMs.Int64)
	assert.False(t, conf.Page.FindDefaults.MustFind.Bool)
	assert.True(t, conf.Page.FindDefaults.WaitBeVisible.Bool)
	assert.Equal(t, "debug", conf.LogLevel.String)

	conf, err = Consolidate(Config{}, Config{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestConsolidateKeepsUnknownBrowser(t *testing.T) {
	t.Parallel()
	conf, err := Consolidate(Config{}, Config{}, Config{Page: entities.PageConfig{Browser: null.StringFrom("all")}})
	require.NoError(t, err)
	assert.Equal(t, "all", conf.Page.Browser.String)
}

func TestConsolidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	_, err := Consolidate(Config{LogLevel: null.StringFrom("loud")}, Config{}, Config{})
	assert.ErrorContains(t, err, "invalid log level")
}
