package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"
)

func TestParseResolution(t *testing.T) {
	tests := map[string]Resolution{
		"max":       ResolutionMaximize,
		"Maximize":  ResolutionMaximize,
		"desktop":   ResolutionDesktop,
		"mobile":    ResolutionMobile,
		"1280x720":  {Width: 1280, Height: 720},
		"800 X 600": {Width: 800, Height: 600},
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseResolution(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	for _, in := range []string{"", "wide", "0x10", "10x", "axb"} {
		_, err := ParseResolution(in)
		assert.Error(t, err, in)
	}
}

func TestResolutionString(t *testing.T) {
	assert.Equal(t, "Max x Max", ResolutionMaximize.String())
	assert.Equal(t, "420 x 730", ResolutionMobile.String())
}

func TestResolutionTextAndYAML(t *testing.T) {
	text, err := ResolutionDesktop.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1920x1080", string(text))

	var fromText Resolution
	require.NoError(t, fromText.UnmarshalText(text))

	var doc struct {
		Scalar  Resolution `yaml:"scalar"`
		Mapping Resolution `yaml:"mapping"`
		Max     Resolution `yaml:"max"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("scalar: 1920x1080\nmapping: {width: 1920, height: 1080}\nmax: max\n"), &doc))
	assert.Equal(t, fromText, doc.Scalar)
	assert.Equal(t, fromText, doc.Mapping)
	assert.Equal(t, ResolutionMaximize, doc.Max)
}

func TestParseCapability(t *testing.T) {
	c, err := ParseCapability("pageLoadStrategy=eager")
	require.NoError(t, err)
	assert.Equal(t, Capability{Prop: "pageLoadStrategy", Value: "eager"}, c)

	c, err = ParseCapability("acceptInsecureCerts = true")
	require.NoError(t, err)
	assert.Equal(t, Capability{Prop: "acceptInsecureCerts", Value: true}, c)

	c, err = ParseCapability("se:timeout=30")
	require.NoError(t, err)
	assert.Equal(t, Capability{Prop: "se:timeout", Value: 30}, c)

	_, err = ParseCapability("noequals")
	assert.Error(t, err)
	_, err = ParseCapability("=x")
	assert.Error(t, err)
}

func TestPageConfigApply(t *testing.T) {
	def := DefaultPageConfig()
	assert.Equal(t, "chrome", def.Browser.String)
	assert.Equal(t, ResolutionMaximize, def.Resolution)
	assert.Equal(t, []Capability{{Prop: "pageLoadStrategy", Value: "normal"}}, def.Capabilities)

	cfg := def.Apply(PageConfig{
		Browser:      null.StringFrom(BrowserFirefox),
		BrowserArgs:  []string{"-headless"},
		Resolution:   ResolutionMobile,
		FindDefaults: FindConfig{TimeoutMs: null.IntFrom(10)},
	})
	assert.Equal(t, BrowserFirefox, cfg.Browser.String)
	assert.Equal(t, []string{"-headless"}, cfg.BrowserArgs)
	assert.Equal(t, ResolutionMobile, cfg.Resolution)
	assert.Equal(t, int64(10), cfg.FindDefaults.TimeoutMs.Int64)
	assert.True(t, cfg.FindDefaults.MustFind.Bool)
	assert.Equal(t, def.Capabilities, cfg.Capabilities)
	assert.Equal(t, def.Backend, cfg.Backend)
}

func TestPageConfigValidate(t *testing.T) {
	require.NoError(t, DefaultPageConfig().Validate())

	for _, b := range Browsers {
		cfg := DefaultPageConfig().Apply(PageConfig{Browser: null.StringFrom(b)})
		assert.NoError(t, cfg.Validate(), b)
	}

	err := DefaultPageConfig().Apply(PageConfig{Browser: null.StringFrom("netscape")}).Validate()
	require.ErrorIs(t, err, ErrUnsupportedBrowser)
	assert.Contains(t, err.Error(), `"netscape" is not supported browser. Selenium-Page supports: chrome, safari, firefox, internet explorer, MicrosoftEdge, opera`)

	err = DefaultPageConfig().Apply(PageConfig{Backend: null.StringFrom("puppeteer")}).Validate()
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestSupportedBrowsers(t *testing.T) {
	set := SupportedBrowsers()
	assert.Equal(t, len(Browsers), set.Cardinality())
	assert.True(t, set.Contains(BrowserEdge))
	set.Add("lynx")
	assert.False(t, SupportedBrowsers().Contains("lynx"))
}
