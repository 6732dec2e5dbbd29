package entities

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"
)

// Browser identifiers, as understood by WebDriver's browserName capability.
const (
	BrowserChrome  = "chrome"
	BrowserSafari  = "safari"
	BrowserFirefox = "firefox"
	BrowserIE      = "internet explorer"
	BrowserEdge    = "MicrosoftEdge"
	BrowserOpera   = "opera"
)

// Browsers lists every supported browser in a stable order.
var Browsers = []string{BrowserChrome, BrowserSafari, BrowserFirefox, BrowserIE, BrowserEdge, BrowserOpera}

// SupportedBrowsers - returns a fresh set of the supported browser identifiers
func SupportedBrowsers() mapset.Set[string] {
	return mapset.NewSet(Browsers...)
}

// Driver backends.
const (
	BackendSelenium   = "selenium"
	BackendPlaywright = "playwright"
	BackendRod        = "rod"
)

// Backends lists the available driver backends.
var Backends = []string{BackendSelenium, BackendPlaywright, BackendRod}

// Capability is a single session capability, applied in order.
type Capability struct {
	Prop  string `json:"prop" yaml:"prop"`
	Value any    `json:"value" yaml:"value"`
}

// ParseCapability - parses "prop=value"; booleans and integers keep their type
func ParseCapability(s string) (Capability, error) {
	prop, raw, ok := strings.Cut(s, "=")
	prop = strings.TrimSpace(prop)
	if !ok || prop == "" {
		return Capability{}, fmt.Errorf("capability %q is not in prop=value form", s)
	}
	raw = strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(raw); err == nil {
		return Capability{Prop: prop, Value: b}, nil
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return Capability{Prop: prop, Value: i}, nil
	}
	return Capability{Prop: prop, Value: raw}, nil
}

// Resolution is either a maximized window or an explicit size.
type Resolution struct {
	Width    int  `json:"width,omitempty"`
	Height   int  `json:"height,omitempty"`
	Maximize bool `json:"maximize,omitempty"`
}

// Resolution presets.
var (
	ResolutionMaximize = Resolution{Maximize: true}
	ResolutionDesktop  = Resolution{Width: 1920, Height: 1080}
	ResolutionMobile   = Resolution{Width: 420, Height: 730}
)

// IsZero reports whether the resolution was left unset.
func (r Resolution) IsZero() bool {
	return !r.Maximize && r.Width == 0 && r.Height == 0
}

func (r Resolution) String() string {
	if r.Maximize {
		return "Max x Max"
	}
	return fmt.Sprintf("%d x %d", r.Width, r.Height)
}

// ParseResolution - parses max, maximize, desktop, mobile or WxH
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize":
		return ResolutionMaximize, nil
	case "desktop":
		return ResolutionDesktop, nil
	case "mobile":
		return ResolutionMobile, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("invalid resolution %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution width %q: %w", w, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("resolution %q must be positive", s)
	}
	return Resolution{Width: width, Height: height}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) {
	if r.Maximize {
		return []byte("max"), nil
	}
	return []byte(fmt.Sprintf("%dx%d", r.Width, r.Height)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(text []byte) error {
	parsed, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML accepts the text form or a {width, height} mapping.
func (r *Resolution) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return r.UnmarshalText([]byte(node.Value))
	}
	var size struct {
		Width    int  `yaml:"width"`
		Height   int  `yaml:"height"`
		Maximize bool `yaml:"maximize"`
	}
	if err := node.Decode(&size); err != nil {
		return err
	}
	*r = Resolution{Width: size.Width, Height: size.Height, Maximize: size.Maximize}
	return nil
}

// PageConfig selects and configures the browser behind a page.
type PageConfig struct {
	Browser      null.String    `json:"browser"`
	Backend      null.String    `json:"backend"`
	BrowserArgs  []string       `json:"browserArgs"`
	Capabilities []Capability   `json:"browserCapability"`
	Resolution   Resolution     `json:"resolution"`
	FindConfig   PageFindConfig `json:"findConfig"`
	FindDefaults FindConfig     `json:"findDefaults"`
	RemoteURL    null.String    `json:"remoteUrl"`
	DriverPath   null.String    `json:"driverPath"`
	DriverPort   null.Int       `json:"driverPort"`
}

// DefaultPageConfig - returns the page config every page is merged over
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Browser:      null.StringFrom(BrowserChrome),
		Backend:      null.StringFrom(BackendSelenium),
		BrowserArgs:  []string{},
		Capabilities: []Capability{{Prop: "pageLoadStrategy", Value: "normal"}},
		Resolution:   ResolutionMaximize,
		FindConfig:   DefaultPageFindConfig(),
		FindDefaults: DefaultFindConfig(),
		RemoteURL:    null.StringFrom(""),
		DriverPath:   null.StringFrom(""),
		DriverPort:   null.IntFrom(9515),
	}
}

// Apply returns c with every field that is set in cfg overwritten.
func (c PageConfig) Apply(cfg PageConfig) PageConfig {
	if cfg.Browser.Valid {
		c.Browser = cfg.Browser
	}
	if cfg.Backend.Valid {
		c.Backend = cfg.Backend
	}
	if len(cfg.BrowserArgs) > 0 {
		c.BrowserArgs = cfg.BrowserArgs
	}
	if len(cfg.Capabilities) > 0 {
		c.Capabilities = cfg.Capabilities
	}
	if !cfg.Resolution.IsZero() {
		c.Resolution = cfg.Resolution
	}
	c.FindConfig = c.FindConfig.Apply(cfg.FindConfig)
	c.FindDefaults = c.FindDefaults.Apply(cfg.FindDefaults)
	if cfg.RemoteURL.Valid {
		c.RemoteURL = cfg.RemoteURL
	}
	if cfg.DriverPath.Valid {
		c.DriverPath = cfg.DriverPath
	}
	if cfg.DriverPort.Valid {
		c.DriverPort = cfg.DriverPort
	}
	return c
}

// Validate - checks the browser and backend selection
func (c PageConfig) Validate() error {
	if !SupportedBrowsers().Contains(c.Browser.String) {
		return fmt.Errorf("%w: %q is not supported browser. Selenium-Page supports: %s",
			ErrUnsupportedBrowser, c.Browser.String, strings.Join(Browsers, ", "))
	}
	if !mapset.NewSet(Backends...).Contains(c.Backend.String) {
		return fmt.Errorf("%w: %q, available backends: %s",
			ErrUnsupportedBackend, c.Backend.String, strings.Join(Backends, ", "))
	}
	return nil
}
