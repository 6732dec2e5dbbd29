// Package config consolidates the page configuration from its defaults, a
// YAML file, the environment and the command line, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"selenium_page/domain/entities"
)

// DefaultFile is read when no config file is named and it exists.
const DefaultFile = "selenium-page.yaml"

// Config is everything the command line tool can be configured with.
type Config struct {
	Page     entities.PageConfig
	LogLevel null.String
}

// Default - returns the configuration every layer is applied over
func Default() Config {
	return Config{
		Page:     entities.DefaultPageConfig(),
		LogLevel: null.StringFrom(logrus.InfoLevel.String()),
	}
}

// Apply returns c with every field that is set in cfg overwritten.
func (c Config) Apply(cfg Config) Config {
	c.Page = c.Page.Apply(cfg.Page)
	if cfg.LogLevel.Valid {
		c.LogLevel = cfg.LogLevel
	}
	return c
}

// Consolidate - layers file, env and cli configs over the defaults. The
// browser selection is validated when a page is built, not here.
func Consolidate(fileConf, envConf, cliConf Config) (Config, error) {
	conf := Default().Apply(fileConf).Apply(envConf).Apply(cliConf)
	if _, err := logrus.ParseLevel(conf.LogLevel.String); err != nil {
		return conf, fmt.Errorf("invalid log level: %w", err)
	}
	return conf, nil
}

type fileFindConfig struct {
	TimeoutMs       *int64  `yaml:"timeoutMs"`
	WaitBeVisible   *bool   `yaml:"waitBeVisible"`
	WaitBeEnabled   *bool   `yaml:"waitBeEnabled"`
	WaitBeEnabledMs *int64  `yaml:"waitBeEnabledMs"`
	ScreenshotName  *string `yaml:"screenshotName"`
	Message         *string `yaml:"message"`
	MustFind        *bool   `yaml:"mustFind"`
}

// fileConfig mirrors Config with pointers, so absent keys stay unset.
type fileConfig struct {
	Browser      *string               `yaml:"browser"`
	Backend      *string               `yaml:"backend"`
	BrowserArgs  []string              `yaml:"browserArgs"`
	Capabilities []entities.Capability `yaml:"browserCapability"`
	Resolution   entities.Resolution   `yaml:"resolution"`
	RemoteURL    *string               `yaml:"remoteUrl"`
	DriverPath   *string               `yaml:"driverPath"`
	DriverPort   *int64                `yaml:"driverPort"`
	LogLevel     *string               `yaml:"logLevel"`
	FindConfig   struct {
		DataTestAttr  *string `yaml:"dataTestAttr"`
		Screenshot    *bool   `yaml:"screenshot"`
		ScreenshotDir *string `yaml:"screenshotDir"`
	} `yaml:"findConfig"`
	FindDefaults fileFindConfig `yaml:"findDefaults"`
}

func (f fileConfig) config() Config {
	return Config{
		LogLevel: null.StringFromPtr(f.LogLevel),
		Page: entities.PageConfig{
			Browser:      null.StringFromPtr(f.Browser),
			Backend:      null.StringFromPtr(f.Backend),
			BrowserArgs:  f.BrowserArgs,
			Capabilities: f.Capabilities,
			Resolution:   f.Resolution,
			RemoteURL:    null.StringFromPtr(f.RemoteURL),
			DriverPath:   null.StringFromPtr(f.DriverPath),
			DriverPort:   null.IntFromPtr(f.DriverPort),
			FindConfig: entities.PageFindConfig{
				DataTestAttr:  null.StringFromPtr(f.FindConfig.DataTestAttr),
				Screenshot:    null.BoolFromPtr(f.FindConfig.Screenshot),
				ScreenshotDir: null.StringFromPtr(f.FindConfig.ScreenshotDir),
			},
			FindDefaults: entities.FindConfig{
				TimeoutMs:       null.IntFromPtr(f.FindDefaults.TimeoutMs),
				WaitBeVisible:   null.BoolFromPtr(f.FindDefaults.WaitBeVisible),
				WaitBeEnabled:   null.BoolFromPtr(f.FindDefaults.WaitBeEnabled),
				WaitBeEnabledMs: null.IntFromPtr(f.FindDefaults.WaitBeEnabledMs),
				ScreenshotName:  null.StringFromPtr(f.FindDefaults.ScreenshotName),
				Message:         null.StringFromPtr(f.FindDefaults.Message),
				MustFind:        null.BoolFromPtr(f.FindDefaults.MustFind),
			},
		},
	}
}

// ReadFile - reads a YAML config file. An empty path reads DefaultFile when
// it exists; a named file must exist.
func ReadFile(fs afero.Fs, path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return f.config(), nil
}

// envConfig holds every SELENIUM_PAGE_* variable.
type envConfig struct {
	Browser         null.String `envconfig:"SELENIUM_PAGE_BROWSER"`
	Backend         null.String `envconfig:"SELENIUM_PAGE_BACKEND"`
	BrowserArgs     []string    `envconfig:"SELENIUM_PAGE_BROWSER_ARGS"`
	Capabilities    []string    `envconfig:"SELENIUM_PAGE_CAPABILITIES"`
	Resolution      null.String `envconfig:"SELENIUM_PAGE_RESOLUTION"`
	RemoteURL       null.String `envconfig:"SELENIUM_PAGE_REMOTE_URL"`
	DriverPath      null.String `envconfig:"SELENIUM_PAGE_DRIVER_PATH"`
	DriverPort      null.Int    `envconfig:"SELENIUM_PAGE_DRIVER_PORT"`
	DataTestAttr    null.String `envconfig:"SELENIUM_PAGE_DATA_TEST_ATTR"`
	Screenshot      null.Bool   `envconfig:"SELENIUM_PAGE_SCREENSHOT"`
	ScreenshotDir   null.String `envconfig:"SELENIUM_PAGE_SCREENSHOT_DIR"`
	TimeoutMs       null.Int    `envconfig:"SELENIUM_PAGE_TIMEOUT_MS"`
	WaitBeVisible   null.Bool   `envconfig:"SELENIUM_PAGE_WAIT_VISIBLE"`
	WaitBeEnabled   null.Bool   `envconfig:"SELENIUM_PAGE_WAIT_ENABLED"`
	WaitBeEnabledMs null.Int    `envconfig:"SELENIUM_PAGE_WAIT_ENABLED_MS"`
	MustFind        null.Bool   `envconfig:"SELENIUM_PAGE_MUST_FIND"`
	LogLevel        null.String `envconfig:"SELENIUM_PAGE_LOG_LEVEL"`
}

// ReadEnv - decodes the SELENIUM_PAGE_* variables found through lookup
func ReadEnv(lookup func(string) (string, bool)) (Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env, lookup); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	conf := Config{
		LogLevel: env.LogLevel,
		Page: entities.PageConfig{
			Browser:     env.Browser,
			Backend:     env.Backend,
			BrowserArgs: trimAll(env.BrowserArgs),
			RemoteURL:   env.RemoteURL,
			DriverPath:  env.DriverPath,
			DriverPort:  env.DriverPort,
			FindConfig: entities.PageFindConfig{
				DataTestAttr:  env.DataTestAttr,
				Screenshot:    env.Screenshot,
				ScreenshotDir: env.ScreenshotDir,
			},
			FindDefaults: entities.FindConfig{
				TimeoutMs:       env.TimeoutMs,
				WaitBeVisible:   env.WaitBeVisible,
				WaitBeEnabled:   env.WaitBeEnabled,
				WaitBeEnabledMs: env.WaitBeEnabledMs,
				MustFind:        env.MustFind,
			},
		},
	}

	caps, err := ParseCapabilities(trimAll(env.Capabilities))
	if err != nil {
		return Config{}, err
	}
	conf.Page.Capabilities = caps

	if env.Resolution.Valid && env.Resolution.String != "" {
		res, err := entities.ParseResolution(env.Resolution.String)
		if err != nil {
			return Config{}, err
		}
		conf.Page.Resolution = res
	}
	return conf, nil
}

// ParseCapabilities - parses a list of prop=value capabilities
func ParseCapabilities(raw []string) ([]entities.Capability, error) {
	var caps []entities.Capability
	for _, s := range raw {
		c, err := entities.ParseCapability(s)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
