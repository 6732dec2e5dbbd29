package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"selenium_page/domain/entities"
	"selenium_page/infrastructure/config"
)

const dotEnvFile = ".env"

func rootFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&gs.configPath, "config", "c", "", "YAML config file (default "+config.DefaultFile+" when present)")
	flags.String("log-level", logrus.InfoLevel.String(), "log level: trace, debug, info, warn, error")
	flags.BoolVar(&gs.noColor, "no-color", gs.noColor, "disable colored output")
	return flags
}

func pageFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("browser", "b", entities.BrowserChrome, "browser: "+strings.Join(entities.Browsers, ", "))
	flags.String("backend", entities.BackendSelenium, "driver backend: "+strings.Join(entities.Backends, ", "))
	flags.StringArray("browser-arg", nil, "browser command line argument, repeatable")
	flags.StringArray("capability", nil, "session capability as `prop=value`, repeatable")
	flags.StringP("resolution", "r", "max", "window size: max, desktop, mobile or WxH")
	flags.String("remote-url", "", "WebDriver or DevTools endpoint to connect to instead of starting a browser")
	flags.String("driver-path", "", "driver (or browser, for rod) executable")
	flags.Int64("driver-port", 9515, "port for a locally started driver")
	flags.String("data-test-attr", entities.DefaultDataTestAttr, "attribute used by --data-test locators")
	flags.Bool("screenshot", true, "take a screenshot when a locate fails")
	flags.String("screenshot-dir", "screenshot", "where failure screenshots are written")
	flags.Int64("timeout-ms", 2000, "default presence and visibility wait, in milliseconds")
	flags.Bool("wait-visible", true, "wait for elements to be visible by default")
	flags.Bool("wait-enabled", true, "wait for elements to be enabled by default")
	flags.Int64("wait-enabled-ms", 2000, "default enabled-state wait, in milliseconds")
	return flags
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	if flags.Lookup(key) == nil {
		return null.Bool{}
	}
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}

func getNullInt64(flags *pflag.FlagSet, key string) null.Int {
	if flags.Lookup(key) == nil {
		return null.Int{}
	}
	v, err := flags.GetInt64(key)
	if err != nil {
		panic(err)
	}
	return null.NewInt(v, flags.Changed(key))
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	if flags.Lookup(key) == nil {
		return null.String{}
	}
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}

// getConfig - returns the config set on the command line; unchanged or
// undefined flags stay unset
func getConfig(flags *pflag.FlagSet) (config.Config, error) {
	conf := config.Config{
		LogLevel: getNullString(flags, "log-level"),
		Page: entities.PageConfig{
			Browser:    getNullString(flags, "browser"),
			Backend:    getNullString(flags, "backend"),
			RemoteURL:  getNullString(flags, "remote-url"),
			DriverPath: getNullString(flags, "driver-path"),
			DriverPort: getNullInt64(flags, "driver-port"),
			FindConfig: entities.PageFindConfig{
				DataTestAttr:  getNullString(flags, "data-test-attr"),
				Screenshot:    getNullBool(flags, "screenshot"),
				ScreenshotDir: getNullString(flags, "screenshot-dir"),
			},
			FindDefaults: entities.FindConfig{
				TimeoutMs:       getNullInt64(flags, "timeout-ms"),
				WaitBeVisible:   getNullBool(flags, "wait-visible"),
				WaitBeEnabled:   getNullBool(flags, "wait-enabled"),
				WaitBeEnabledMs: getNullInt64(flags, "wait-enabled-ms"),
			},
		},
	}

	if flags.Changed("browser-arg") {
		args, err := flags.GetStringArray("browser-arg")
		if err != nil {
			return conf, err
		}
		conf.Page.BrowserArgs = args
	}
	if flags.Changed("capability") {
		raw, err := flags.GetStringArray("capability")
		if err != nil {
			return conf, err
		}
		if conf.Page.Capabilities, err = config.ParseCapabilities(raw); err != nil {
			return conf, err
		}
	}
	if flags.Changed("resolution") {
		raw, err := flags.GetString("resolution")
		if err != nil {
			return conf, err
		}
		if conf.Page.Resolution, err = entities.ParseResolution(raw); err != nil {
			return conf, err
		}
	}
	return conf, nil
}

// dotEnvLookup - looks variables up in the environment first, then in .env
func (gs *globalState) dotEnvLookup() (func(string) (string, bool), error) {
	data, err := afero.ReadFile(gs.fs, dotEnvFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			gs.logger.Debug(".env file not found, using environment variables")
			return gs.lookupEnv, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dotEnvFile, err)
	}
	dotEnv, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", dotEnvFile, err)
	}
	return func(key string) (string, bool) {
		if v, ok := gs.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}, nil
}

// consolidate - builds gs.conf from file, env and flags, and applies the log level
func (gs *globalState) consolidate(flags *pflag.FlagSet) error {
	fileConf, err := config.ReadFile(gs.fs, gs.configPath)
	if err != nil {
		return err
	}
	lookup, err := gs.dotEnvLookup()
	if err != nil {
		return err
	}
	envConf, err := config.ReadEnv(lookup)
	if err != nil {
		return err
	}
	cliConf, err := getConfig(flags)
	if err != nil {
		return err
	}

	gs.conf, err = config.Consolidate(fileConf, envConf, cliConf)
	if err != nil {
		return err
	}
	level, _ := logrus.ParseLevel(gs.conf.LogLevel.String)
	gs.logger.SetLevel(level)
	return nil
}
