package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"selenium_page/application/page"
	"selenium_page/domain/entities"
)

// newPage - builds a page for cfg with the CLI's driver factory, filesystem
// and logger. The page is returned even when construction fails.
func (gs *globalState) newPage(ctx context.Context, cfg entities.PageConfig) (*page.Page, error) {
	return page.New(ctx, cfg,
		page.WithDriverFactory(gs.newDriver),
		page.WithFs(gs.fs),
		page.WithLogger(gs.logger),
	)
}

// locatorFlags names each locator flag and how it builds a locator.
var locatorFlags = []struct {
	name  string
	usage string
	build func(string) entities.Locator
}{
	{"css", "CSS selector", entities.ByCSS},
	{"xpath", "XPath expression", entities.ByXPath},
	{"id", "element id", entities.ByID},
	{"name", "name attribute", entities.ByName},
	{"class", "class name", entities.ByClassName},
	{"link-text", "exact link text", entities.ByLinkText},
	{"partial-link-text", "link text substring", entities.ByPartialLinkText},
	{"data-test", "value of the data-test attribute (see --data-test-attr)", nil},
}

func locatorFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	for _, lf := range locatorFlags {
		flags.String(lf.name, "", "locate by "+lf.usage)
	}
	return flags
}

// getLocator - returns the one locator set on the command line
func getLocator(flags *pflag.FlagSet, dataTestAttr string) (entities.Locator, error) {
	var (
		by  entities.Locator
		set []string
	)
	for _, lf := range locatorFlags {
		if !flags.Changed(lf.name) {
			continue
		}
		value, err := flags.GetString(lf.name)
		if err != nil {
			return by, err
		}
		set = append(set, "--"+lf.name)
		if lf.build == nil {
			by = entities.ByAttr(dataTestAttr, value)
		} else {
			by = lf.build(value)
		}
	}

	switch len(set) {
	case 0:
		return by, errors.New("a locator is required, e.g. --css or --xpath")
	case 1:
		return by, by.Validate()
	}
	return by, fmt.Errorf("only one locator may be given, got %s", strings.Join(set, ", "))
}

func findFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Int64("timeout", 0, "wait at most this many milliseconds (default: --timeout-ms)")
	flags.String("message", "", "message added to the failure")
	flags.String("screenshot-name", "", "file name (without .png) of the failure screenshot")
	flags.Bool("must-find", true, "fail when no element is located")
	flags.Bool("visible", true, "wait for the element to be visible")
	flags.Bool("enabled", true, "wait for the element to be enabled")
	return flags
}

// getFindConfig - returns the per-call find config set on the command line
func getFindConfig(flags *pflag.FlagSet) entities.FindConfig {
	return entities.FindConfig{
		TimeoutMs:      getNullInt64(flags, "timeout"),
		Message:        getNullString(flags, "message"),
		ScreenshotName: getNullString(flags, "screenshot-name"),
		MustFind:       getNullBool(flags, "must-find"),
		WaitBeVisible:  getNullBool(flags, "visible"),
		WaitBeEnabled:  getNullBool(flags, "enabled"),
	}
}

// withResolution - returns the resolution override for Page.Open, if any
func withResolution(flags *pflag.FlagSet) ([]entities.Resolution, error) {
	if !flags.Changed("open-resolution") {
		return nil, nil
	}
	raw, err := flags.GetString("open-resolution")
	if err != nil {
		return nil, err
	}
	res, err := entities.ParseResolution(raw)
	if err != nil {
		return nil, err
	}
	return []entities.Resolution{res}, nil
}

func openFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.String("open-resolution", "", "window size for this navigation only")
	return flags
}
