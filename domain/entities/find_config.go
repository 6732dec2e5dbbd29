package entities

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

// FindConfig tunes a single locate call. Unset fields take the value of the
// config it is applied over.
type FindConfig struct {
	TimeoutMs       null.Int    `json:"timeoutMs"`
	WaitBeVisible   null.Bool   `json:"waitBeVisible"`
	WaitBeEnabled   null.Bool   `json:"waitBeEnabled"`
	WaitBeEnabledMs null.Int    `json:"waitBeEnabledMs"`
	ScreenshotName  null.String `json:"screenshotName"`
	Message         null.String `json:"message"`
	MustFind        null.Bool   `json:"mustFind"`
}

// DefaultFindConfig - returns the find config every call is merged over
func DefaultFindConfig() FindConfig {
	return FindConfig{
		TimeoutMs:       null.IntFrom(2000),
		WaitBeVisible:   null.BoolFrom(true),
		WaitBeEnabled:   null.BoolFrom(true),
		WaitBeEnabledMs: null.IntFrom(2000),
		ScreenshotName:  null.StringFrom(""),
		Message:         null.StringFrom(""),
		MustFind:        null.BoolFrom(true),
	}
}

// Msg - shorthand for a find config that only carries a failure message
func Msg(message string) FindConfig {
	return FindConfig{Message: null.StringFrom(message)}
}

// Apply returns c with every field that is set in cfg overwritten.
func (c FindConfig) Apply(cfg FindConfig) FindConfig {
	if cfg.TimeoutMs.Valid {
		c.TimeoutMs = cfg.TimeoutMs
	}
	if cfg.WaitBeVisible.Valid {
		c.WaitBeVisible = cfg.WaitBeVisible
	}
	if cfg.WaitBeEnabled.Valid {
		c.WaitBeEnabled = cfg.WaitBeEnabled
	}
	if cfg.WaitBeEnabledMs.Valid {
		c.WaitBeEnabledMs = cfg.WaitBeEnabledMs
	}
	if cfg.ScreenshotName.Valid {
		c.ScreenshotName = cfg.ScreenshotName
	}
	if cfg.Message.Valid {
		c.Message = cfg.Message
	}
	if cfg.MustFind.Valid {
		c.MustFind = cfg.MustFind
	}
	return c
}

// Merge fills the unset fields of candidate from base.
func Merge(candidate, base FindConfig) FindConfig {
	return base.Apply(candidate)
}

// Timeout - presence and visibility wait bound
func (c FindConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs.Int64) * time.Millisecond
}

// EnabledTimeout - enabled-state wait bound
func (c FindConfig) EnabledTimeout() time.Duration {
	return time.Duration(c.WaitBeEnabledMs.Int64) * time.Millisecond
}

// PageFindConfig holds the find settings shared by every call of a page.
type PageFindConfig struct {
	DataTestAttr  null.String `json:"dataTestAttr"`
	Screenshot    null.Bool   `json:"screenshot"`
	ScreenshotDir null.String `json:"screenshotDir"`
}

// DefaultPageFindConfig - returns the page find config defaults
func DefaultPageFindConfig() PageFindConfig {
	return PageFindConfig{
		DataTestAttr:  null.StringFrom(DefaultDataTestAttr),
		Screenshot:    null.BoolFrom(true),
		ScreenshotDir: null.StringFrom("screenshot"),
	}
}

// Apply returns c with every field that is set in cfg overwritten.
func (c PageFindConfig) Apply(cfg PageFindConfig) PageFindConfig {
	if cfg.DataTestAttr.Valid {
		c.DataTestAttr = cfg.DataTestAttr
	}
	if cfg.Screenshot.Valid {
		c.Screenshot = cfg.Screenshot
	}
	if cfg.ScreenshotDir.Valid {
		c.ScreenshotDir = cfg.ScreenshotDir
	}
	return c
}
