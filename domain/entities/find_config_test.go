package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"
)

func TestDefaultFindConfig(t *testing.T) {
	cfg := DefaultFindConfig()
	assert.Equal(t, null.IntFrom(2000), cfg.TimeoutMs)
	assert.Equal(t, null.BoolFrom(true), cfg.WaitBeVisible)
	assert.Equal(t, null.BoolFrom(true), cfg.WaitBeEnabled)
	assert.Equal(t, null.IntFrom(2000), cfg.WaitBeEnabledMs)
	assert.Equal(t, null.StringFrom(""), cfg.ScreenshotName)
	assert.Equal(t, null.StringFrom(""), cfg.Message)
	assert.Equal(t, null.BoolFrom(true), cfg.MustFind)
	assert.Equal(t, 2*time.Second, cfg.Timeout())
	assert.Equal(t, 2*time.Second, cfg.EnabledTimeout())
}

func TestMerge(t *testing.T) {
	base := DefaultFindConfig()

	t.Run("EmptyCandidate", func(t *testing.T) {
		assert.Equal(t, base, Merge(FindConfig{}, base))
	})

	t.Run("SetFieldsWin", func(t *testing.T) {
		candidate := FindConfig{
			TimeoutMs: null.IntFrom(50),
			Message:   null.StringFrom("Button 'I Agree' not found"),
			MustFind:  null.BoolFrom(false),
		}
		merged := Merge(candidate, base)
		assert.Equal(t, int64(50), merged.TimeoutMs.Int64)
		assert.Equal(t, "Button 'I Agree' not found", merged.Message.String)
		assert.False(t, merged.MustFind.Bool)
		assert.True(t, merged.MustFind.Valid)
		assert.Equal(t, base.WaitBeVisible, merged.WaitBeVisible)
		assert.Equal(t, base.WaitBeEnabledMs, merged.WaitBeEnabledMs)
	})

	t.Run("ExplicitZeroValuesWin", func(t *testing.T) {
		merged := Merge(FindConfig{
			WaitBeVisible: null.BoolFrom(false),
			TimeoutMs:     null.IntFrom(0),
		}, base)
		assert.False(t, merged.WaitBeVisible.Bool)
		assert.Equal(t, time.Duration(0), merged.Timeout())
	})

	t.Run("EveryFieldComesFromOneSide", func(t *testing.T) {
		candidate := FindConfig{
			WaitBeEnabled:  null.BoolFrom(false),
			ScreenshotName: null.StringFrom("t1"),
		}
		merged := Merge(candidate, base)
		assert.Equal(t, candidate.WaitBeEnabled, merged.WaitBeEnabled)
		assert.Equal(t, candidate.ScreenshotName, merged.ScreenshotName)
		assert.Equal(t, base.TimeoutMs, merged.TimeoutMs)
		assert.Equal(t, base.Message, merged.Message)
		assert.Equal(t, base.MustFind, merged.MustFind)
	})
}

func TestMsg(t *testing.T) {
	cfg := Msg("Input Search not found")
	assert.Equal(t, null.StringFrom("Input Search not found"), cfg.Message)
	assert.False(t, cfg.TimeoutMs.Valid)
	assert.False(t, cfg.MustFind.Valid)
}

func TestPageFindConfigApply(t *testing.T) {
	cfg := DefaultPageFindConfig().Apply(PageFindConfig{Screenshot: null.BoolFrom(false)})
	assert.Equal(t, "data-test", cfg.DataTestAttr.String)
	assert.False(t, cfg.Screenshot.Bool)
	assert.Equal(t, "screenshot", cfg.ScreenshotDir.String)
}
