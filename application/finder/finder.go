package finder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-stack/stack"
	"github.com/sirupsen/logrus"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

var errNoStore = errors.New("screenshot enabled but no store configured")

// Finder locates elements on a driver session, waiting for presence,
// visibility and enabled state, and turns failures into diagnosable errors.
type Finder struct {
	driver   interfaces.Driver
	store    interfaces.ScreenshotStore
	logger   *logrus.Logger
	page     entities.PageFindConfig
	defaults entities.FindConfig
	now      func() time.Time
}

// NewFinder - creates a finder bound to a driver session. With a nil store
// screenshots cannot be saved; failures then record why instead.
func NewFinder(driver interfaces.Driver, store interfaces.ScreenshotStore, page entities.PageFindConfig, defaults entities.FindConfig, logger *logrus.Logger) *Finder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Finder{
		driver:   driver,
		store:    store,
		logger:   logger,
		page:     entities.DefaultPageFindConfig().Apply(page),
		defaults: entities.DefaultFindConfig().Apply(defaults),
		now:      time.Now,
	}
}

// Config - merges per-call configs over the finder defaults, later ones winning
func (f *Finder) Config(cfgs ...entities.FindConfig) entities.FindConfig {
	cfg := f.defaults
	for _, c := range cfgs {
		cfg = cfg.Apply(c)
	}
	return cfg
}

// DataTest - builds the custom attribute locator for value
func (f *Finder) DataTest(value string) entities.Locator {
	return entities.ByAttr(f.page.DataTestAttr.String, value)
}

// Find - locates the first element matching by.
// With MustFind=false an element that never appears yields an absent result
// and no error; visibility and enabled-state failures are still errors.
func (f *Finder) Find(ctx context.Context, by entities.Locator, cfgs ...entities.FindConfig) (entities.Optional[interfaces.Element], error) {
	caller := callerStack()
	cfg := f.Config(cfgs...)

	el, err := f.findOne(ctx, by, cfg)
	if err != nil {
		if f.softMiss(by, cfg, err) {
			return entities.None[interfaces.Element](), nil
		}
		return entities.None[interfaces.Element](), f.diagnose(ctx, err, by, cfg, caller)
	}
	return entities.Some(el), nil
}

// FindAll - locates every element matching by, waiting on each of them
func (f *Finder) FindAll(ctx context.Context, by entities.Locator, cfgs ...entities.FindConfig) (entities.Optional[[]interfaces.Element], error) {
	caller := callerStack()
	cfg := f.Config(cfgs...)

	els, err := f.findAll(ctx, by, cfg)
	if err != nil {
		if f.softMiss(by, cfg, err) {
			return entities.None[[]interfaces.Element](), nil
		}
		return entities.None[[]interfaces.Element](), f.diagnose(ctx, err, by, cfg, caller)
	}
	return entities.Some(els), nil
}

func (f *Finder) findOne(ctx context.Context, by entities.Locator, cfg entities.FindConfig) (interfaces.Element, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}
	if err := f.waitLocated(ctx, by, cfg); err != nil {
		return nil, err
	}
	el, err := f.driver.FindElement(ctx, by)
	if err != nil {
		return nil, err
	}
	if cfg.WaitBeVisible.Bool {
		if err := f.waitVisible(ctx, el, cfg.Timeout()); err != nil {
			return nil, err
		}
	}
	if cfg.WaitBeEnabled.Bool {
		if err := f.waitEnabled(ctx, el, cfg.EnabledTimeout()); err != nil {
			return nil, err
		}
	}
	return el, nil
}

func (f *Finder) findAll(ctx context.Context, by entities.Locator, cfg entities.FindConfig) ([]interfaces.Element, error) {
	if err := by.Validate(); err != nil {
		return nil, err
	}
	if err := f.waitLocated(ctx, by, cfg); err != nil {
		return nil, err
	}
	els, err := f.driver.FindElements(ctx, by)
	if err != nil {
		return nil, err
	}
	if cfg.WaitBeVisible.Bool {
		for _, el := range els {
			if err := f.waitVisible(ctx, el, cfg.Timeout()); err != nil {
				return nil, err
			}
		}
	}
	if cfg.WaitBeEnabled.Bool {
		for _, el := range els {
			if err := f.waitEnabled(ctx, el, cfg.EnabledTimeout()); err != nil {
				return nil, err
			}
		}
	}
	return els, nil
}

func (f *Finder) softMiss(by entities.Locator, cfg entities.FindConfig, err error) bool {
	if cfg.MustFind.Bool || !errors.Is(err, entities.ErrNotLocated) {
		return false
	}
	f.logger.WithField("by", by.String()).Debug("Element not located, continuing without it")
	return true
}

// diagnose enriches a locate failure exactly once: locator, caller message,
// screenshot and the caller's stack.
func (f *Finder) diagnose(ctx context.Context, err error, by entities.Locator, cfg entities.FindConfig, caller stack.CallStack) error {
	fe := &entities.FindError{
		Err:     err,
		Locator: by,
		Message: cfg.Message.String,
		Stack:   caller,
	}
	var wf *waitFailure
	if errors.As(err, &wf) {
		fe.Kind = wf.kind
	}

	if f.page.Screenshot.Bool && f.driver.Active() {
		name := cfg.ScreenshotName.String
		if name == "" {
			name = strconv.FormatInt(f.now().UnixMilli(), 10)
		}
		path, serr := f.screenshot(ctx, name)
		if serr != nil {
			f.logger.WithError(serr).Warn("Failed to capture failure screenshot")
			fe.ScreenshotErr = serr
		} else {
			fe.Screenshot = path
		}
	}

	f.logger.WithFields(logrus.Fields{
		"by":         by.String(),
		"message":    fe.Message,
		"screenshot": fe.Screenshot,
	}).Debugf("Locate failed: %v", err)
	return fe
}

func (f *Finder) screenshot(ctx context.Context, name string) (string, error) {
	if f.store == nil {
		return "", errNoStore
	}
	png, err := f.driver.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}
	path, err := f.store.Save(name, png)
	if err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}
