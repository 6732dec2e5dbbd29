package page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-stack/stack"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"selenium_page/application/finder"
	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
	"selenium_page/infrastructure/storage"
)

func init() {
	finder.HidePackage(stack.Caller(0))
}

// State of a page's window.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// DriverFactory starts a driver session for a page config.
type DriverFactory func(ctx context.Context, cfg entities.PageConfig, logger *logrus.Logger) (interfaces.Driver, error)

// Option customizes page construction.
type Option func(*Page)

// WithDriver - uses an existing session; browser selection is skipped
func WithDriver(d interfaces.Driver) Option {
	return func(p *Page) { p.driver = d }
}

// WithDriverFactory - sets how a session is started when none is supplied
func WithDriverFactory(f DriverFactory) Option {
	return func(p *Page) { p.factory = f }
}

// WithScreenshotStore - sets where failure screenshots go
func WithScreenshotStore(s interfaces.ScreenshotStore) Option {
	return func(p *Page) { p.store = s }
}

// WithFs - sets the filesystem the default screenshot store writes to
func WithFs(fs afero.Fs) Option {
	return func(p *Page) { p.fs = fs }
}

// WithLogger - sets the page logger
func WithLogger(l *logrus.Logger) Option {
	return func(p *Page) { p.logger = l }
}

// Page owns a driver session and the locate helpers bound to it. Site pages
// hold one and add their own composite actions.
type Page struct {
	cfg     entities.PageConfig
	driver  interfaces.Driver
	factory DriverFactory
	store   interfaces.ScreenshotStore
	fs      afero.Fs
	logger  *logrus.Logger
	finder  *finder.Finder

	mu    sync.Mutex
	state State
	err   error
}

var _ interfaces.Page = (*Page)(nil)

// New - builds a page for cfg, merged over the defaults.
//
// The returned page is never nil. When construction fails the failure is
// logged and returned, and the page stays unusable: every operation returns
// an error wrapping entities.ErrPageUnusable and the construction error.
func New(ctx context.Context, cfg entities.PageConfig, opts ...Option) (*Page, error) {
	p := &Page{cfg: entities.DefaultPageConfig().Apply(cfg)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logrus.StandardLogger()
	}

	if err := p.init(ctx); err != nil {
		p.err = err
		p.logger.Errorf("  Page > Browser: %q. Failure: %v", p.cfg.Browser.String, err)
		return p, err
	}

	if p.store == nil && p.cfg.FindConfig.Screenshot.Bool {
		if p.fs == nil {
			p.fs = afero.NewOsFs()
		}
		p.store = storage.NewScreenshotStore(p.fs, p.cfg.FindConfig.ScreenshotDir.String)
	}
	p.finder = finder.NewFinder(p.driver, p.store, p.cfg.FindConfig, p.cfg.FindDefaults, p.logger)
	p.logger.Infof("  Page > Browser: %q. Resolution: %s.", p.cfg.Browser.String, p.cfg.Resolution)
	return p, nil
}

func (p *Page) init(ctx context.Context) error {
	if p.driver != nil {
		return nil
	}
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if p.factory == nil {
		return errors.New("no driver session and no driver factory")
	}
	d, err := p.factory(ctx, p.cfg, p.logger)
	if err != nil {
		return fmt.Errorf("failed to start driver: %w", err)
	}
	p.driver = d
	return nil
}

// Err returns the construction error, if any.
func (p *Page) Err() error {
	return p.err
}

func (p *Page) usable() error {
	if p.err != nil {
		return fmt.Errorf("%w: %w", entities.ErrPageUnusable, p.err)
	}
	return nil
}

// Config returns the merged page config.
func (p *Page) Config() entities.PageConfig {
	return p.cfg
}

// State returns whether the window is open.
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Driver returns the underlying session; nil for an unusable page.
func (p *Page) Driver() interfaces.Driver {
	return p.driver
}

// Open - sizes the window (the page resolution unless one is given), then
// navigates. Opening an open page navigates again.
func (p *Page) Open(ctx context.Context, url string, resolution ...entities.Resolution) error {
	if err := p.usable(); err != nil {
		return err
	}
	res := p.cfg.Resolution
	if len(resolution) > 0 && !resolution[0].IsZero() {
		res = resolution[0]
		if res != p.cfg.Resolution {
			p.logger.Infof("  Page > Resolution: %s", res)
		}
	}

	var err error
	if res.Maximize {
		err = p.driver.MaximizeWindow(ctx)
	} else {
		err = p.driver.ResizeWindow(ctx, res.Width, res.Height)
	}
	if err != nil {
		return fmt.Errorf("failed to set window size %s: %w", res, err)
	}
	if err := p.driver.Get(ctx, url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	p.mu.Lock()
	p.state = StateOpen
	p.mu.Unlock()
	return nil
}

// Close - closes the browser window
func (p *Page) Close(ctx context.Context) error {
	if err := p.usable(); err != nil {
		return err
	}
	if err := p.driver.CloseWindow(ctx); err != nil {
		return fmt.Errorf("failed to close window: %w", err)
	}
	p.mu.Lock()
	p.state = StateClosed
	p.mu.Unlock()
	return nil
}

// Quit - ends the driver session
func (p *Page) Quit() error {
	if p.driver == nil {
		return nil
	}
	var err error
	if p.State() == StateOpen && p.driver.Active() {
		err = multierr.Append(err, p.driver.CloseWindow(context.Background()))
	}
	err = multierr.Append(err, p.driver.Quit())
	p.mu.Lock()
	p.state = StateClosed
	p.mu.Unlock()
	return err
}

// Find - see finder.Finder.Find
func (p *Page) Find(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) (entities.Optional[interfaces.Element], error) {
	if err := p.usable(); err != nil {
		return entities.None[interfaces.Element](), err
	}
	return p.finder.Find(ctx, by, cfg...)
}

// FindAll - see finder.Finder.FindAll
func (p *Page) FindAll(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) (entities.Optional[[]interfaces.Element], error) {
	if err := p.usable(); err != nil {
		return entities.None[[]interfaces.Element](), err
	}
	return p.finder.FindAll(ctx, by, cfg...)
}

// WaitDisappear - see finder.Finder.WaitDisappear
func (p *Page) WaitDisappear(ctx context.Context, by entities.Locator, cfg ...entities.FindConfig) error {
	if err := p.usable(); err != nil {
		return err
	}
	return p.finder.WaitDisappear(ctx, by, cfg...)
}

// SwitchToFrame - see finder.Finder.SwitchToFrame
func (p *Page) SwitchToFrame(ctx context.Context, frame interfaces.Frame) error {
	if err := p.usable(); err != nil {
		return err
	}
	return p.finder.SwitchToFrame(ctx, frame)
}

// SwitchToDefault - see finder.Finder.SwitchToDefault
func (p *Page) SwitchToDefault(ctx context.Context) error {
	if err := p.usable(); err != nil {
		return err
	}
	return p.finder.SwitchToDefault(ctx)
}

// DataTest - builds the custom attribute locator for value
func (p *Page) DataTest(value string) entities.Locator {
	return entities.ByAttr(p.cfg.FindConfig.DataTestAttr.String, value)
}
