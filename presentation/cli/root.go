// Package cli is the selenium-page command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"selenium_page/application/page"
	"selenium_page/infrastructure/browser"
	"selenium_page/infrastructure/config"
)

var BannerColor = color.New(color.FgCyan)

// globalState is everything a command touches outside its own flags.
type globalState struct {
	ctx       context.Context
	fs        afero.Fs
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv func(string) (string, bool)
	logger    *logrus.Logger
	newDriver page.DriverFactory

	configPath string
	noColor    bool
	conf       config.Config
}

func newGlobalState(ctx context.Context) *globalState {
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	logger := logrus.New()
	logger.SetOutput(colorable.NewColorableStderr())
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		stdin:     os.Stdin,
		stdout:    colorable.NewColorableStdout(),
		stderr:    colorable.NewColorableStderr(),
		lookupEnv: os.LookupEnv,
		logger:    logger,
		newDriver: browser.NewDriver,
		noColor:   !stdoutTTY,
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	root := &cobra.Command{
		Use:   "selenium-page",
		Short: "locate elements in web pages with waits and readable failures",
		Long: BannerColor.Sprint("\nSelenium-Page") +
			"\n\nOpen a page in a real browser and locate elements the way page objects do:\n" +
			"waiting for presence, visibility and enabled state, with failures that name\n" +
			"the locator, carry a message and point at a screenshot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return gs.consolidate(cmd.Flags())
		},
	}

	root.PersistentFlags().AddFlagSet(rootFlagSet(gs))
	root.PersistentFlags().AddFlagSet(pageFlagSet())

	root.AddCommand(
		getCmdBrowsers(gs),
		getCmdFind(gs),
		getCmdWaitDisappear(gs),
		getCmdShell(gs),
		getCmdDemo(gs),
	)
	return root
}

// Execute - runs the command line tool and exits on failure
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gs := newGlobalState(ctx)
	if err := run(gs, os.Args[1:]); err != nil {
		cancel()
		os.Exit(1)
	}
}

func run(gs *globalState, args []string) error {
	root := newRootCommand(gs)
	root.SetArgs(args)
	root.SetIn(gs.stdin)
	root.SetOut(gs.stdout)
	root.SetErr(gs.stderr)

	err := root.ExecuteContext(gs.ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		gs.logger.Warn("Interrupted")
		return err
	}
	if gs.logger.IsLevelEnabled(logrus.DebugLevel) {
		errColor(gs).Fprintf(gs.stderr, "%+v\n", err)
	} else {
		errColor(gs).Fprintf(gs.stderr, "%v\n", err)
	}
	return err
}

func errColor(gs *globalState) *color.Color {
	return getColor(gs.noColor, color.FgRed)
}

// getColor - returns a color that prints plain text when noColor is set
func getColor(noColor bool, attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	if noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

func fprintf(w io.Writer, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(w, format, a...)
}
