package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/guregu/null.v3"

	"selenium_page/application/pages/google"
	"selenium_page/domain/entities"
)

// allBrowsers selects every supported browser in turn.
const allBrowsers = "all"

const defaultQuery = "selenium"

func getCmdDemo(gs *globalState) *cobra.Command {
	demo := &cobra.Command{
		Use:   "demo",
		Short: "Run the bundled page objects",
	}

	googleCmd := &cobra.Command{
		Use:   "google [query]",
		Short: "Search Google, accepting the consent dialog when it is shown",
		Long: "Search Google, accepting the consent dialog when it is shown.\n\n" +
			"With --browser all the search runs in every supported browser; a browser\n" +
			"that cannot be started is reported and the run goes on.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := defaultQuery
			if len(args) == 1 {
				query = args[0]
			}
			browsers := []string{gs.conf.Page.Browser.String}
			if gs.conf.Page.Browser.String == allBrowsers {
				browsers = entities.Browsers
			}
			results, err := cmd.Flags().GetInt("results")
			if err != nil {
				return err
			}
			url, err := cmd.Flags().GetString("url")
			if err != nil {
				return err
			}

			var errs error
			for _, b := range browsers {
				if err := gs.searchGoogle(cmd.Context(), b, url, query, results); err != nil {
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}
					fprintf(gs.stdout, "%s %s: %v\n", getColor(gs.noColor, color.FgRed).Sprint("✗"), b, err)
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", b, err))
				}
			}
			if errs != nil {
				return fmt.Errorf("%d of %d browsers failed", len(multierr.Errors(errs)), len(browsers))
			}
			return nil
		},
	}
	googleCmd.Flags().Int("results", 3, "how many results to print")
	googleCmd.Flags().String("url", google.URL, "Google home page")

	demo.AddCommand(googleCmd)
	return demo
}

func (gs *globalState) searchGoogle(ctx context.Context, browser, url, query string, results int) error {
	cfg := gs.conf.Page
	cfg.Browser = null.StringFrom(browser)

	p, err := gs.newPage(ctx, cfg)
	if err != nil {
		return err
	}
	defer gs.quitPage(p)

	g := google.New(p)
	if err := g.Open(ctx, url); err != nil {
		return err
	}
	if err := g.AcceptConsent(ctx); err != nil {
		return err
	}
	els, err := g.SearchFor(ctx, query)
	if err != nil {
		return err
	}
	texts, err := google.ResultTexts(els)
	if err != nil {
		return err
	}

	fprintf(gs.stdout, "%s %s: %d results for %q\n",
		getColor(gs.noColor, color.FgGreen).Sprint("✓"), browser, len(texts), query)
	for i, text := range texts {
		if i == results {
			break
		}
		title, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
		fprintf(gs.stdout, "    %d. %s\n", i+1, title)
	}
	return nil
}
