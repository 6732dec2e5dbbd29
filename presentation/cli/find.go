package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"selenium_page/application/page"
	"selenium_page/domain/interfaces"
)

// quitPage - ends the session, logging rather than returning a failure
func (gs *globalState) quitPage(p *page.Page) {
	if err := p.Quit(); err != nil {
		gs.logger.WithError(err).Warn("Failed to quit browser session")
	}
}

func getCmdFind(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <url>",
		Short: "Open a page and locate elements",
		Example: `  selenium-page find https://example.com --css h1
  selenium-page find https://example.com --xpath //a --all
  selenium-page find https://example.com --data-test login --must-find=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			by, err := getLocator(flags, gs.conf.Page.FindConfig.DataTestAttr.String)
			if err != nil {
				return err
			}
			res, err := withResolution(flags)
			if err != nil {
				return err
			}
			all, err := flags.GetBool("all")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, err := gs.newPage(ctx, gs.conf.Page)
			if err != nil {
				return err
			}
			defer gs.quitPage(p)

			if err := p.Open(ctx, args[0], res...); err != nil {
				return err
			}

			green := getColor(gs.noColor, color.FgGreen)
			cfg := getFindConfig(flags)
			var els []interfaces.Element
			if all {
				found, err := p.FindAll(ctx, by, cfg)
				if err != nil {
					return err
				}
				els = found.OrElse(nil)
			} else {
				found, err := p.Find(ctx, by, cfg)
				if err != nil {
					return err
				}
				if el, ok := found.Get(); ok {
					els = append(els, el)
				}
			}

			if len(els) == 0 {
				fprintf(gs.stdout, "%s\n", getColor(gs.noColor, color.FgYellow).Sprintf("%s not found", by))
				return nil
			}
			for i, el := range els {
				text, err := el.Text()
				if err != nil {
					return err
				}
				fprintf(gs.stdout, "%s %s\n", green.Sprintf("[%d]", i), text)
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(locatorFlagSet())
	cmd.Flags().AddFlagSet(findFlagSet())
	cmd.Flags().AddFlagSet(openFlagSet())
	cmd.Flags().Bool("all", false, "locate every matching element")
	return cmd
}

func getCmdWaitDisappear(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait-disappear <url>",
		Short: "Open a page and wait until an element is gone or hidden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			by, err := getLocator(flags, gs.conf.Page.FindConfig.DataTestAttr.String)
			if err != nil {
				return err
			}
			res, err := withResolution(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, err := gs.newPage(ctx, gs.conf.Page)
			if err != nil {
				return err
			}
			defer gs.quitPage(p)

			if err := p.Open(ctx, args[0], res...); err != nil {
				return err
			}
			if err := p.WaitDisappear(ctx, by, getFindConfig(flags)); err != nil {
				return err
			}
			fprintf(gs.stdout, "%s\n", getColor(gs.noColor, color.FgGreen).Sprintf("%s is gone", by))
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(locatorFlagSet())
	cmd.Flags().AddFlagSet(findFlagSet())
	cmd.Flags().AddFlagSet(openFlagSet())
	return cmd
}
