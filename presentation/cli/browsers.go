package cli

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"selenium_page/domain/entities"
	"selenium_page/infrastructure/browser"
)

func getCmdBrowsers(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "browsers",
		Short: "List the browsers each backend can drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bold := getColor(gs.noColor, color.Bold)
			for _, backend := range entities.Backends {
				browsers, err := browser.BackendBrowsers(backend)
				if err != nil {
					return err
				}
				marker := " "
				if backend == gs.conf.Page.Backend.String {
					marker = "*"
				}
				fprintf(gs.stdout, "%s %s: %s\n", marker, bold.Sprint(backend), strings.Join(browsers, ", "))
			}
			return nil
		},
	}
}
