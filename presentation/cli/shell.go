package cli

import (
	"github.com/spf13/cobra"

	"selenium_page/presentation/terminal"
)

func getCmdShell(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [url]",
		Short: "Drive a browser interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := gs.newPage(ctx, gs.conf.Page)
			if err != nil {
				return err
			}
			defer gs.quitPage(p)

			if len(args) == 1 {
				if err := p.Open(ctx, args[0]); err != nil {
					return err
				}
			}
			return terminal.NewTerminalInterface(p, gs.stdin, gs.stdout, gs.logger).Run(ctx)
		},
	}
}
