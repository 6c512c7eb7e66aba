package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"golang.org/x/term"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the component dev server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			jsonLogs, _ := cmd.Flags().GetBool("json")

			// Piped output (CI, log collectors) gets JSON automatically
			if !term.IsTerminal(int(os.Stderr.Fd())) {
				jsonLogs = true
			}

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				Addr:     addr,
				JSONLogs: jsonLogs,
			})
		},
	}
	cmd.Flags().StringP("addr", "a", "", "Listen address (overrides kiln.yaml)")
	cmd.Flags().Bool("json", false, "Emit logs as JSON")
	return cmd
}
