package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached bundles and entry records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, _ := cmd.Flags().GetBool("records")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Records: records,
			})
		},
	}

	cmd.Flags().BoolP("records", "r", false, "Remove only the persisted entry records, keeping bundles")

	return cmd
}
