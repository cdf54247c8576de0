package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the configure command line without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := c.app.Params(cmd.Context(), sourceDir(cmd), buildOptions(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				if _, err := fmt.Fprintln(out, arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addBuildDirFlags(cmd)
	return cmd
}
