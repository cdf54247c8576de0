package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Configure (when needed) and build the native core",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := buildOptions(cmd)
			opts.RerunCMake, _ = cmd.Flags().GetBool("rerun-cmake")
			opts.CMakeOnly, _ = cmd.Flags().GetBool("cmake-only")
			return c.app.Build(cmd.Context(), sourceDir(cmd), opts)
		},
	}
	addBuildDirFlags(cmd)
	cmd.Flags().BoolP("rerun-cmake", "f", false, "Delete the generator cache and force the configure step")
	cmd.Flags().Bool("cmake-only", false, "Stop after the configure step")
	return cmd
}
