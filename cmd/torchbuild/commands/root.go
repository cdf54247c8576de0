// Package commands implements the CLI commands for torchbuild.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/torchbuild/internal/app"
	"go.trai.ch/torchbuild/internal/build"
	"go.trai.ch/torchbuild/internal/core/domain"
)

// CLI represents the command line interface for torchbuild.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "torchbuild",
		Short:         "Configure and build the native core of the tensor library",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("source-dir", "C", ".", "Project source directory")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		c.app.SetVerbose(verbose)
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newParamsCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

func sourceDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("source-dir")
	return dir
}

// addBuildDirFlags registers the flags shared by every command that resolves a build directory.
func addBuildDirFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("build-dir", "b", "", "Generator build directory (default \"build\" under the source directory)")
	cmd.Flags().String("version", "", "Version passed as TORCH_BUILD_VERSION")
	cmd.Flags().String("python-library", "", "Path to the Python shared library")
	cmd.Flags().String("python-include-dir", "", "Python headers directory")
	cmd.Flags().Bool("python", false, "Build the Python bindings and copy the generated proto stubs")
}

func buildOptions(cmd *cobra.Command) domain.BuildOptions {
	flags := cmd.Flags()
	opts := domain.BuildOptions{}
	opts.BuildDir, _ = flags.GetString("build-dir")
	opts.Version, _ = flags.GetString("version")
	opts.PythonLibrary, _ = flags.GetString("python-library")
	opts.PythonIncludeDir, _ = flags.GetString("python-include-dir")
	opts.BuildPython, _ = flags.GetBool("python")
	opts.BuildPythonSet = flags.Changed("python")
	return opts
}
