package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/torchbuild/internal/app"
)

const labelWidth = 17

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the build directory state and the last configure record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.Status(cmd.Context(), sourceDir(cmd), buildOptions(cmd))
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), st)
		},
	}
	addBuildDirFlags(cmd)
	return cmd
}

type statusStyles struct {
	label lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	faint lipgloss.Style
}

// newStatusStyles binds the styles to w so colors are dropped when w is not a terminal.
func newStatusStyles(w io.Writer) statusStyles {
	r := lipgloss.NewRenderer(w)
	return statusStyles{
		label: r.NewStyle().Bold(true).Width(labelWidth),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("196")),
		faint: r.NewStyle().Faint(true),
	}
}

func printStatus(w io.Writer, st app.Status) error {
	s := newStatusStyles(w)
	row := func(label, value string) string {
		return s.label.Render(label+":") + value
	}
	presence := func(ok bool) string {
		if ok {
			return s.ok.Render("present")
		}
		return s.bad.Render("missing")
	}

	lines := []string{
		row("build dir", st.BuildDir),
		row("cache", presence(st.CachePresent)),
	}
	if st.ManifestNeeded {
		lines = append(lines, row("manifest", presence(st.Manifest)))
	}
	lines = append(lines, row("needs configure", strconv.FormatBool(st.NeedsConfigure)))

	if r := st.Record; r != nil {
		lines = append(lines,
			row("generator", r.Generator),
			row("build type", r.BuildType),
			row("parameters", strconv.Itoa(r.ParamCount)),
			row("fingerprint", r.Fingerprint),
			row("configured at", r.ConfiguredAt.Format(time.RFC3339)),
		)
	} else {
		lines = append(lines, row("last configure", s.faint.Render("none recorded")))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
