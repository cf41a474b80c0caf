package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/legalia/legalia/internal/modes"
	"github.com/legalia/legalia/internal/ui"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the consultation modes",
	Long:  `Lists every consultation mode with its id, to be used with --mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printModes(cmd.OutOrStdout(), modes.Builtin())
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

// printModes writes the registry as a table, marking the default mode.
func printModes(out io.Writer, reg *modes.Registry) error {
	headerStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	mutedStyle := cellStyle.Foreground(ui.ColorTextMuted)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		Headers("ID", "MODE", "LENGTH", "FOCUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return mutedStyle
			default:
				return cellStyle
			}
		})

	for _, m := range reg.All() {
		id := m.ID
		if m.Default {
			id += " *"
		}
		t.Row(id, m.Label(), string(m.LengthPolicy), m.ResponseFocus)
	}

	if _, err := fmt.Fprintln(out, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "* default mode")
	return err
}
