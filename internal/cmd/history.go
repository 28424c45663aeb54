package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/tui/history"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func newHistoryCmd(s *cliState) *cobra.Command {
	var (
		plain bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Review recent sessions",
		Long: `Display recent marquee sessions and the operations they recorded:
watchlist changes, searches and catalog fetches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := log.GetSessionSummaries(limit)
			if err != nil {
				return fmt.Errorf("failed to read sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet.")
				return nil
			}

			if plain {
				printSessions(out, summaries)
				return nil
			}
			model := history.New(history.NewTree(summaries))
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a table instead of opening the viewer")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to show (0 for all)")
	return cmd
}

func printSessions(w io.Writer, summaries []log.SessionSummary) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(
		headerColor.Sprint("WHEN"),
		headerColor.Sprint("COMMAND"),
		headerColor.Sprint("OPS"),
		headerColor.Sprint("FAILED"),
	)
	for _, sum := range summaries {
		meta := sum.Session.Metadata
		failed := fmt.Sprint(meta.FailedOps)
		if meta.FailedOps > 0 {
			failed = heartColor.Sprint(failed)
		}
		tbl.AddRow(sum.RelativeTime, strings.Join(meta.CommandArgs, " "), meta.TotalOps, failed)
	}
	fmt.Fprintln(w, tbl)
}
