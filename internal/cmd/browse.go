package cmd

import (
	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/tui/browse"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [route]",
		Short: "Open the interactive browser",
		Long: `Open the interactive browser.

The optional route picks the starting screen: home, trending-movies,
trending-shows, new-movies, new-shows, search or watchlist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			route, err := core.ParseRoute(arg)
			if err != nil {
				return err
			}
			a, err := s.open(true)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []browse.Option{
				browse.WithContext(cmd.Context()),
				browse.WithRoute(route),
				browse.WithDetails(a.details),
			}
			if a.ratings != nil {
				opts = append(opts, browse.WithRatings(a.ratings))
			}
			model := browse.New(a.catalog, a.watchlist, opts...)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}
