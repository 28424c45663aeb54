package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/spf13/cobra"
)

func newWatchlistCmd(s *cliState) *cobra.Command {
	var (
		genre  string
		search string
		sortBy string
		desc   bool
	)
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show and edit the watchlist",
		Long: `Show the saved watchlist, optionally filtered by primary genre and title
and sorted by rating or popularity. Sorting only affects this listing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(false)
			if err != nil {
				return err
			}
			defer a.Close()
			wl := a.watchlist

			if genre != "" {
				genres := wl.Genres()
				if !slices.Contains(genres, genre) {
					return fmt.Errorf("no saved titles in genre %q (have: %s)", genre, strings.Join(genres, ", "))
				}
			}
			wl.SetFilterGenre(genre)
			wl.SetSearchTerm(search)

			title := fmt.Sprintf("WATCHLIST (%d)", wl.Len())
			if sortBy != "" {
				field, err := core.ParseSortField(sortBy)
				if err != nil {
					return err
				}
				dir := core.Ascending
				if desc {
					dir = core.Descending
				}
				wl.SortBy(field, dir)
				title += fmt.Sprintf(" by %s %s", field, dir)
			}

			out := cmd.OutOrStdout()
			printTitle(out, title, core.PageInfo{})
			printItems(out, wl.Filtered(), nil)
			return nil
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "Only show titles whose primary genre matches")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show titles containing this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by rating or popularity")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")

	cmd.AddCommand(newWatchlistAddCmd(s), newWatchlistRemoveCmd(s))
	return cmd
}

func newWatchlistAddCmd(s *cliState) *cobra.Command {
	var tv bool
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Save a title by TMDB id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := s.open(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.watchlist.Contains(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d is already on your watchlist\n", id)
				return nil
			}
			d, err := lookupDetails(cmd, a, id, tv)
			if err != nil {
				return err
			}
			item := itemFromDetails(d)
			if _, err := a.watchlist.Add(item); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Added %s to your watchlist\n", item.DisplayTitle())
			return nil
		},
	}
	cmd.Flags().BoolVar(&tv, "tv", false, "The id is a TV show")
	return cmd
}

func newWatchlistRemoveCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a title from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := s.open(false)
			if err != nil {
				return err
			}
			defer a.Close()

			name := fmt.Sprint(id)
			for _, it := range a.watchlist.Items() {
				if it.ID == id {
					name = it.DisplayTitle()
				}
			}
			removed, err := a.watchlist.RemoveID(id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not on your watchlist\n", name)
				return nil
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Removed %s from your watchlist\n", name)
			return nil
		},
	}
}
