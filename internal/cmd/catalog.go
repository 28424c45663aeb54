package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/spf13/cobra"
)

func newListCmd(s *cliState) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list <category>",
		Short: "List a catalog category",
		Long: `List one page of a catalog category.

Categories: popular, trendingShows, newMovies, newShows. Route names such as
trending-movies or new-shows are accepted too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			a, err := s.open(true)
			if err != nil {
				return err
			}
			defer a.Close()

			kind := core.FetchKind(category)
			if err := a.catalog.FetchCategory(cmd.Context(), kind, page); err != nil {
				return catalogFailure("list", err)
			}
			state := a.catalog.Snapshot()
			view := core.SelectView(core.RouteHome, category, state)
			printTitle(cmd.OutOrStdout(), view.Title, state.ListPages[core.SlotFor(kind)])
			printItems(cmd.OutOrStdout(), view.Items, a.watchlist.Contains)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")
	return cmd
}

// parseCategory accepts a category name or a category route.
func parseCategory(s string) (core.Category, error) {
	for _, c := range core.Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	if r, err := core.ParseRoute(s); err == nil {
		if c, ok := core.CategoryForRoute(r); ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func newSearchCmd(s *cliState) *cobra.Command {
	var (
		page    int
		suggest bool
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search movies, shows and people",
		Long: `Search the catalog for movies, TV shows and people.

With --suggest the query is matched against the current trending movies
instead, the same list the browser offers while typing.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			a, err := s.open(true)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if suggest {
				if err := a.catalog.FetchCategory(cmd.Context(), provider.PopularMovies, 1); err != nil {
					return catalogFailure("suggest", err)
				}
				printTitle(out, fmt.Sprintf("SUGGESTIONS FOR %q", strings.ToUpper(query)), core.PageInfo{})
				printItems(out, a.catalog.Suggestions(query, core.SuggestionLimit), a.watchlist.Contains)
				return nil
			}

			if err := a.catalog.Search(cmd.Context(), query, page); err != nil {
				return catalogFailure("search", err)
			}
			state := a.catalog.Snapshot()
			view := core.SelectView(core.RouteSearch, core.CategoryPopular, state)
			printTitle(out, view.Title, core.PageInfo{Page: state.CurrentPage, TotalPages: state.TotalPages})
			printItems(out, view.Items, a.watchlist.Contains)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Print suggestions from trending movies")
	return cmd
}

func newDetailsCmd(s *cliState) *cobra.Command {
	var tv bool
	cmd := &cobra.Command{
		Use:   "details <id>",
		Short: "Show cast, crew and links for a title",
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

			d, err := lookupDetails(cmd, a, id, tv)
			if err != nil {
				return err
			}
			printDetails(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tv, "tv", false, "Look up a TV show instead of a movie")
	return cmd
}

// lookupDetails loads details and, when OMDb is configured, the IMDb rating.
// A failed rating lookup is not an error.
func lookupDetails(cmd *cobra.Command, a *app, id int, tv bool) (*provider.Details, error) {
	kind := media.KindMovie
	if tv {
		kind = media.KindTV
	}
	d, err := a.details.Details(cmd.Context(), id, kind)
	if err != nil {
		return nil, catalogFailure("details", err)
	}
	if a.ratings != nil && d.ImdbID != "" && d.ImdbRating == "" {
		rating, err := a.ratings.Rating(cmd.Context(), d.ImdbID)
		if err != nil {
			faintColor.Fprintf(cmd.ErrOrStderr(), "IMDb rating unavailable: %v\n", err)
		} else {
			d.ImdbRating = rating
		}
	}
	return d, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
