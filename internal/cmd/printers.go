package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var (
	titleColor  = color.New(color.Bold, color.Underline)
	headerColor = color.New(color.Bold)
	faintColor  = color.New(color.Faint)
	heartColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
)

const maxTitleWidth = 48

func printTitle(w io.Writer, title string, info core.PageInfo) {
	_, _ = titleColor.Fprint(w, title)
	if info.TotalPages > 0 {
		_, _ = faintColor.Fprintf(w, "  page %d/%d", info.Page, info.TotalPages)
	}
	_, _ = fmt.Fprintln(w)
}

// printItems renders items as a table. saved marks watchlisted rows and may
// be nil.
func printItems(w io.Writer, items []media.Item, saved func(int) bool) {
	if len(items) == 0 {
		_, _ = faintColor.Fprintln(w, "  none")
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = maxTitleWidth
	tbl.Separator = "  "
	tbl.AddRow(
		headerColor.Sprint("ID"),
		headerColor.Sprint("TYPE"),
		headerColor.Sprint("TITLE"),
		headerColor.Sprint("YEAR"),
		headerColor.Sprint("RATING"),
		headerColor.Sprint("GENRE"),
	)
	for _, it := range items {
		title := it.DisplayTitle()
		if saved != nil && saved(it.ID) {
			title = heartColor.Sprint("❤ ") + title
		}
		tbl.AddRow(it.ID, kindLabel(it), title, it.Year(), it.RatingLabel(), media.PrimaryGenre(it))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func kindLabel(it media.Item) string {
	switch {
	case it.IsTV():
		return "tv"
	case it.Kind == media.KindPerson:
		return "person"
	default:
		return "movie"
	}
}

func printDetails(w io.Writer, d *provider.Details) {
	heading := d.Title
	if d.Year != "" {
		heading += " (" + d.Year + ")"
	}
	_, _ = titleColor.Fprintln(w, heading)
	if d.Tagline != "" {
		_, _ = faintColor.Fprintln(w, d.Tagline)
	}

	tbl := uitable.New()
	tbl.Wrap = true
	tbl.MaxColWidth = 72
	row := func(label, value string) {
		if value != "" {
			tbl.AddRow(headerColor.Sprint(label+":"), value)
		}
	}
	row("Type", string(d.Kind))
	if d.Runtime != "?" && d.Runtime != "" {
		row("Runtime", d.Runtime+" min")
	}
	if d.Seasons > 0 {
		row("Seasons", fmt.Sprint(d.Seasons))
	}
	row("Genres", strings.Join(d.Genres, ", "))
	row("Director", d.Director)
	row("Cast", strings.Join(d.Cast, ", "))
	row("IMDb", d.ImdbRating)
	row("Homepage", d.Homepage)
	row("Overview", d.Overview)
	_, _ = fmt.Fprintln(w, tbl)
}

// itemFromDetails builds the watchlist entry for a title added by id.
func itemFromDetails(d *provider.Details) media.Item {
	it := media.Item{ID: d.ID, Kind: d.Kind, Overview: d.Overview}
	if d.Kind == media.KindTV {
		it.Name = d.Title
		it.FirstAirDate = d.Year
	} else {
		it.Title = d.Title
		it.ReleaseDate = d.Year
	}
	for _, g := range d.Genres {
		if id, ok := media.GenreID(g); ok {
			it.GenreIDs = append(it.GenreIDs, id)
		}
	}
	return it
}
