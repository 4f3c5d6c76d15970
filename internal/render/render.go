// Package render formats listings and lookups as terminal tables.
package render

import (
	"fmt"
	"strconv"

	"lbstats/internal/export"
	"lbstats/lib/scrapers/letterboxd"
	"lbstats/lib/scrapers/tmdb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// Films renders an export listing. Runtime and rating columns only
// appear when at least one row carries a value for them.
func Films(films []export.Film) string {
	hasRating := false
	hasRuntime := false
	for _, f := range films {
		if f.Rating != nil {
			hasRating = true
		}
		if f.Runtime != nil {
			hasRuntime = true
		}
	}

	headers := []string{"Date", "Name", "Year"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight}
	if hasRating {
		headers = append(headers, "Rating")
		aligns = append(aligns, alignRight)
	}
	if hasRuntime {
		headers = append(headers, "Runtime")
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(films))
	for _, f := range films {
		date := ""
		if !f.Date.IsZero() {
			date = f.Date.Format("2006-01-02")
		}
		row := []string{date, f.Name, strconv.Itoa(f.Year)}
		if hasRating {
			rating := ""
			if f.Rating != nil {
				rating = strconv.FormatFloat(*f.Rating, 'g', -1, 64)
			}
			row = append(row, rating)
		}
		if hasRuntime {
			runtime := ""
			if f.Runtime != nil {
				runtime = fmt.Sprintf("%dm", *f.Runtime)
			}
			row = append(row, runtime)
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

// SearchResults renders title search matches.
func SearchResults(results []letterboxd.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Title, r.Year, r.Director, r.Slug()})
	}
	return renderTable(
		[]string{"Title", "Year", "Director", "Slug"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// Metadata renders one film's user state.
func Metadata(slug string, meta letterboxd.FilmUserMetadata) string {
	rating := "unrated"
	if meta.Rating != nil {
		rating = strconv.Itoa(*meta.Rating)
	}
	rows := [][]string{
		{"Watched", strconv.FormatBool(meta.Watched)},
		{"Liked", strconv.FormatBool(meta.Liked)},
		{"Watchlisted", strconv.FormatBool(meta.Watchlisted)},
		{"Rating", rating},
	}
	return renderTable([]string{slug, ""}, rows, []columnAlignment{alignLeft, alignLeft})
}

// MovieDetails renders a TMDB lookup. posterColumns bounds the width
// of the detail pane; zero or less hides the poster row entirely.
func MovieDetails(movie tmdb.Movie, posterColumns int) string {
	wrap := posterColumns
	if wrap <= 0 || wrap > 72 {
		wrap = 72
	}
	rows := [][]string{
		{"Title", movie.Title},
		{"Released", movie.ReleaseDate},
		{"Runtime", fmt.Sprintf("%dm", movie.Runtime)},
		{"Overview", text.WrapSoft(movie.Overview, wrap)},
	}
	if poster := movie.PosterURL(); poster != "" && posterColumns > 0 {
		rows = append(rows, []string{"Poster", poster})
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}
