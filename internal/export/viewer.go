// Package export reads the CSV files from an extracted account export
// and prepares them for rendering.
package export

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind names one of the export's CSV files.
type Kind string

const (
	KindWatched   Kind = "watched"
	KindDiary     Kind = "diary"
	KindRatings   Kind = "ratings"
	KindWatchlist Kind = "watchlist"
)

// Kinds lists the supported export files in display order.
func Kinds() []Kind {
	return []Kind{KindWatched, KindDiary, KindRatings, KindWatchlist}
}

func (k Kind) filename() string {
	return string(k) + ".csv"
}

// Transient reports whether the export's URI column points at a
// per-event page instead of the film page itself.
func (k Kind) Transient() bool {
	return k == KindDiary
}

// Film is one row of an export file. Rating is nil for files without
// a rating column and for unrated rows; TMDBID and Runtime are nil
// until enrichment fills them in.
type Film struct {
	Date time.Time
	Name string
	Year int
	URI  string

	// diary only
	WatchedDate time.Time
	Rewatch     bool
	Tags        []string

	Rating  *float64
	TMDBID  *int64
	Runtime *int
}

// Load parses one export CSV from dir. Column order is taken from the
// header row, so files with and without the optional columns parse
// the same way.
func Load(dir string, kind Kind) ([]Film, error) {
	path := filepath.Join(dir, kind.filename())
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	films := make([]Film, 0, len(rows)-1)
	for _, row := range rows[1:] {
		film := Film{
			Name: field(row, "Name"),
			URI:  field(row, "Letterboxd URI"),
		}
		film.Date, _ = time.Parse("2006-01-02", field(row, "Date"))
		film.Year, _ = strconv.Atoi(field(row, "Year"))
		if raw := field(row, "Rating"); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err == nil {
				film.Rating = &rating
			}
		}
		film.WatchedDate, _ = time.Parse("2006-01-02", field(row, "Watched Date"))
		film.Rewatch = strings.EqualFold(field(row, "Rewatch"), "yes")
		if raw := field(row, "Tags"); raw != "" {
			film.Tags = strings.Split(raw, ", ")
		}
		films = append(films, film)
	}
	return films, nil
}

// SortColumn selects the ordering of a listing.
type SortColumn string

const (
	SortByDate   SortColumn = "date"
	SortByName   SortColumn = "name"
	SortByYear   SortColumn = "year"
	SortByRating SortColumn = "rating"
	// SortShuffle randomizes the listing, for picking something to
	// watch off the watchlist.
	SortShuffle SortColumn = "shuffle"
)

// Sort orders films in place.
func Sort(films []Film, column SortColumn, ascending bool) error {
	var less func(a, b Film) bool
	switch column {
	case SortByDate:
		less = func(a, b Film) bool { return a.Date.Before(b.Date) }
	case SortByName:
		less = func(a, b Film) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortByYear:
		less = func(a, b Film) bool { return a.Year < b.Year }
	case SortByRating:
		less = func(a, b Film) bool { return ratingOf(a) < ratingOf(b) }
	case SortShuffle:
		rand.Shuffle(len(films), func(i, j int) {
			films[i], films[j] = films[j], films[i]
		})
		return nil
	default:
		return fmt.Errorf("unknown sort column %q", column)
	}

	sort.SliceStable(films, func(i, j int) bool {
		if ascending {
			return less(films[i], films[j])
		}
		return less(films[j], films[i])
	})
	return nil
}

func ratingOf(f Film) float64 {
	if f.Rating == nil {
		return -1
	}
	return *f.Rating
}

// Limit truncates the listing to at most n rows; n <= 0 keeps all of
// them.
func Limit(films []Film, n int) []Film {
	if n <= 0 || n >= len(films) {
		return films
	}
	return films[:n]
}

// RatingMean averages the rated rows. The second return is false when
// nothing is rated.
func RatingMean(films []Film) (float64, bool) {
	sum := 0.0
	count := 0
	for _, f := range films {
		if f.Rating != nil {
			sum += *f.Rating
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// TimeWeightedRatingMean averages ratings weighted by runtime, so a
// three hour masterpiece counts for more than a short. Rows without
// both a rating and a runtime are skipped.
func TimeWeightedRatingMean(films []Film) (float64, bool) {
	totalRuntime := 0
	for _, f := range films {
		if f.Rating != nil && f.Runtime != nil {
			totalRuntime += *f.Runtime
		}
	}
	if totalRuntime == 0 {
		return 0, false
	}
	mean := 0.0
	for _, f := range films {
		if f.Rating != nil && f.Runtime != nil {
			mean += float64(*f.Runtime) / float64(totalRuntime) * *f.Rating
		}
	}
	return mean, true
}
