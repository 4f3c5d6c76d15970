package export

import (
	"context"
	"log/slog"
	"sync"

	"lbstats/lib/scrapers/tmdb"
)

// XrefResolver resolves a film page URL to its TMDB id.
type XrefResolver interface {
	TMDBID(ctx context.Context, pageURL string, transient bool) (int64, error)
}

// MovieFetcher fetches movie details by TMDB id.
type MovieFetcher interface {
	MovieDetails(ctx context.Context, id int64) (tmdb.Movie, error)
}

// EnrichTMDBIDs resolves the TMDB id for every row, at most workers
// lookups in flight at once. Rows that fail to resolve are logged and
// left without an id; one bad row never aborts the listing.
func EnrichTMDBIDs(ctx context.Context, resolver XrefResolver, films []Film, kind Kind, workers int) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	wg := sync.WaitGroup{}
	for i := range films {
		if films[i].URI == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(film *Film) {
			defer wg.Done()
			defer func() { <-sem }()

			id, err := resolver.TMDBID(ctx, film.URI, kind.Transient())
			if err != nil {
				slog.WarnContext(ctx, "failed to resolve tmdb id", "film", film.Name, "err", err)
				return
			}
			film.TMDBID = &id
		}(&films[i])
	}
	wg.Wait()
}

// EnrichRuntimes fills in runtimes for rows that already carry a TMDB
// id, with the same bounded-concurrency and skip-on-failure behavior
// as EnrichTMDBIDs.
func EnrichRuntimes(ctx context.Context, movies MovieFetcher, films []Film, workers int) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	wg := sync.WaitGroup{}
	for i := range films {
		if films[i].TMDBID == nil {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(film *Film) {
			defer wg.Done()
			defer func() { <-sem }()

			movie, err := movies.MovieDetails(ctx, *film.TMDBID)
			if err != nil {
				slog.WarnContext(ctx, "failed to fetch runtime", "film", film.Name, "err", err)
				return
			}
			film.Runtime = &movie.Runtime
		}(&films[i])
	}
	wg.Wait()
}
