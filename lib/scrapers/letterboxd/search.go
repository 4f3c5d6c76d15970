package letterboxd

import (
	"context"
	"fmt"
	"log/slog"

	"lbstats/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/codes"
)

type SearchResult struct {
	Title    string
	Year     string
	Director string
	// Link is the film page path, e.g. /film/seven-samurai/
	Link string
}

// Slug returns the film slug encoded in the result link.
func (r SearchResult) Slug() string {
	return trailingSegment(r.Link)
}

// Search scrapes the title search page. Works without authentication.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	doc, err := c.Resolver.fetchDocument(ctx, searchEndpoint(query))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return nil, err
	}

	var results []SearchResult
	doc.Find("div.film-detail-content").Each(func(_ int, film *goquery.Selection) {
		titleAnchor := film.Find("h2 span a").First()
		if len(titleAnchor.Nodes) == 0 {
			return
		}
		result := SearchResult{
			Title: htmlutil.CleanText(htmlutil.GetText(titleAnchor.Nodes[0])),
			Link:  titleAnchor.AttrOr("href", ""),
		}
		if year := film.Find("h2 span small a").First(); len(year.Nodes) > 0 {
			result.Year = htmlutil.CleanText(htmlutil.GetText(year.Nodes[0]))
		}
		if director := film.Find("p a").First(); len(director.Nodes) > 0 {
			result.Director = htmlutil.CleanText(htmlutil.GetText(director.Nodes[0]))
		}
		results = append(results, result)
	})

	if len(results) == 0 {
		span.SetStatus(codes.Error, "no search results")
		return nil, fmt.Errorf("%w: no results for %q", ErrScrape, query)
	}

	slog.DebugContext(ctx, "search finished", "query", query, "results", len(results))
	return results, nil
}

// BestMatch picks the result whose title is most similar to the
// query.
func BestMatch(query string, results []SearchResult) (SearchResult, bool) {
	if len(results) == 0 {
		return SearchResult{}, false
	}

	best := results[0]
	bestScore := -1.0
	for _, r := range results {
		score := matchr.JaroWinkler(query, r.Title, false)
		if score > bestScore {
			bestScore = score
			best = r
		}
	}
	return best, true
}
