package letterboxd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"lbstats/lib/cache"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Resolver scrapes detail pages to translate film slugs and page URLs
// into the identifiers the mutation endpoints need. Results are
// written through to the cache store; failures never are. Resolution
// is idempotent, so concurrent duplicate fetches only waste work.
type Resolver struct {
	session *Session
	cache   *cache.Store
}

func NewResolver(session *Session, store *cache.Store) *Resolver {
	return &Resolver{session: session, cache: store}
}

// FilmID resolves the site's own numeric id for a film slug. The id
// is scraped from the rateable-uid attribute on the sidebar form of
// the film's user-actions fragment.
func (r *Resolver) FilmID(ctx context.Context, slug string) (int64, error) {
	ctx, span := tracer.Start(ctx, "resolver:FilmID")
	defer span.End()

	cached, ok, err := r.cache.Get(ctx, nsSlugToLocalID, slug)
	if err != nil {
		return 0, err
	}
	if ok {
		slog.DebugContext(ctx, "film id cache hit", "slug", slug, "id", cached)
		return cached, nil
	}

	doc, err := r.fetchDocument(ctx, sidebarEndpoint(slug))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sidebar fragment")
		return 0, err
	}

	uid := doc.Find("#frm-sidebar-rating").AttrOr("data-rateable-uid", "")
	if uid == "" {
		span.SetStatus(codes.Error, "rateable uid attribute missing")
		return 0, fmt.Errorf("%w: no rateable uid for slug %q", ErrScrape, slug)
	}
	_, suffix, found := strings.Cut(uid, ":")
	if !found {
		span.SetStatus(codes.Error, "rateable uid not colon-delimited")
		return 0, fmt.Errorf("%w: malformed rateable uid %q", ErrScrape, uid)
	}
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "rateable uid suffix not numeric")
		return 0, fmt.Errorf("%w: malformed rateable uid %q", ErrScrape, uid)
	}

	err = r.cache.Save(ctx, nsSlugToLocalID, slug, id)
	if err != nil {
		return 0, err
	}

	slog.DebugContext(ctx, "resolved film id", "slug", slug, "id", id)
	return id, nil
}

// TMDBIDForSlug resolves the TMDB id for a film slug through its
// canonical film page.
func (r *Resolver) TMDBIDForSlug(ctx context.Context, slug string) (int64, error) {
	return r.TMDBID(ctx, filmPageEndpoint(slug), false)
}

// TMDBID resolves the TMDB id embedded in a film page. transient marks
// contextual views (diary entries) that carry no TMDB link themselves;
// those are first redirected through their title anchor to the
// canonical film page. Only movie links are accepted.
func (r *Resolver) TMDBID(ctx context.Context, pageURL string, transient bool) (int64, error) {
	ctx, span := tracer.Start(ctx, "resolver:TMDBID")
	defer span.End()

	key := trailingSegment(pageURL)

	cached, ok, err := r.cache.Get(ctx, nsURLToXrefID, key)
	if err != nil {
		return 0, err
	}
	if ok {
		slog.DebugContext(ctx, "tmdb id cache hit", "key", key, "id", cached)
		return cached, nil
	}

	doc, err := r.fetchDocument(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch film page")
		return 0, err
	}

	if transient {
		href := doc.Find("span.film-title-wrapper a").AttrOr("href", "")
		if href == "" {
			span.SetStatus(codes.Error, "no film link on transient page")
			return 0, fmt.Errorf("%w: no film link on transient page %q", ErrScrape, pageURL)
		}
		doc, err = r.fetchDocument(ctx, href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch canonical film page")
			return 0, err
		}
	}

	href := doc.Find("a[data-track-action=TMDb]").AttrOr("href", "")
	if href == "" {
		span.SetStatus(codes.Error, "no tmdb link on page")
		return 0, fmt.Errorf("%w: no tmdb link for %q", ErrScrape, pageURL)
	}

	kind, id, err := parseXrefHref(href)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	if kind != supportedXrefKind {
		span.SetStatus(codes.Error, "unsupported tmdb category")
		return 0, fmt.Errorf("%w: %q in %q", ErrUnsupportedCategory, kind, href)
	}

	err = r.cache.Save(ctx, nsURLToXrefID, key, id)
	if err != nil {
		return 0, err
	}

	slog.DebugContext(ctx, "resolved tmdb id", "key", key, "id", id)
	return id, nil
}

// parseXrefHref splits a TMDB href such as
// https://www.themoviedb.org/movie/346/ into its category and id
// segments.
func parseXrefHref(href string) (string, int64, error) {
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("%w: malformed tmdb href %q", ErrScrape, href)
	}
	kind := parts[len(parts)-2]
	id, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed tmdb href %q", ErrScrape, href)
	}
	return kind, id, nil
}

func (r *Resolver) fetchDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	res, err := r.session.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", ErrConnection, res.StatusCode(), endpoint)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrape, err)
	}
	return doc, nil
}
