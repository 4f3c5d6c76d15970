package letterboxd

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://letterboxd.com"

const (
	loginEndpoint     = "/user/login.do"
	exportEndpoint    = "/data/export"
	metadataEndpoint  = "/ajax/letterboxd-metadata/"
	saveDiaryEndpoint = "/s/save-diary-entry"
	csrfCookieName    = "com.xk72.webparts.csrf"
	userCookieName    = "letterboxd.user.CURRENT"
	supportedXrefKind = "movie"
	nsSlugToLocalID   = "slug_to_local_id"
	nsURLToXrefID     = "url_to_xref_id"
)

// slug-keyed endpoints
func sidebarEndpoint(slug string) string {
	return fmt.Sprintf("/csi/film/%s/sidebar-user-actions/?esiAllowUser=true", slug)
}

func filmPageEndpoint(slug string) string {
	return fmt.Sprintf("/film/%s", slug)
}

func watchlistEndpoint(slug string, add bool) string {
	if add {
		return fmt.Sprintf("/film/%s/add-to-watchlist/", slug)
	}
	return fmt.Sprintf("/film/%s/remove-from-watchlist/", slug)
}

func searchEndpoint(query string) string {
	return fmt.Sprintf("/s/search/%s/", url.PathEscape(query))
}

// id-keyed endpoints
func likeEndpoint(filmID int64) string {
	return fmt.Sprintf("/s/film:%d/like/", filmID)
}

func watchEndpoint(filmID int64) string {
	return fmt.Sprintf("/s/film:%d/watch/", filmID)
}

func rateEndpoint(filmID int64) string {
	return fmt.Sprintf("/s/film:%d/rate/", filmID)
}

// trailingSegment returns the last path segment of a film page URL.
// It is the canonical cache key for cross-reference lookups: export
// CSVs mix letterboxd.com and boxd.it prefixes for the same film, the
// trailing segment is the part both share.
func trailingSegment(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return trimmed
	}
	return trimmed[i+1:]
}
