package letterboxd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/codes"
)

// FilmUserMetadata is the current user's relationship to one film.
type FilmUserMetadata struct {
	Watched     bool
	Liked       bool
	Watchlisted bool
	// Rating is nil when the user has not rated the film.
	Rating *int
}

// FilmMetadata fetches the user's watched/liked/watchlisted/rating
// state for a film from the metadata endpoint. Requires an
// authenticated session carrying the user cookie.
func (c *Client) FilmMetadata(ctx context.Context, slug string) (FilmUserMetadata, error) {
	ctx, span := tracer.Start(ctx, "client:FilmMetadata")
	defer span.End()

	if !c.Session.Authenticated() {
		return FilmUserMetadata{}, fmt.Errorf("%w: metadata requires a logged in session", ErrAuthentication)
	}
	if c.Session.cookie(userCookieName) == "" {
		span.SetStatus(codes.Error, "user cookie missing")
		return FilmUserMetadata{}, fmt.Errorf("%w: missing %s cookie", ErrAuthentication, userCookieName)
	}

	id, err := c.Resolver.FilmID(ctx, slug)
	if err != nil {
		return FilmUserMetadata{}, err
	}

	// the endpoint is keyed by a composite "<kind>:<id>" value for
	// each detail kind; posters doubles as the watchlist lookup
	filmKey := fmt.Sprintf("film:%d", id)
	res, err := c.Session.Http.R().
		SetContext(ctx).
		SetHeader("x-requested-with", "XMLHttpRequest").
		SetFormData(map[string]string{
			"posters":    filmKey,
			"likeables":  filmKey,
			"watchables": filmKey,
			"ratables":   filmKey,
		}).
		Post(metadataEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "metadata request failed")
		return FilmUserMetadata{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "metadata request rejected")
		return FilmUserMetadata{}, fmt.Errorf("%w: status %d from %s", ErrConnection, res.StatusCode(), metadataEndpoint)
	}

	var body struct {
		Result     bool `json:"result"`
		Watchables []struct {
			Watched bool `json:"watched"`
		} `json:"watchables"`
		Likeables []struct {
			Liked bool `json:"liked"`
		} `json:"likeables"`
		Rateables []struct {
			Rating *int `json:"rating"`
		} `json:"rateables"`
		FilmsInWatchlist []json.RawMessage `json:"filmsInWatchlist"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "metadata response unparsable")
		return FilmUserMetadata{}, fmt.Errorf("%w: unexpected response from %s", ErrConnection, metadataEndpoint)
	}
	if !body.Result {
		span.SetStatus(codes.Error, "metadata result flag false")
		return FilmUserMetadata{}, fmt.Errorf("%w: %s reported failure", ErrConnection, metadataEndpoint)
	}

	out := FilmUserMetadata{
		Watchlisted: len(body.FilmsInWatchlist) > 0,
	}
	for _, w := range body.Watchables {
		if w.Watched {
			out.Watched = true
			break
		}
	}
	for _, l := range body.Likeables {
		if l.Liked {
			out.Liked = true
			break
		}
	}
	for _, r := range body.Rateables {
		if r.Rating != nil {
			out.Rating = r.Rating
			break
		}
	}

	slog.DebugContext(
		ctx, "fetched film metadata",
		"film", slug,
		"watched", out.Watched,
		"liked", out.Liked,
		"watchlisted", out.Watchlisted,
	)
	return out, nil
}
