package letterboxd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Operation names a user-facing film action. The set is closed: the
// registry below is built at compile time and read-only afterwards.
type Operation string

const (
	OpAddToDiary          Operation = "Add to diary"
	OpUpdateRating        Operation = "Update film rating"
	OpAddToLiked          Operation = "Add to Liked films"
	OpRemoveFromLiked     Operation = "Remove from liked films"
	OpMarkWatched         Operation = "Mark film as watched"
	OpUnmarkWatched       Operation = "Un-mark film as watched"
	OpAddToWatchlist      Operation = "Add to watchlist"
	OpRemoveFromWatchlist Operation = "Remove from watchlist"
)

// PerformArgs carries the operation-specific arguments Perform passes
// through to its handler.
type PerformArgs struct {
	Rating int
	Diary  *DiaryEntry
}

type opHandler func(ctx context.Context, c *Client, slug string, status bool, args PerformArgs) error

// descriptor pairs a handler with an optional fixed status flag the
// dispatcher injects; handlers without one ignore it.
type descriptor struct {
	handler opHandler
	status  bool
}

var operations = map[Operation]descriptor{
	OpAddToDiary: {handler: func(ctx context.Context, c *Client, slug string, _ bool, args PerformArgs) error {
		if args.Diary == nil {
			return fmt.Errorf("%w: diary entry required", ErrValidation)
		}
		return c.AddDiaryEntry(ctx, slug, *args.Diary)
	}},
	OpUpdateRating: {handler: func(ctx context.Context, c *Client, slug string, _ bool, args PerformArgs) error {
		return c.SetRating(ctx, slug, args.Rating)
	}},
	OpAddToLiked:          {status: true, handler: setLiked},
	OpRemoveFromLiked:     {status: false, handler: setLiked},
	OpMarkWatched:         {status: true, handler: setWatched},
	OpUnmarkWatched:       {status: false, handler: setWatched},
	OpAddToWatchlist:      {status: true, handler: setWatchlisted},
	OpRemoveFromWatchlist: {status: false, handler: setWatchlisted},
}

func setLiked(ctx context.Context, c *Client, slug string, status bool, _ PerformArgs) error {
	return c.SetLiked(ctx, slug, status)
}

func setWatched(ctx context.Context, c *Client, slug string, status bool, _ PerformArgs) error {
	return c.SetWatched(ctx, slug, status)
}

func setWatchlisted(ctx context.Context, c *Client, slug string, status bool, _ PerformArgs) error {
	return c.SetWatchlisted(ctx, slug, status)
}

// Operations lists the registered operation names.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operations))
	for op := range operations {
		ops = append(ops, op)
	}
	return ops
}

// Perform dispatches a named operation against a film slug. It
// refuses before touching the network when the session is not
// authenticated, and propagates whatever the handler returns.
func (c *Client) Perform(ctx context.Context, op Operation, slug string, args PerformArgs) error {
	ctx, span := tracer.Start(ctx, "client:Perform")
	defer span.End()

	if !c.Session.Authenticated() {
		return fmt.Errorf("%w: %q requires a logged in session", ErrAuthentication, op)
	}
	desc, ok := operations[op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}

	slog.InfoContext(ctx, "performing operation", "operation", string(op), "film", slug)
	return desc.handler(ctx, c, slug, desc.status, args)
}

// SetLiked updates the like flag. The endpoint is keyed by the film's
// numeric id, so the slug is resolved first.
func (c *Client) SetLiked(ctx context.Context, slug string, liked bool) error {
	id, err := c.Resolver.FilmID(ctx, slug)
	if err != nil {
		return err
	}
	return c.postForResult(ctx, likeEndpoint(id), map[string]string{
		"liked": strconv.FormatBool(liked),
	})
}

// SetWatched updates the watched flag, id-keyed like SetLiked.
func (c *Client) SetWatched(ctx context.Context, slug string, watched bool) error {
	id, err := c.Resolver.FilmID(ctx, slug)
	if err != nil {
		return err
	}
	return c.postForResult(ctx, watchEndpoint(id), map[string]string{
		"watched": strconv.FormatBool(watched),
	})
}

// SetWatchlisted adds or removes the film from the watchlist. The
// watchlist endpoints are keyed by slug, not id; the two endpoint
// families must not be confused.
func (c *Client) SetWatchlisted(ctx context.Context, slug string, on bool) error {
	return c.postForResult(ctx, watchlistEndpoint(slug, on), map[string]string{})
}

// SetRating rates the film 0 to 10 inclusive. Out-of-range ratings
// fail before any network call.
func (c *Client) SetRating(ctx context.Context, slug string, rating int) error {
	if rating < 0 || rating > 10 {
		return fmt.Errorf("%w: rating %d outside 0..10", ErrValidation, rating)
	}
	id, err := c.Resolver.FilmID(ctx, slug)
	if err != nil {
		return err
	}
	return c.postForResult(ctx, rateEndpoint(id), map[string]string{
		"rating": strconv.Itoa(rating),
	})
}

// DiaryEntry is the caller-supplied payload for a diary posting. The
// film id and anti-forgery token are injected by AddDiaryEntry.
type DiaryEntry struct {
	ViewingDate      time.Time
	SpecifyDate      bool
	Rating           int
	Liked            bool
	Review           string
	ContainsSpoilers bool
	Rewatch          bool
	Tags             []string
}

func (e DiaryEntry) form() map[string]string {
	return map[string]string{
		"specifiedDate":    strconv.FormatBool(e.SpecifyDate),
		"viewingDateStr":   e.ViewingDate.Format("2006-01-02"),
		"rating":           strconv.Itoa(e.Rating),
		"liked":            strconv.FormatBool(e.Liked),
		"review":           e.Review,
		"containsSpoilers": strconv.FormatBool(e.ContainsSpoilers),
		"rewatch":          strconv.FormatBool(e.Rewatch),
		"tag":              strings.Join(e.Tags, ","),
	}
}

// AddDiaryEntry posts a diary entry for the film. The entry rating is
// bounded like SetRating, before any network call.
func (c *Client) AddDiaryEntry(ctx context.Context, slug string, entry DiaryEntry) error {
	if entry.Rating < 0 || entry.Rating > 10 {
		return fmt.Errorf("%w: rating %d outside 0..10", ErrValidation, entry.Rating)
	}
	id, err := c.Resolver.FilmID(ctx, slug)
	if err != nil {
		return err
	}
	form := entry.form()
	form["filmId"] = strconv.FormatInt(id, 10)
	return c.postForResult(ctx, saveDiaryEndpoint, form)
}
