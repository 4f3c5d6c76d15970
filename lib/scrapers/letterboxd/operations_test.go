package letterboxd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPerformRequiresLogin(t *testing.T) {
	f := setup(t)

	baseline := f.site.total()
	err := f.client.Perform(context.Background(), OpMarkWatched, "seven-samurai", PerformArgs{})
	require.ErrorIs(t, err, ErrAuthentication)
	require.Equal(t, baseline, f.site.total(), "unauthenticated dispatch must not touch the network")
}

func TestPerformUnknownOperation(t *testing.T) {
	f := setupLoggedIn(t)

	err := f.client.Perform(context.Background(), Operation("Reticulate splines"), "seven-samurai", PerformArgs{})
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestOperationsListsRegistry(t *testing.T) {
	ops := Operations()
	require.Len(t, ops, 8)
	require.Contains(t, ops, OpAddToDiary)
	require.Contains(t, ops, OpRemoveFromWatchlist)
}

func TestSetLiked(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	err := f.client.Perform(ctx, OpAddToLiked, "seven-samurai", PerformArgs{})
	require.NoError(t, err)

	form := f.site.form("/s/film:7733/like/")
	require.Equal(t, "true", form.Get("liked"))
	require.Equal(t, "csrf-token-1", form.Get("__csrf"))

	err = f.client.Perform(ctx, OpRemoveFromLiked, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, "false", f.site.form("/s/film:7733/like/").Get("liked"))

	// the slug was resolved once, then served from cache
	require.Equal(t, 1, f.site.count("/csi/film/seven-samurai/sidebar-user-actions/"))
}

func TestSetWatched(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	err := f.client.Perform(ctx, OpMarkWatched, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, "true", f.site.form("/s/film:7733/watch/").Get("watched"))

	err = f.client.Perform(ctx, OpUnmarkWatched, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, "false", f.site.form("/s/film:7733/watch/").Get("watched"))
}

func TestSetWatchlistedIsSlugKeyed(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	err := f.client.Perform(ctx, OpAddToWatchlist, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, 1, f.site.count("/film/seven-samurai/add-to-watchlist/"))

	err = f.client.Perform(ctx, OpRemoveFromWatchlist, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, 1, f.site.count("/film/seven-samurai/remove-from-watchlist/"))

	// watchlist endpoints never need the numeric id
	require.Equal(t, 0, f.site.count("/csi/film/seven-samurai/sidebar-user-actions/"))
}

func TestSetRatingBounds(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	baseline := f.site.total()
	err := f.client.SetRating(ctx, "seven-samurai", 11)
	require.ErrorIs(t, err, ErrValidation)
	err = f.client.SetRating(ctx, "seven-samurai", -1)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, baseline, f.site.total(), "out-of-range ratings must fail before any request")

	err = f.client.SetRating(ctx, "seven-samurai", 0)
	require.NoError(t, err)
	require.Equal(t, "0", f.site.form("/s/film:7733/rate/").Get("rating"))

	err = f.client.SetRating(ctx, "seven-samurai", 10)
	require.NoError(t, err)
	require.Equal(t, "10", f.site.form("/s/film:7733/rate/").Get("rating"))
}

func TestPerformRatingDispatch(t *testing.T) {
	f := setupLoggedIn(t)

	err := f.client.Perform(context.Background(), OpUpdateRating, "seven-samurai", PerformArgs{Rating: 7})
	require.NoError(t, err)
	require.Equal(t, "7", f.site.form("/s/film:7733/rate/").Get("rating"))
}

func TestAddDiaryEntry(t *testing.T) {
	f := setupLoggedIn(t)

	entry := DiaryEntry{
		ViewingDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		SpecifyDate: true,
		Rating:      8,
		Liked:       true,
		Review:      "still the blueprint",
		Rewatch:     true,
		Tags:        []string{"rewatch", "criterion"},
	}
	err := f.client.Perform(context.Background(), OpAddToDiary, "seven-samurai", PerformArgs{Diary: &entry})
	require.NoError(t, err)

	require.Equal(t, 1, f.site.count(saveDiaryEndpoint))
	form := f.site.form(saveDiaryEndpoint)
	require.Equal(t, "7733", form.Get("filmId"))
	require.Equal(t, "true", form.Get("specifiedDate"))
	require.Equal(t, "2024-03-09", form.Get("viewingDateStr"))
	require.Equal(t, "8", form.Get("rating"))
	require.Equal(t, "true", form.Get("liked"))
	require.Equal(t, "still the blueprint", form.Get("review"))
	require.Equal(t, "false", form.Get("containsSpoilers"))
	require.Equal(t, "true", form.Get("rewatch"))
	require.Equal(t, "rewatch,criterion", form.Get("tag"))
	require.Equal(t, "csrf-token-1", form.Get("__csrf"))
}

func TestAddDiaryEntryRatingBounds(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	baseline := f.site.total()
	err := f.client.AddDiaryEntry(ctx, "seven-samurai", DiaryEntry{Rating: 11})
	require.ErrorIs(t, err, ErrValidation)
	err = f.client.AddDiaryEntry(ctx, "seven-samurai", DiaryEntry{Rating: -1})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, baseline, f.site.total(), "out-of-range diary ratings must fail before any request")
	require.Equal(t, 0, f.site.count(saveDiaryEndpoint))
}

func TestPerformDiaryWithoutEntry(t *testing.T) {
	f := setupLoggedIn(t)

	err := f.client.Perform(context.Background(), OpAddToDiary, "seven-samurai", PerformArgs{})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 0, f.site.count(saveDiaryEndpoint))
}

func TestMutationUsesFreshCSRF(t *testing.T) {
	f := setupLoggedIn(t)
	ctx := context.Background()

	f.site.rotateCSRF("csrf-token-2")
	// revisit the front page so the jar picks up the rotated cookie
	_, err := f.client.Session.Http.R().SetContext(ctx).Get("/")
	require.NoError(t, err)

	err = f.client.Perform(ctx, OpMarkWatched, "seven-samurai", PerformArgs{})
	require.NoError(t, err)
	require.Equal(t, "csrf-token-2", f.site.form("/s/film:7733/watch/").Get("__csrf"))
}
