package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)
	require.NoError(t, err)
	return dir
}

func TestLoadWatched(t *testing.T) {
	dir := writeExport(t, "watched.csv",
		"Date,Name,Year,Letterboxd URI\n"+
			"2024-01-01,Seven Samurai,1954,https://boxd.it/29Be\n"+
			"2024-02-10,Ran,1985,https://boxd.it/2aGo\n")

	films, err := Load(dir, KindWatched)
	require.NoError(t, err)

	want := []Film{
		{
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Name: "Seven Samurai",
			Year: 1954,
			URI:  "https://boxd.it/29Be",
		},
		{
			Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			Name: "Ran",
			Year: 1985,
			URI:  "https://boxd.it/2aGo",
		},
	}
	if diff := cmp.Diff(want, films); diff != "" {
		t.Fatalf("parsed films mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDiary(t *testing.T) {
	dir := writeExport(t, "diary.csv",
		"Date,Name,Year,Letterboxd URI,Rating,Rewatch,Tags,Watched Date\n"+
			"2024-03-09,Seven Samurai,1954,https://letterboxd.com/user/film/seven-samurai/1/,4.5,Yes,\"criterion, rewatch\",2024-03-08\n")

	films, err := Load(dir, KindDiary)
	require.NoError(t, err)
	require.Len(t, films, 1)

	film := films[0]
	require.NotNil(t, film.Rating)
	require.Equal(t, 4.5, *film.Rating)
	require.True(t, film.Rewatch)
	require.Equal(t, []string{"criterion", "rewatch"}, film.Tags)
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), film.WatchedDate)
	require.True(t, KindDiary.Transient())
}

func TestLoadUnratedRowsHaveNilRating(t *testing.T) {
	dir := writeExport(t, "ratings.csv",
		"Date,Name,Year,Letterboxd URI,Rating\n"+
			"2024-01-01,Seven Samurai,1954,https://boxd.it/29Be,5\n"+
			"2024-01-02,Ran,1985,https://boxd.it/2aGo,\n")

	films, err := Load(dir, KindRatings)
	require.NoError(t, err)
	require.NotNil(t, films[0].Rating)
	require.Nil(t, films[1].Rating)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), KindWatchlist)
	require.Error(t, err)
}

func testFilms() []Film {
	high := 5.0
	low := 2.5
	return []Film{
		{Name: "Ran", Year: 1985, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Rating: &low},
		{Name: "Seven Samurai", Year: 1954, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Rating: &high},
		{Name: "Ikiru", Year: 1952, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestSort(t *testing.T) {
	films := testFilms()
	require.NoError(t, Sort(films, SortByName, true))
	require.Equal(t, "Ikiru", films[0].Name)
	require.Equal(t, "Seven Samurai", films[2].Name)

	require.NoError(t, Sort(films, SortByYear, false))
	require.Equal(t, 1985, films[0].Year)

	// descending rating puts unrated rows last
	require.NoError(t, Sort(films, SortByRating, false))
	require.Equal(t, "Seven Samurai", films[0].Name)
	require.Equal(t, "Ikiru", films[2].Name)

	require.Error(t, Sort(films, SortColumn("director"), true))
}

func TestSortShuffleKeepsAllRows(t *testing.T) {
	films := testFilms()
	require.NoError(t, Sort(films, SortShuffle, false))
	require.Len(t, films, 3)
}

func TestLimit(t *testing.T) {
	films := testFilms()
	require.Len(t, Limit(films, 2), 2)
	require.Len(t, Limit(films, 0), 3)
	require.Len(t, Limit(films, 10), 3)
}

func TestRatingMean(t *testing.T) {
	mean, ok := RatingMean(testFilms())
	require.True(t, ok)
	require.InDelta(t, 3.75, mean, 0.001)

	_, ok = RatingMean([]Film{{Name: "Ikiru"}})
	require.False(t, ok)
}

func TestTimeWeightedRatingMean(t *testing.T) {
	films := testFilms()
	long := 200
	short := 100
	films[0].Runtime = &short // Ran, 2.5
	films[1].Runtime = &long  // Seven Samurai, 5.0

	mean, ok := TimeWeightedRatingMean(films)
	require.True(t, ok)
	// (100*2.5 + 200*5.0) / 300
	require.InDelta(t, 4.1666, mean, 0.001)

	_, ok = TimeWeightedRatingMean(nil)
	require.False(t, ok)
}
