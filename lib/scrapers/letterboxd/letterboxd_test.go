package letterboxd

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"lbstats/lib/cache"
	"lbstats/lib/telemetry"
)

const sidebarHTML = `<html><body>
<form id="frm-sidebar-rating" data-rateable-uid="film:7733"></form>
</body></html>`

const filmHTML = `<html><body>
<a href="https://www.themoviedb.org/movie/346/" data-track-action="TMDb">TMDb</a>
</body></html>`

const tvFilmHTML = `<html><body>
<a href="https://www.themoviedb.org/tv/888/" data-track-action="TMDb">TMDb</a>
</body></html>`

const transientHTML = `<html><body>
<span class="film-title-wrapper"><a href="/film/seven-samurai/">Seven Samurai</a></span>
</body></html>`

const searchHTML = `<html><body>
<div class="film-detail-content">
	<h2><span><a href="/film/seven-samurai/">Seven Samurai</a> <small><a href="/films/year/1954/">1954</a></small></span></h2>
	<p><a href="/director/akira-kurosawa/">Akira Kurosawa</a></p>
</div>
<div class="film-detail-content">
	<h2><span><a href="/film/magnificent-seven/">The Magnificent Seven</a></span></h2>
	<p><a href="/director/john-sturges/">John Sturges</a></p>
</div>
</body></html>`

const metadataJSON = `{
	"result": true,
	"watchables": [{"watched": true}],
	"likeables": [{"liked": false}],
	"rateables": [{"rating": 9}],
	"filmsInWatchlist": [{}]
}`

// site is a mock of the scraped website recording every request it
// serves.
type site struct {
	server *httptest.Server

	mu          sync.Mutex
	requests    map[string]int
	forms       map[string]url.Values
	csrfToken   string
	loginResult string
	exportType  string
}

func newSite(t testing.TB) *site {
	f := &site{
		requests:    map[string]int{},
		forms:       map[string]url.Values{},
		csrfToken:   "csrf-token-1",
		loginResult: "success",
		exportType:  "application/zip",
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *site) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	if err := r.ParseForm(); err == nil && len(r.PostForm) > 0 {
		f.forms[r.URL.Path] = r.PostForm
	}
	csrf := f.csrfToken
	loginResult := f.loginResult
	exportType := f.exportType
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/":
		http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: csrf, Path: "/"})
		io.WriteString(w, "<html></html>")
	case r.URL.Path == loginEndpoint:
		if loginResult == "success" {
			http.SetCookie(w, &http.Cookie{Name: userCookieName, Value: "current-user", Path: "/"})
		}
		fmt.Fprintf(w, `{"result": %q}`, loginResult)
	case strings.HasPrefix(r.URL.Path, "/csi/film/seven-samurai/"):
		io.WriteString(w, sidebarHTML)
	case strings.HasPrefix(r.URL.Path, "/csi/film/missing-film/"):
		io.WriteString(w, "<html><body></body></html>")
	case r.URL.Path == "/film/seven-samurai" || r.URL.Path == "/film/seven-samurai/":
		io.WriteString(w, filmHTML)
	case r.URL.Path == "/film/the-best-show" || r.URL.Path == "/film/the-best-show/":
		io.WriteString(w, tvFilmHTML)
	case r.URL.Path == "/diary/entry/100":
		io.WriteString(w, transientHTML)
	case strings.HasPrefix(r.URL.Path, "/s/search/nothing-matches"):
		io.WriteString(w, "<html><body></body></html>")
	case strings.HasPrefix(r.URL.Path, "/s/search/"):
		io.WriteString(w, searchHTML)
	case r.URL.Path == "/s/film:7733/like/",
		r.URL.Path == "/s/film:7733/watch/",
		r.URL.Path == "/s/film:7733/rate/",
		r.URL.Path == "/film/seven-samurai/add-to-watchlist/",
		r.URL.Path == "/film/seven-samurai/remove-from-watchlist/",
		r.URL.Path == saveDiaryEndpoint:
		io.WriteString(w, `{"result": true}`)
	case r.URL.Path == metadataEndpoint:
		io.WriteString(w, metadataJSON)
	case r.URL.Path == exportEndpoint:
		if exportType != "application/zip" {
			w.Header().Set("Content-Type", exportType)
			io.WriteString(w, "<html>please sign in</html>")
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename=letterboxd-testuser-2024.zip`)
		zw := zip.NewWriter(w)
		file, err := zw.Create("watched.csv")
		if err == nil {
			file.Write([]byte("Date,Name,Year,Letterboxd URI\n2024-01-01,Seven Samurai,1954,https://boxd.it/29Be\n"))
		}
		zw.Close()
	default:
		http.NotFound(w, r)
	}
}

func (f *site) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		n += c
	}
	return n
}

func (f *site) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *site) form(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[path]
}

func (f *site) rotateCSRF(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.csrfToken = token
}

func (f *site) setLoginResult(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginResult = result
}

func (f *site) setExportType(contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportType = contentType
}

type fixture struct {
	site   *site
	store  *cache.Store
	client *Client
}

func setup(t testing.TB) fixture {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/letterboxd")
	t.Cleanup(cleanup)

	f := newSite(t)
	store, err := cache.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	client, err := NewClient(context.Background(), ClientOptions{
		BaseURL:  f.server.URL,
		Username: "testuser",
		Password: "testpass",
		Cache:    store,
	})
	if err != nil {
		t.Fatal(err)
	}

	return fixture{site: f, store: store, client: client}
}

func setupLoggedIn(t testing.TB) fixture {
	f := setup(t)
	err := f.client.Session.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return f
}
