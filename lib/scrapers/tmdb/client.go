// Package tmdb is a minimal TMDB API client used to enrich exported
// film lists with details the export CSVs lack, runtime above all.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lbstats/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/tmdb")

const (
	// DefaultBaseURL is the v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	posterBaseURL  = "https://image.tmdb.org/t/p/w500"
)

// Movie is the subset of the TMDB movie payload the viewer renders.
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	Runtime     int    `json:"runtime"`
	PosterPath  string `json:"poster_path"`
}

// PosterURL returns the absolute poster image URL, or "" when the
// movie has no poster.
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

type Client struct {
	http *resty.Client
}

type Options struct {
	APIKey string
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL  string
	Language string
}

func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetQueryParam("api_key", apiKey).
		SetTimeout(time.Second * 10)
	if opts.Language != "" {
		client.SetQueryParam("language", opts.Language)
	}
	telemetry.InstrumentResty(client, "scrapers/tmdb")

	return &Client{http: client}, nil
}

// MovieDetails fetches one movie by TMDB id.
func (c *Client) MovieDetails(ctx context.Context, id int64) (Movie, error) {
	ctx, span := tracer.Start(ctx, "tmdb:MovieDetails")
	defer span.End()

	if id <= 0 {
		return Movie{}, fmt.Errorf("movie id %d must be positive", id)
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/movie/%d", id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "movie details request failed")
		return Movie{}, err
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "movie details request rejected")
		return Movie{}, fmt.Errorf("tmdb movie details returned status %d", res.StatusCode())
	}

	var movie Movie
	err = json.Unmarshal(res.Body(), &movie)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "movie details unparsable")
		return Movie{}, fmt.Errorf("decode movie details: %w", err)
	}
	return movie, nil
}
