package letterboxd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"lbstats/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/letterboxd")

// Session owns the HTTP client and cookie state shared by every call
// against the site. It is created once per connector and never
// serialized; the anti-forgery token lives in the cookie jar only.
type Session struct {
	BaseURL *url.URL
	Http    *resty.Client

	jar           http.CookieJar
	username      string
	password      string
	authenticated bool
}

type SessionOptions struct {
	// BaseURL defaults to the public site.
	BaseURL  string
	Username string
	Password string
}

// NewSession opens the HTTP client and performs a single GET against
// the site root so the jar receives the cookies that carry the
// anti-forgery token. It must succeed before any other call.
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/letterboxd/http")

	s := &Session{
		BaseURL:  baseURL,
		Http:     client,
		jar:      jar,
		username: opts.Username,
		password: opts.Password,
	}

	res, err := client.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return nil, fmt.Errorf("%w: initial cookie fetch: %v", ErrConnection, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: initial cookie fetch: status %d", ErrConnection, res.StatusCode())
	}

	return s, nil
}

// Login posts the credentials with the current anti-forgery token and
// inspects the JSON result flag. Any outcome other than "success"
// leaves the session unauthenticated; there is no retry and no logout
// transition for the life of the process.
func (s *Session) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session:Login")
	defer span.End()

	if s.username == "" || s.password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return fmt.Errorf("%w: username and password required", ErrAuthentication)
	}

	res, err := s.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": s.username,
			"password": s.password,
			"__csrf":   s.CSRFToken(),
		}).
		Post(loginEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login request failed")
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	var body struct {
		Result string `json:"result"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login response")
		return fmt.Errorf("%w: unexpected login response", ErrAuthentication)
	}
	if body.Result != "success" {
		span.SetStatus(codes.Error, "login rejected")
		return fmt.Errorf("%w: login result %q", ErrAuthentication, body.Result)
	}

	s.authenticated = true
	slog.InfoContext(ctx, "logged in", "username", s.username)
	return nil
}

func (s *Session) Authenticated() bool {
	return s.authenticated
}

// CSRFToken re-reads the anti-forgery token from the cookie jar on
// every call; the site rotates it.
func (s *Session) CSRFToken() string {
	return s.cookie(csrfCookieName)
}

func (s *Session) cookie(name string) string {
	for _, c := range s.jar.Cookies(s.BaseURL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
