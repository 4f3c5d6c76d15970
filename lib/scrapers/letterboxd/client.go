// Package letterboxd is a connector for a site that exposes no formal
// API: state is read by scraping ordinary HTML pages and mutated
// through the form-post endpoints that back them. It targets one
// site's markup conventions and is expected to need targeted
// maintenance when they change. Every network call is a single
// attempt; failures surface to the caller.
package letterboxd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lbstats/lib/cache"
)

// Client is the facade assembling the session, the identifier
// resolver and the operation dispatch table.
type Client struct {
	Session  *Session
	Resolver *Resolver
}

type ClientOptions struct {
	BaseURL  string
	Username string
	Password string
	Cache    *cache.Store
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	session, err := NewSession(ctx, SessionOptions{
		BaseURL:  opts.BaseURL,
		Username: opts.Username,
		Password: opts.Password,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		Session:  session,
		Resolver: NewResolver(session, opts.Cache),
	}, nil
}

// postForResult posts a form with a freshly read anti-forgery token
// and checks the boolean result flag every mutation endpoint returns.
func (c *Client) postForResult(ctx context.Context, endpoint string, form map[string]string) error {
	if form == nil {
		form = map[string]string{}
	}
	form["__csrf"] = c.Session.CSRFToken()

	res, err := c.Session.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrConnection, res.StatusCode(), endpoint)
	}

	var body struct {
		Result bool `json:"result"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return fmt.Errorf("%w: unexpected response from %s", ErrConnection, endpoint)
	}
	if !body.Result {
		return fmt.Errorf("%w: %s reported failure", ErrConnection, endpoint)
	}
	return nil
}
