package letterboxd

import "errors"

var (
	// ErrAuthentication covers failed logins and any mutating call
	// attempted without an authenticated session.
	ErrAuthentication = errors.New("letterboxd: authentication failed")
	// ErrConnection covers non-200 responses and falsy result flags on
	// requests expected to succeed.
	ErrConnection = errors.New("letterboxd: request failed")
	// ErrScrape means an expected element or attribute was missing from
	// a page, either the slug is wrong or the markup changed.
	ErrScrape = errors.New("letterboxd: expected page element not found")
	// ErrUnsupportedCategory means the cross-reference link on a film
	// page points at something other than a movie.
	ErrUnsupportedCategory = errors.New("letterboxd: unsupported tmdb category")
	// ErrValidation covers caller-supplied arguments outside their
	// contract, reported before any network call.
	ErrValidation = errors.New("letterboxd: invalid argument")
	// ErrUnknownOperation is returned by Perform for operation names
	// missing from the registry.
	ErrUnknownOperation = errors.New("letterboxd: unknown operation")
)
