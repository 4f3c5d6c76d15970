package letterboxd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.False(t, f.client.Session.Authenticated())

	err := f.client.Session.Login(ctx)
	require.NoError(t, err)
	require.True(t, f.client.Session.Authenticated())

	form := f.site.form(loginEndpoint)
	require.Equal(t, "testuser", form.Get("username"))
	require.Equal(t, "testpass", form.Get("password"))
	require.Equal(t, "csrf-token-1", form.Get("__csrf"))
}

func TestLoginFailureLeavesAnonymous(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.site.setLoginResult("error")

	err := f.client.Session.Login(ctx)
	require.ErrorIs(t, err, ErrAuthentication)
	require.False(t, f.client.Session.Authenticated())
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newSite(t)

	session, err := NewSession(context.Background(), SessionOptions{BaseURL: f.server.URL})
	require.NoError(t, err)

	baseline := f.total()
	err = session.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)
	require.Equal(t, baseline, f.total(), "login without credentials must not hit the network")
}

func TestCSRFTokenReReadsJar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.Equal(t, "csrf-token-1", f.client.Session.CSRFToken())

	// the site rotates the token, a fresh root fetch refreshes the jar
	f.site.rotateCSRF("csrf-token-2")
	_, err := f.client.Session.Http.R().SetContext(ctx).Get("/")
	require.NoError(t, err)

	require.Equal(t, "csrf-token-2", f.client.Session.CSRFToken())
}
