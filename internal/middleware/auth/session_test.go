package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/menushare/internal/tokens"
)

func run(t *testing.T, m *SessionAuth, header string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen string
	err := m.RequireSession(func(c echo.Context) error {
		seen = UserID(c)
		return nil
	})(c)
	return seen, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireSession(t *testing.T) {
	secret := []byte("secret")
	iss := &tokens.Issuer{AccessSecret: secret, RefreshSecret: []byte("r"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
	pair, err := iss.Issue("U1")
	require.NoError(t, err)

	m := NewSessionAuth(secret)

	id, err := run(t, m, "Bearer "+pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "U1", id)

	id, err = run(t, m, "bearer "+pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "U1", id)

	_, err = run(t, m, "")
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(t, m, "Basic abc")
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(t, m, "Bearer "+pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
