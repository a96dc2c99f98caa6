package lineauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, aud string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch r.PostForm.Get("id_token") {
		case "good":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"iss": "https://access.line.me", "sub": "U1", "aud": aud, "exp": 1, "name": "Alex",
			})
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"Invalid IdToken."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify(t *testing.T) {
	srv := newServer(t, "1234")
	c := NewClient(srv.URL, "1234")

	p, err := c.Verify(t.Context(), "good")
	require.NoError(t, err)
	require.Equal(t, "U1", p.Subject)
	require.Equal(t, "Alex", p.Name)

	_, err = c.Verify(t.Context(), "forged")
	require.True(t, errors.Is(err, ErrInvalidIDToken))
	require.ErrorContains(t, err, "Invalid IdToken.")

	_, err = c.Verify(t.Context(), "broken")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidIDToken))
}

func TestVerify_AudienceMismatch(t *testing.T) {
	srv := newServer(t, "other-channel")
	c := NewClient(srv.URL, "1234")

	_, err := c.Verify(t.Context(), "good")
	require.ErrorIs(t, err, ErrInvalidIDToken)
}
