// internal/auth/session_test.go
//
// Session refresher tests.  The hosted auth provider is stubbed with an
// httptest server; tokens are real HS256 JWTs.

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shorya321/vehicleservice-sub006/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestClient(refreshURL string) *Client {
	return NewClient(config.Auth{
		JWTSecret:     testSecret,
		RefreshURL:    refreshURL,
		AccessCookie:  "vs-access-token",
		RefreshCookie: "vs-refresh-token",
	}, false)
}

func request(cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://platform.test/", nil)
	for _, ck := range cookies {
		r.AddCookie(ck)
	}
	return r
}

func TestRefreshValidToken(t *testing.T) {
	c := newTestClient("")
	access := signToken(t, "user-1", time.Now().Add(time.Hour))

	id := c.Refresh(httptest.NewRecorder(),
		request(&http.Cookie{Name: "vs-access-token", Value: access}))

	require.NotNil(t, id)
	assert.Equal(t, "user-1", id.ID)
	assert.Equal(t, "user-1@example.com", id.Email)
}

func TestRefreshAnonymous(t *testing.T) {
	c := newTestClient("")
	assert.Nil(t, c.Refresh(httptest.NewRecorder(), request()))
}

func TestRefreshGarbageToken(t *testing.T) {
	c := newTestClient("")
	id := c.Refresh(httptest.NewRecorder(),
		request(&http.Cookie{Name: "vs-access-token", Value: "not-a-jwt"}))
	assert.Nil(t, id)
}

func TestRefreshWrongKeyToken(t *testing.T) {
	c := newTestClient("")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	forged, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	id := c.Refresh(httptest.NewRecorder(),
		request(&http.Cookie{Name: "vs-access-token", Value: forged}))
	assert.Nil(t, id)
}

func TestRefreshExpiredTokenRoundTrip(t *testing.T) {
	fresh := signToken(t, "user-1", time.Now().Add(time.Hour))

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh_token"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fresh,
			"refresh_token": "refresh-2",
			"expires_in":    3600,
		})
	}))
	defer provider.Close()

	c := newTestClient(provider.URL)
	expired := signToken(t, "user-1", time.Now().Add(-time.Hour))

	rec := httptest.NewRecorder()
	id := c.Refresh(rec, request(
		&http.Cookie{Name: "vs-access-token", Value: expired},
		&http.Cookie{Name: "vs-refresh-token", Value: "refresh-1"},
	))

	require.NotNil(t, id)
	assert.Equal(t, "user-1", id.ID)

	// Both cookies re-issued on the response.
	cookies := rec.Result().Cookies()
	byName := map[string]string{}
	for _, ck := range cookies {
		byName[ck.Name] = ck.Value
	}
	assert.Equal(t, fresh, byName["vs-access-token"])
	assert.Equal(t, "refresh-2", byName["vs-refresh-token"])
}

func TestRefreshProviderDownDegradesToAnonymous(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	c := newTestClient(provider.URL)
	expired := signToken(t, "user-1", time.Now().Add(-time.Hour))

	id := c.Refresh(httptest.NewRecorder(), request(
		&http.Cookie{Name: "vs-access-token", Value: expired},
		&http.Cookie{Name: "vs-refresh-token", Value: "refresh-1"},
	))
	assert.Nil(t, id)
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	c := newTestClient("")
	access := signToken(t, "user-9", time.Now().Add(time.Hour))

	var seen *Identity
	h := c.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(),
		request(&http.Cookie{Name: "vs-access-token", Value: access}))

	require.NotNil(t, seen)
	assert.Equal(t, "user-9", seen.ID)
}

func TestMiddlewareIdentityHeaders(t *testing.T) {
	c := newTestClient("")
	access := signToken(t, "user-9", time.Now().Add(time.Hour))

	var got http.Header
	h := c.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = r.Header
	}))

	req := request(&http.Cookie{Name: "vs-access-token", Value: access})
	req.Header.Set(HeaderUserID, "spoofed")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user-9", got.Get(HeaderUserID))
	assert.Equal(t, "user-9@example.com", got.Get(HeaderUserEmail))
}

func TestMiddlewareStripsSpoofedHeadersForAnonymous(t *testing.T) {
	c := newTestClient("")

	var got http.Header
	h := c.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = r.Header
	}))

	req := request()
	req.Header.Set(HeaderUserID, "spoofed")
	req.Header.Set(HeaderUserEmail, "spoofed@example.com")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, got.Get(HeaderUserID))
	assert.Empty(t, got.Get(HeaderUserEmail))
}
