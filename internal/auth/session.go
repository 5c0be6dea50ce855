// internal/auth/session.go
//
// Hosted-auth session refresher.
//
// Context
// -------
// The auth provider issues an HS256 access token and an opaque refresh
// token, both stored in cookies it manages.  On every request the
// gateway validates the access token locally; when it has expired and a
// refresh token is present, one call to the provider's token endpoint
// mints a fresh pair and the cookies are re-set on the response.
//
// Every failure mode (missing cookie, bad signature, provider down,
// non-200 refresh) degrades to anonymous.  Auth-provider unavailability
// must never fail the request; the guards downstream already produce the
// least-privileged outcome for an anonymous visitor.
package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/config"
	"github.com/shorya321/vehicleservice-sub006/internal/metrics"
)

// refreshTimeout caps the token-endpoint round trip so a hung provider
// degrades to anonymous instead of stalling the request.
const refreshTimeout = 5 * time.Second

// Identity headers forwarded to the upstream renderer.  Inbound values
// are always stripped; only the gateway may set them.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

// Client validates and refreshes sessions.  Safe for concurrent use.
type Client struct {
	secret        []byte
	refreshURL    string
	accessCookie  string
	refreshCookie string
	secure        bool
	httpc         *http.Client
}

// NewClient builds a Client from the auth config section.  secure marks
// re-issued cookies Secure (production deployments).
func NewClient(cfg config.Auth, secure bool) *Client {
	return &Client{
		secret:        []byte(cfg.JWTSecret),
		refreshURL:    cfg.RefreshURL,
		accessCookie:  cfg.AccessCookie,
		refreshCookie: cfg.RefreshCookie,
		secure:        secure,
		httpc:         &http.Client{Timeout: refreshTimeout},
	}
}

// Middleware attaches the current identity, if any, to the request
// context.  It never blocks the request.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderUserID)
		r.Header.Del(HeaderUserEmail)

		if id := c.Refresh(w, r); id != nil {
			r.Header.Set(HeaderUserID, id.ID)
			if id.Email != "" {
				r.Header.Set(HeaderUserEmail, id.Email)
			}
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Refresh returns the identity for the request's session cookies, or nil
// for anonymous.  A valid access token is answered locally; an expired
// one triggers at most one refresh round trip.
func (c *Client) Refresh(w http.ResponseWriter, r *http.Request) *Identity {
	access, _ := cookieValue(r, c.accessCookie)
	refresh, _ := cookieValue(r, c.refreshCookie)

	if access == "" && refresh == "" {
		return nil // plain anonymous visitor, not a degraded session
	}

	if access != "" {
		id, err := c.identityFromToken(access)
		if err == nil {
			return id
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			metrics.AuthRefreshFailuresTotal.Inc()
			zap.S().Warnw("session token rejected", "err", err)
			return nil
		}
	}

	if refresh == "" || c.refreshURL == "" {
		metrics.AuthRefreshFailuresTotal.Inc()
		zap.S().Debugw("session expired with no refresh path")
		return nil
	}

	id, err := c.refreshSession(w, r, refresh)
	if err != nil {
		metrics.AuthRefreshFailuresTotal.Inc()
		zap.S().Warnw("session refresh degraded to anonymous", "err", err)
		return nil
	}
	return id
}

//
// Token validation
//

// identityFromToken parses and verifies an HS256 access token.
func (c *Client) identityFromToken(token string) (*Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing sub claim")
	}
	email, _ := claims["email"].(string)

	return &Identity{ID: sub, Email: email}, nil
}

//
// Refresh round trip
//

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (c *Client) refreshSession(w http.ResponseWriter, r *http.Request, refresh string) (*Identity, error) {
	body, _ := json.Marshal(map[string]string{"refresh_token": refresh})

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, c.refreshURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tokens refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, err
	}

	id, err := c.identityFromToken(tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("refreshed token invalid: %w", err)
	}

	maxAge := tokens.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.setCookie(w, c.accessCookie, tokens.AccessToken, maxAge)
	if tokens.RefreshToken != "" {
		c.setCookie(w, c.refreshCookie, tokens.RefreshToken, 30*24*3600)
	}

	return id, nil
}

func (c *Client) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) (string, bool) {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
