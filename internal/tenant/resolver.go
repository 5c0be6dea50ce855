// internal/tenant/resolver.go
//
// Hostname classification and tenant resolution.
//
/*
Context
--------
Every inbound Host header lands in exactly one class:

  platform       host == platform hostname (port ignored)
  subdomain      host ends with "." + platform hostname
  custom-domain  any other host with a verified, active business claim
  unknown        any other host without one

Platform hosts never touch the database.  Subdomains resolve through the
business_accounts.subdomain column; foreign hosts resolve through the
get_business_by_custom_domain procedure.  A lookup failure is logged and
treated as "no business" — the least-privileged outcome — so a flaky
database degrades to the not-found flow instead of a 500.
*/
package tenant

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/business"
)

// Branding headers consumed by the upstream renderer.
const (
	HeaderBusinessID     = "X-Business-Id"
	HeaderBusinessName   = "X-Business-Name"
	HeaderBrandName      = "X-Brand-Name"
	HeaderBrandLogo      = "X-Brand-Logo"
	HeaderThemePrimary   = "X-Theme-Primary"
	HeaderThemeSecondary = "X-Theme-Secondary"
	HeaderThemeTertiary  = "X-Theme-Tertiary"
	HeaderCustomDomain   = "X-Custom-Domain"
)

var brandingHeaders = []string{
	HeaderBusinessID, HeaderBusinessName, HeaderBrandName, HeaderBrandLogo,
	HeaderThemePrimary, HeaderThemeSecondary, HeaderThemeTertiary, HeaderCustomDomain,
}

// Directory answers hostname → business questions.  Implemented by
// *business.Repo and by *Cache.
type Directory interface {
	ByCustomDomain(ctx context.Context, host string) (*business.Account, error)
	BySubdomain(ctx context.Context, sub string) (*business.Account, error)
}

// Resolver classifies hostnames against the platform's canonical host.
type Resolver struct {
	platformHost string
	dir          Directory
}

// NewResolver builds a Resolver.  platformHost must be port-stripped and
// lower-cased (config.Site.PlatformHost provides exactly that).
func NewResolver(platformHost string, dir Directory) *Resolver {
	return &Resolver{platformHost: strings.ToLower(platformHost), dir: dir}
}

// Classify buckets a raw Host header, returning the class and, for
// subdomains, the label in front of the platform host.  Nested labels
// ("a.b.platform.com") stay intact; the directory decides whether such a
// subdomain exists.
func (r *Resolver) Classify(rawHost string) (Class, string) {
	host := strings.ToLower(stripPort(rawHost))

	switch {
	case host == r.platformHost:
		return ClassPlatform, ""
	case strings.HasSuffix(host, "."+r.platformHost):
		return ClassSubdomain, strings.TrimSuffix(host, "."+r.platformHost)
	default:
		return ClassUnknown, ""
	}
}

// Resolve turns a raw Host header into a tenant Context, performing at
// most one directory lookup.
func (r *Resolver) Resolve(ctx context.Context, rawHost string) Context {
	host := strings.ToLower(stripPort(rawHost))
	class, label := r.Classify(rawHost)

	switch class {
	case ClassPlatform:
		return Context{Class: ClassPlatform, Host: host}

	case ClassSubdomain:
		acct := r.lookup(ctx, host, func() (*business.Account, error) {
			return r.dir.BySubdomain(ctx, label)
		})
		return Context{Class: ClassSubdomain, Host: host, Business: acct}

	default:
		acct := r.lookup(ctx, host, func() (*business.Account, error) {
			return r.dir.ByCustomDomain(ctx, host)
		})
		if acct == nil {
			return Context{Class: ClassUnknown, Host: host}
		}
		return Context{Class: ClassCustomDomain, Host: host, Business: acct}
	}
}

// lookup runs one directory query, collapsing both not-found and
// transient failure onto nil.
func (r *Resolver) lookup(ctx context.Context, host string, fn func() (*business.Account, error)) *business.Account {
	acct, err := fn()
	if err == nil {
		return acct
	}
	if !errors.Is(err, business.ErrNotFound) {
		zap.S().Warnw("tenant lookup degraded to not-found", "host", host, "err", err)
	}
	return nil
}

// Middleware resolves the tenant once per request, attaches the typed
// context, and writes branding headers on both legs: the response (for
// edge consumers) and the forwarded request (for the upstream renderer).
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tc := r.Resolve(req.Context(), req.Host)

		// Inbound branding headers are never trusted.
		for _, h := range brandingHeaders {
			req.Header.Del(h)
		}

		if tc.Business != nil {
			setBrandingHeaders(w.Header(), tc)
			setBrandingHeaders(req.Header, tc)
		}

		zap.S().Debugw("tenant resolved",
			"host", tc.Host,
			"class", tc.Class.String(),
			"resolved", tc.Business != nil,
		)

		next.ServeHTTP(w, req.WithContext(WithContext(req.Context(), tc)))
	})
}

func setBrandingHeaders(h http.Header, tc Context) {
	acct := tc.Business
	th := acct.Theme()

	h.Set(HeaderBusinessID, acct.ID)
	h.Set(HeaderBusinessName, acct.Name)
	h.Set(HeaderBrandName, acct.DisplayName())
	if acct.LogoURL.Valid {
		h.Set(HeaderBrandLogo, acct.LogoURL.String)
	}
	h.Set(HeaderThemePrimary, th.Primary)
	h.Set(HeaderThemeSecondary, th.Secondary)
	h.Set(HeaderThemeTertiary, th.Tertiary)
	h.Set(HeaderCustomDomain, strconv.FormatBool(tc.Class == ClassCustomDomain))
}

// stripPort removes any ":port" suffix from the Host header.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
