// internal/guard/isolation.go
//
// Route isolation for tenant-owned hostnames.
//
/*
Context
--------
A tenant's branded domain may only ever serve that tenant's own portal
experience.  It must never leak the platform's admin UI, other tenants'
data, or cross-tenant navigation.  The guard is a first-match-wins state
machine over the request path:

  1. No business resolved  → dev fall-through, else platform's
     business-not-found page (absolute URL: a relative redirect would
     resolve on the same unresolvable host and loop).
  2. Root ("/")            → portal dashboard when authenticated, else
     portal login.
  3. Signup subtree        → portal login.  Tenant signup happens on the
     platform domain only, never on a branded one.
  4. Path outside the tenant allow-list → same entry path as rule 2.
  5. Everything else continues down the chain.
*/
package guard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/auth"
	"github.com/shorya321/vehicleservice-sub006/internal/tenant"
)

// Isolation enforces the tenant-domain path policy.  Requests on the
// platform's own hostname (or foreign hostnames with no business claim)
// pass through untouched.
func (g *Guard) Isolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := tenant.FromContext(r.Context())
		if !tc.TenantOwned() {
			next.ServeHTTP(w, r)
			return
		}

		if tc.Business == nil {
			if g.dev {
				// Developer convenience only.  There is no further
				// safeguard past the environment flag, hence the loud log.
				zap.S().Warnw("unresolved tenant host allowed through (development)",
					"host", tc.Host)
				next.ServeHTTP(w, r)
				return
			}
			redirect(w, r, g.platformOrigin+BusinessNotFound, "business_not_found")
			return
		}

		_, authed := auth.IdentityFromContext(r.Context())
		entry := BusinessLogin
		if authed {
			entry = BusinessDashboard
		}

		path := r.URL.Path
		switch {
		case path == "/":
			redirect(w, r, entry, "tenant_entry")
		case pathHasPrefix(path, BusinessSignup):
			redirect(w, r, BusinessLogin, "tenant_signup")
		case !tenantAllowed(path):
			redirect(w, r, entry, "tenant_path")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
