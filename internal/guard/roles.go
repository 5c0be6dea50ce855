// internal/guard/roles.go
//
// Role-based access checks for platform-domain requests.
//
/*
Context
--------
Each protected prefix follows one pattern: require an authenticated
identity, require the matching role or membership on its database
record, and redirect to a login page or /unauthorized on any failure.
A database error during a check is a hard fail to /unauthorized — a
flaky lookup must never widen access.

Prefix map:

  /admin/*              role=admin        (excl. /admin/login)
  /become-vendor/*      role=customer
  /account/*            any active profile
  /vendor-application/* any active profile
  /vendor/*             role=vendor       (excl. /vendor-application/*)
  /business/*           active BusinessUser on an active account
                        (excl. the public login/signup/reset pages)

Visiting a role's login page with that role already in session forwards
to the role's dashboard, one profile lookup per hit.
*/
package guard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/auth"
	"github.com/shorya321/vehicleservice-sub006/internal/profile"
	"github.com/shorya321/vehicleservice-sub006/internal/tenant"
)

// Roles enforces the prefix → role map.  It applies only to hostnames
// the isolation guard did not claim; business paths on tenant domains
// carry their own session checks in the portal itself.
func (g *Guard) Roles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := tenant.FromContext(r.Context())
		if tc.TenantOwned() {
			next.ServeHTTP(w, r)
			return
		}

		path := r.URL.Path
		id, authed := auth.IdentityFromContext(r.Context())

		if authed && g.forwardFromLogin(w, r, id, path) {
			return
		}

		switch {
		case pathHasPrefix(path, AdminPrefix) && !pathHasPrefix(path, AdminLogin):
			g.requireRole(w, r, next, id, profile.RoleAdmin, AdminLogin)

		case pathHasPrefix(path, BecomeVendorPrefix):
			g.requireRole(w, r, next, id, profile.RoleCustomer, Login)

		case pathHasPrefix(path, AccountPrefix), pathHasPrefix(path, VendorApplicationPrefix):
			g.requireRole(w, r, next, id, "", Login)

		case pathHasPrefix(path, VendorPrefix):
			g.requireRole(w, r, next, id, profile.RoleVendor, Login)

		case pathHasPrefix(path, BusinessPrefix) && !isBusinessPublic(path):
			g.requireMembership(w, r, next, id)

		default:
			next.ServeHTTP(w, r)
		}
	})
}

// requireRole admits id when its profile is active and, for a non-empty
// role, matches it.  login is where anonymous visitors are sent.
func (g *Guard) requireRole(w http.ResponseWriter, r *http.Request, next http.Handler,
	id *auth.Identity, role, login string) {

	if id == nil {
		redirect(w, r, login, "login_required")
		return
	}

	prof, err := g.profiles.ByID(r.Context(), id.ID)
	if err != nil {
		zap.S().Warnw("profile lookup failed, denying", "identity", id.ID, "err", err)
		redirect(w, r, Unauthorized, "lookup_failed")
		return
	}
	if !prof.Active() || (role != "" && prof.Role != role) {
		redirect(w, r, Unauthorized, "role_mismatch")
		return
	}
	next.ServeHTTP(w, r)
}

// requireMembership admits id when it holds an active business
// membership on an active account.
func (g *Guard) requireMembership(w http.ResponseWriter, r *http.Request, next http.Handler,
	id *auth.Identity) {

	if id == nil {
		redirect(w, r, BusinessLogin, "login_required")
		return
	}

	member, err := g.members.UserByIdentity(r.Context(), id.ID)
	if err != nil {
		zap.S().Warnw("membership lookup failed, denying", "identity", id.ID, "err", err)
		redirect(w, r, Unauthorized, "lookup_failed")
		return
	}
	if !member.CanAccessPortal() {
		redirect(w, r, Unauthorized, "role_mismatch")
		return
	}
	next.ServeHTTP(w, r)
}

// forwardFromLogin bounces an already-authenticated visitor off a login
// page toward their dashboard.  Lookup failures fall through: login
// pages are public, so there is nothing to deny.
func (g *Guard) forwardFromLogin(w http.ResponseWriter, r *http.Request,
	id *auth.Identity, path string) bool {

	switch path {
	case AdminLogin:
		if prof, err := g.profiles.ByID(r.Context(), id.ID); err == nil &&
			prof.Active() && prof.Role == profile.RoleAdmin {
			redirect(w, r, AdminDashboard, "login_forward")
			return true
		}
	case Login:
		if prof, err := g.profiles.ByID(r.Context(), id.ID); err == nil && prof.Active() {
			redirect(w, r, dashboardFor(prof.Role), "login_forward")
			return true
		}
	case BusinessLogin:
		if member, err := g.members.UserByIdentity(r.Context(), id.ID); err == nil &&
			member.CanAccessPortal() {
			redirect(w, r, BusinessDashboard, "login_forward")
			return true
		}
	}
	return false
}

// dashboardFor maps a platform role to its landing page.
func dashboardFor(role string) string {
	switch role {
	case profile.RoleAdmin:
		return AdminDashboard
	case profile.RoleVendor:
		return VendorDashboard
	default:
		return AccountPrefix
	}
}
