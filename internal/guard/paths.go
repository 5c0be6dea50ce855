// internal/guard/paths.go
//
// Path layout shared by the isolation and role guards.  These mirror the
// route tree of the rendering application; change them in lockstep.
package guard

import "strings"

const (
	Login        = "/login"
	Unauthorized = "/unauthorized"

	AdminPrefix    = "/admin"
	AdminLogin     = "/admin/login"
	AdminDashboard = "/admin/dashboard"

	AccountPrefix = "/account"

	VendorPrefix            = "/vendor"
	VendorDashboard         = "/vendor/dashboard"
	VendorApplicationPrefix = "/vendor-application"
	BecomeVendorPrefix      = "/become-vendor"

	BusinessPrefix    = "/business"
	BusinessLogin     = "/business/login"
	BusinessSignup    = "/business/signup"
	BusinessDashboard = "/business/dashboard"

	BusinessNotFound = "/business-not-found"
)

// businessPublicPaths are reachable without a session inside the
// /business tree.
var businessPublicPaths = []string{
	BusinessLogin,
	BusinessSignup,
	"/business/signup-success",
	"/business/forgot-password",
	"/business/reset-password",
}

// tenantAllowedExact are the shared public pages a branded domain may
// serve outside its portal tree.
var tenantAllowedExact = []string{
	Unauthorized,
	"/terms",
	"/privacy",
	"/contact",
}

// pathHasPrefix matches whole path segments: "/vendor" covers
// "/vendor/fleet" but not "/vendors".
func pathHasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isBusinessPublic reports whether path is one of the unauthenticated
// business-portal pages.
func isBusinessPublic(path string) bool {
	for _, p := range businessPublicPaths {
		if pathHasPrefix(path, p) {
			return true
		}
	}
	return false
}

// tenantAllowed reports whether a branded domain may serve path at all.
func tenantAllowed(path string) bool {
	if pathHasPrefix(path, BusinessPrefix) {
		return true
	}
	for _, p := range tenantAllowedExact {
		if path == p {
			return true
		}
	}
	return false
}
