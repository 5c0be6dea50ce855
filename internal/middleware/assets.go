// internal/middleware/assets.go
//
// Static-asset bypass.
//
// Image and framework-asset requests carry no tenant or session
// decisions, so they skip the edge pipeline (currency, session refresh,
// tenant resolution, guards) and go straight to the upstream, matching
// the inbound matcher pattern
// /((?!_next/static|_next/image|favicon.ico|.*\.(svg|png|jpg|jpeg|gif|webp)$).*).
package middleware

import (
	"net/http"
	"path"
	"strings"
)

var assetExtensions = map[string]struct{}{
	".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
}

// IsStaticAsset reports whether p is excluded from the edge pipeline.
func IsStaticAsset(p string) bool {
	if strings.HasPrefix(p, "/_next/static/") || strings.HasPrefix(p, "/_next/image") {
		return true
	}
	if p == "/favicon.ico" {
		return true
	}
	_, ok := assetExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

// AssetBypass routes static-asset requests directly to bypass, leaving
// everything else on the normal chain.
func AssetBypass(bypass http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsStaticAsset(r.URL.Path) {
				bypass.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
