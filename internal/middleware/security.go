// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security – forces HTTPS (2 years + preload)
//   • X-Frame-Options           – click-jacking defence
//   • X-Content-Type-Options    – MIME-sniffing defence
//   • Referrer-Policy           – drops path/query from Referer
//   • Permissions-Policy        – disables powerful features by default
//
// Notes
// -----
// • Headers are injected when the status is first written.  Anything a
//   handler (or a proxied upstream response) already set wins; only
//   missing headers are filled in.
// • No Content-Security-Policy here: the upstream renderer owns its own
//   script/style sources and sets its own policy.

package middleware

import "net/http"

var securityHeaders = [...][2]string{
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload"},
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

// securityWriter fills missing headers just before the header block is
// flushed.  Mutating the map any later is a silent no-op on a real
// http.Server.
type securityWriter struct {
	http.ResponseWriter
	injected bool
}

func (sw *securityWriter) WriteHeader(code int) {
	sw.inject()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *securityWriter) Write(b []byte) (int, error) {
	sw.inject()
	return sw.ResponseWriter.Write(b)
}

func (sw *securityWriter) inject() {
	if sw.injected {
		return
	}
	sw.injected = true
	h := sw.ResponseWriter.Header()
	for _, kv := range securityHeaders {
		if h.Get(kv[0]) == "" {
			h.Set(kv[0], kv[1])
		}
	}
}

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &securityWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		// Handler wrote nothing: the implicit 200 still gets headers.
		sw.inject()
	})
}
