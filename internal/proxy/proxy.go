// internal/proxy/proxy.go
//
// Reverse proxy to the rendering upstream.
//
// Every request that survives the guards terminates here.  The branding
// and identity headers were already placed on the request by the
// resolver and session middleware; the proxy adds the forwarding
// headers, proxies the exchange, and turns transport failures into a
// plain 502.
package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/metrics"
)

// New returns a handler proxying to upstream.
func New(upstream *url.URL) http.Handler {
	p := httputil.NewSingleHostReverseProxy(upstream)

	director := p.Director
	p.Director = func(req *http.Request) {
		host := req.Host
		director(req)
		// Preserve the tenant hostname for the renderer; the default
		// director points Host at the upstream address.
		req.Host = upstream.Host
		req.Header.Set("X-Forwarded-Host", host)
		if req.Header.Get("X-Forwarded-Proto") == "" {
			proto := "http"
			if req.TLS != nil {
				proto = "https"
			}
			req.Header.Set("X-Forwarded-Proto", proto)
		}
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		metrics.UpstreamErrorsTotal.Inc()
		zap.S().Errorw("upstream round trip failed",
			"host", r.Host, "path", r.URL.Path, "err", err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
	}

	return p
}
