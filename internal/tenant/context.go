// internal/tenant/context.go
//
// Typed per-request tenant context.
//
// The resolver's findings travel two ways: as this typed value on the
// request context for in-process consumers, and as branding headers for
// the upstream renderer.  Downstream code reads the struct by name; the
// raw header keys exist only at the proxy boundary.
package tenant

import (
	"context"

	"github.com/shorya321/vehicleservice-sub006/internal/business"
)

// Class is the hostname classification for one request.
type Class int

const (
	// ClassPlatform is the marketplace's own canonical hostname.
	ClassPlatform Class = iota
	// ClassSubdomain is a hostname under the platform's domain,
	// whether or not a business owns it.
	ClassSubdomain
	// ClassCustomDomain is a verified white-label domain resolved to
	// its owning business.
	ClassCustomDomain
	// ClassUnknown is a foreign hostname with no business claim; it is
	// served the platform experience.
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassPlatform:
		return "platform"
	case ClassSubdomain:
		return "subdomain"
	case ClassCustomDomain:
		return "custom-domain"
	default:
		return "unknown"
	}
}

// Context is the resolved tenant state for one request.  Business is nil
// when the hostname carries no (active) business claim.
type Context struct {
	Class    Class
	Host     string // port-stripped, lower-cased
	Business *business.Account
}

// TenantOwned reports whether the route-isolation guard applies: any
// hostname that looks tenant-owned, resolved or not.
func (c Context) TenantOwned() bool {
	return c.Class == ClassSubdomain || c.Class == ClassCustomDomain
}

type ctxKey struct{}

// WithContext attaches the tenant context to ctx.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext returns the tenant context attached by the resolver
// middleware.  The zero value (ClassPlatform, no business) is returned
// for requests that bypassed resolution.
func FromContext(ctx context.Context) Context {
	tc, _ := ctx.Value(ctxKey{}).(Context)
	return tc
}
