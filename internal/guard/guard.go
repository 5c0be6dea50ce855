// internal/guard/guard.go
//
// Guard aggregate and shared redirect plumbing.
//
// Both guards only ever answer with a redirect or a pass-through.  They
// never render an error page: a policy violation lands the visitor on
// login, a dashboard, or /unauthorized, and a collaborator failure
// produces the least-privileged redirect rather than a 500.
package guard

import (
	"context"
	"net/http"

	"github.com/shorya321/vehicleservice-sub006/internal/business"
	"github.com/shorya321/vehicleservice-sub006/internal/metrics"
	"github.com/shorya321/vehicleservice-sub006/internal/profile"
)

// ProfileSource answers identity → platform profile.  Implemented by
// *profile.Repo.
type ProfileSource interface {
	ByID(ctx context.Context, id string) (*profile.Record, error)
}

// MembershipSource answers identity → business membership.  Implemented
// by *business.Repo.
type MembershipSource interface {
	UserByIdentity(ctx context.Context, identityID string) (*business.User, error)
}

// Guard evaluates route isolation and role access for every request.
type Guard struct {
	platformOrigin string // scheme://host[:port], no trailing slash
	dev            bool
	profiles       ProfileSource
	members        MembershipSource
}

// New builds a Guard.  platformOrigin is the canonical site URL; dev
// enables the unresolved-tenant fall-through.
func New(platformOrigin string, dev bool, profiles ProfileSource, members MembershipSource) *Guard {
	return &Guard{
		platformOrigin: platformOrigin,
		dev:            dev,
		profiles:       profiles,
		members:        members,
	}
}

// redirect issues the terminal guard decision and records its reason.
func redirect(w http.ResponseWriter, r *http.Request, target, reason string) {
	metrics.RedirectTotal.WithLabelValues(reason).Inc()
	http.Redirect(w, r, target, http.StatusFound)
}
