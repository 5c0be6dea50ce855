// internal/business/repository.go
//
// Read-side queries for tenant resolution and the business-portal guard.
//
// Custom-domain lookups go through the get_business_by_custom_domain
// stored procedure, the same entry point the domain-verification flow
// writes through, so verification semantics live in one place in the
// schema.  Subdomain and membership lookups are plain parameterised
// reads.  All helpers accept a context so lookups respect request
// deadlines.
package business

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no authoritative row matches.
var ErrNotFound = errors.New("business not found")

const accountColumns = `id, name, subdomain, custom_domain,
        custom_domain_verified, status, brand_name, logo_url, theme_config`

// Repo wraps the shared platform database pool.
type Repo struct {
	db *sqlx.DB
}

// NewRepo returns a Repo over db.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// ByCustomDomain resolves a verified custom domain to its account.  Rows
// that are unverified or not active are treated as absent, never as a
// partial match.
func (r *Repo) ByCustomDomain(ctx context.Context, host string) (*Account, error) {
	var acct Account
	err := r.db.GetContext(ctx, &acct, `CALL get_business_by_custom_domain(?)`, host)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !acct.CustomDomainVerified || acct.Status != StatusActive {
		return nil, ErrNotFound
	}
	return &acct, nil
}

// BySubdomain resolves a platform-assigned subdomain label to its active
// account.
func (r *Repo) BySubdomain(ctx context.Context, sub string) (*Account, error) {
	const q = `
        SELECT ` + accountColumns + `
        FROM   business_accounts
        WHERE  subdomain = ?
          AND  status = ?
        LIMIT  1`

	var acct Account
	err := r.db.GetContext(ctx, &acct, q, sub, StatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// UserByIdentity resolves an authenticated identity to its active
// business membership, joined with the parent account's status so the
// guard can check both in one round trip.
func (r *Repo) UserByIdentity(ctx context.Context, identityID string) (*User, error) {
	const q = `
        SELECT bu.id, bu.business_id, bu.role, bu.is_active,
               ba.status AS account_status
        FROM   business_users bu
        JOIN   business_accounts ba ON ba.id = bu.business_id
        WHERE  bu.user_id = ?
          AND  bu.is_active = TRUE
        LIMIT  1`

	var u User
	err := r.db.GetContext(ctx, &u, q, identityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
