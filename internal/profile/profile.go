// internal/profile/profile.go
//
// Platform-user profile reads.
//
// A Profile links an auth identity to a marketplace role.  Only
// status=active profiles may pass the role guards; the repository does
// not filter on status so the guard can distinguish "unknown identity"
// from "deactivated account" in its logs.
package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Roles assignable to a platform profile.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
	RoleDriver   = "driver"
)

// Profile status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ErrNotFound is returned when no profile row matches the identity.
var ErrNotFound = errors.New("profile not found")

// Record mirrors one row in profiles.  ID equals the auth identity ID.
type Record struct {
	ID     string `db:"id"`
	Role   string `db:"role"`
	Status string `db:"status"`
}

// Active reports whether the profile may authenticate into gated areas.
func (r *Record) Active() bool { return r.Status == StatusActive }

// Repo wraps the shared platform database pool.
type Repo struct {
	db *sqlx.DB
}

// NewRepo returns a Repo over db.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// ByID fetches the profile for one auth identity.
func (r *Repo) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `
        SELECT id, role, status
        FROM   profiles
        WHERE  id = ?
        LIMIT  1`

	var rec Record
	err := r.db.GetContext(ctx, &rec, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
