// internal/business/model.go
//
// Row types for the business_accounts and business_users tables.
//
// A business occupies either a platform-assigned subdomain or a verified
// custom domain.  Operational state is a plain status enum rather than
// the nullable-timestamp pair used elsewhere in the schema, because the
// admin back office drives explicit pending → active → suspended
// transitions.
package business

import (
	"database/sql"
	"encoding/json"
)

// Account status values.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Business user roles.
const (
	RoleOwner    = "owner"
	RoleOperator = "operator"
)

// Theme carries the three accent colors a tenant may override.
type Theme struct {
	Primary   string `json:"primary_color"`
	Secondary string `json:"secondary_color"`
	Tertiary  string `json:"tertiary_color"`
}

// DefaultTheme is applied when theme_config is NULL or partially filled.
var DefaultTheme = Theme{
	Primary:   "#1a1a2e",
	Secondary: "#c9a227",
	Tertiary:  "#f5f0e6",
}

// Account mirrors one row in business_accounts.  A custom domain is only
// authoritative for tenant resolution once CustomDomainVerified is true
// and Status is active; the repository enforces both.
type Account struct {
	ID                   string         `db:"id"`
	Name                 string         `db:"name"`
	Subdomain            string         `db:"subdomain"`
	CustomDomain         sql.NullString `db:"custom_domain"`
	CustomDomainVerified bool           `db:"custom_domain_verified"`
	Status               string         `db:"status"`
	BrandName            sql.NullString `db:"brand_name"`
	LogoURL              sql.NullString `db:"logo_url"`
	ThemeConfig          []byte         `db:"theme_config"` // raw JSON, nullable
}

// DisplayName prefers the white-label brand name over the legal name.
func (a *Account) DisplayName() string {
	if a.BrandName.Valid && a.BrandName.String != "" {
		return a.BrandName.String
	}
	return a.Name
}

// Theme decodes theme_config, filling any missing color from
// DefaultTheme.  Malformed JSON degrades to the defaults; branding is
// cosmetic and must never fail a request.
func (a *Account) Theme() Theme {
	th := DefaultTheme
	if len(a.ThemeConfig) == 0 {
		return th
	}
	var raw Theme
	if err := json.Unmarshal(a.ThemeConfig, &raw); err != nil {
		return th
	}
	if raw.Primary != "" {
		th.Primary = raw.Primary
	}
	if raw.Secondary != "" {
		th.Secondary = raw.Secondary
	}
	if raw.Tertiary != "" {
		th.Tertiary = raw.Tertiary
	}
	return th
}

// User mirrors one row in business_users joined with its parent account's
// status.  A portal request must resolve to exactly one active User whose
// AccountStatus is active.
type User struct {
	ID            string `db:"id"`
	BusinessID    string `db:"business_id"`
	Role          string `db:"role"`
	IsActive      bool   `db:"is_active"`
	AccountStatus string `db:"account_status"`
}

// CanAccessPortal reports whether this membership admits the holder to
// the business portal.
func (u *User) CanAccessPortal() bool {
	return u.IsActive && u.AccountStatus == StatusActive
}
