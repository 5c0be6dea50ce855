// internal/config/model.go
//
// Typed configuration model for the edge gateway.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                 – dotenv values,
//   • `conf/gateway.yaml`                  – primary static file,
//   • `VS_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client at boot, so the model never stores Vault
// URIs past startup—only plain strings.
//
// Validation happens immediately after unmarshal; the gateway fails fast
// if required fields are missing.  A missing or malformed `site.url`
// would silently break hostname classification, so it is `required,url`
// rather than a runtime fallback.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"net/url"
	"strings"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Site section
//

// Site identifies the platform itself.  URL is the canonical public
// origin of the marketplace; its hostname is the pivot for tenant
// classification.  Environment gates the dev-only conveniences (tenant
// fall-through, HTTPS skip).
type Site struct {
	URL         string `koanf:"url"         validate:"required,url"`
	Environment string `koanf:"environment" validate:"required,oneof=development staging production"`
}

// PlatformHost returns the hostname of Site.URL without any port.
func (s Site) PlatformHost() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

//
// Currency section
//

// Currency configures the preference cookie.  Enabled is the set of
// ISO-4217 codes the platform can actually charge in; anything else in
// the cookie is rewritten.
type Currency struct {
	Cookie  string   `koanf:"cookie"  validate:"required"`
	Default string   `koanf:"default" validate:"required,len=3"`
	Enabled []string `koanf:"enabled" validate:"required,min=1,dive,len=3"`
}

//
// Auth section
//

// Auth configures the hosted-auth session flow.  JWTSecret verifies the
// access-token cookie locally; RefreshURL is the hosted provider's token
// endpoint, used only when the access token has expired and a refresh
// token is present.
type Auth struct {
	JWTSecret     string `koanf:"jwt_secret"     validate:"required"`
	RefreshURL    string `koanf:"refresh_url"    validate:"omitempty,url"`
	AccessCookie  string `koanf:"access_cookie"  validate:"required"`
	RefreshCookie string `koanf:"refresh_cookie" validate:"required"`
}

//
// Database section
//

// Database holds the DSN template and its secret.  DSN may contain one
// `%s` verb for the password; Password may be a literal or a
// `vault:mount/path#key` reference resolved at boot.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Upstream section
//

// Upstream is the rendering application the gateway fronts.  Every
// request that survives the guards is proxied here.
type Upstream struct {
	URL string `koanf:"url" validate:"required,url"`
}

//
// GeoIP section (optional)
//

// GeoIP points at a local GeoLite2 database.  Empty path disables geo
// enrichment; the currency resolver then skips its country fallback.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // VS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the process lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Site     Site     `koanf:"site"`
	Currency Currency `koanf:"currency"`
	Auth     Auth     `koanf:"auth"`
	Database Database `koanf:"database"`
	Upstream Upstream `koanf:"upstream"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

// IsDevelopment reports whether the dev-only conveniences apply.
func (c *Config) IsDevelopment() bool {
	return c.Site.Environment == "development"
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Site.Environment == "production"
}
