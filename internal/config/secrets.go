// internal/config/secrets.go
//
// Vault indirection for secret-bearing config values.
//
// A value written as `vault:secret/data-path#key` is replaced with the
// string stored at that KV-v2 location.  Only the fields listed in
// `ResolveSecrets` participate; everything else is taken literally.  The
// resolver is an interface so tests can substitute a map-backed fake.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const vaultPrefix = "vault:"

// SecretResolver is satisfied by *vault.Client.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ResolveSecrets replaces vault: references in-place.  Call once at boot,
// after Load and before opening the database.
func (c *Config) ResolveSecrets(ctx context.Context, r SecretResolver) error {
	fields := []*string{&c.Database.Password, &c.Auth.JWTSecret}
	for _, f := range fields {
		val, err := resolveOne(ctx, r, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}

func resolveOne(ctx context.Context, r SecretResolver, val string) (string, error) {
	if !strings.HasPrefix(val, vaultPrefix) {
		return val, nil
	}
	if r == nil {
		return "", fmt.Errorf("config: %q requires a Vault client, none configured", val)
	}

	ref := strings.TrimPrefix(val, vaultPrefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("config: malformed vault reference %q (want vault:path#key)", val)
	}
	return r.GetKV(ctx, path, key, 0)
}

// DSNWithPassword substitutes the resolved password into the DSN template
// when it carries a %s verb; a template without the verb is returned
// unchanged.
func (d Database) DSNWithPassword() string {
	if strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}
