// internal/currency/currency.go
//
// Currency preference resolver.
//
// Context
// -------
// Prices render in the visitor's preferred currency, remembered in a
// cookie that client scripts also read.  When the cookie is missing or
// holds a code outside the enabled set, a default is derived best-effort
// from the Accept-Language region, then the GeoLite2 country, then the
// configured fallback.  Header parsing never raises; an unparseable
// header just lands on the fallback chain's next step.
//
// The resolver only mutates response cookies.  It never blocks or
// redirects a request.
package currency

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shorya321/vehicleservice-sub006/internal/config"
	"github.com/shorya321/vehicleservice-sub006/internal/requestinfo"
)

const cookieMaxAge = 365 * 24 * 3600 // ~1 year

// regionCurrency maps an uppercase region subtag (or GeoIP country ISO
// code) to its currency.  Eurozone members collapse onto EUR.
var regionCurrency = map[string]string{
	"US": "USD", "GB": "GBP", "AE": "AED", "SA": "SAR", "IN": "INR",
	"AU": "AUD", "NZ": "NZD", "CA": "CAD", "JP": "JPY", "CH": "CHF",
	"SG": "SGD", "HK": "HKD", "CN": "CNY", "TR": "TRY", "MX": "MXN",
	"BR": "BRL", "ZA": "ZAR", "SE": "SEK", "NO": "NOK", "DK": "DKK",
	"PL": "PLN", "CZ": "CZK", "TH": "THB", "ID": "IDR", "MY": "MYR",
	// Eurozone
	"AT": "EUR", "BE": "EUR", "HR": "EUR", "CY": "EUR", "EE": "EUR",
	"FI": "EUR", "FR": "EUR", "DE": "EUR", "GR": "EUR", "IE": "EUR",
	"IT": "EUR", "LV": "EUR", "LT": "EUR", "LU": "EUR", "MT": "EUR",
	"NL": "EUR", "PT": "EUR", "SK": "EUR", "SI": "EUR", "ES": "EUR",
}

// langCurrency is the coarse fallback for language-only tags.
var langCurrency = map[string]string{
	"en": "USD", "fr": "EUR", "de": "EUR", "es": "EUR", "it": "EUR",
	"nl": "EUR", "pt": "EUR", "ar": "AED", "hi": "INR", "ja": "JPY",
	"zh": "CNY", "tr": "TRY",
}

// Resolver applies the cookie policy.  Safe for concurrent use.
type Resolver struct {
	cookie  string
	def     string
	enabled map[string]struct{}
	secure  bool
}

// NewResolver builds a Resolver from the currency config section.
// secure marks the cookie Secure (production deployments).
func NewResolver(cfg config.Currency, secure bool) *Resolver {
	enabled := make(map[string]struct{}, len(cfg.Enabled))
	for _, code := range cfg.Enabled {
		enabled[strings.ToUpper(code)] = struct{}{}
	}
	return &Resolver{
		cookie:  cfg.Cookie,
		def:     strings.ToUpper(cfg.Default),
		enabled: enabled,
		secure:  secure,
	}
}

// Middleware ensures every response carries a valid currency cookie.
func (cr *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie(cr.cookie); err == nil {
			if _, ok := cr.enabled[strings.ToUpper(ck.Value)]; ok {
				next.ServeHTTP(w, r)
				return
			}
		}

		code := cr.derive(r)
		http.SetCookie(w, &http.Cookie{
			Name:     cr.cookie,
			Value:    code,
			Path:     "/",
			MaxAge:   cookieMaxAge,
			SameSite: http.SameSiteLaxMode,
			Secure:   cr.secure,
			// Not HttpOnly: the pricing UI reads this cookie directly.
		})
		zap.S().Debugw("currency cookie set", "code", code)

		next.ServeHTTP(w, r)
	})
}

// derive walks the fallback chain: Accept-Language region, language-only
// tag, GeoIP country, configured default.  Every step is filtered by the
// enabled set.
func (cr *Resolver) derive(r *http.Request) string {
	if code, ok := cr.fromLanguage(r.Header.Get("Accept-Language")); ok {
		return code
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		if code, ok := cr.allow(regionCurrency[info.Geo.CountryISO]); ok {
			return code
		}
	}
	return cr.def
}

// fromLanguage maps the Accept-Language header to a currency.  The first
// tag carrying a matching region subtag wins ("fr,en-US" → US → USD);
// only when no tag has one does the bare language of the earliest
// mappable tag apply ("fr,de" → "fr" → EUR).
func (cr *Resolver) fromLanguage(header string) (string, bool) {
	tags := languageTags(header)
	if len(tags) == 0 {
		return "", false
	}

	for _, tag := range tags {
		parts := strings.Split(tag, "-")
		if len(parts) < 2 {
			continue
		}
		region := strings.ToUpper(parts[len(parts)-1])
		if len(region) != 2 {
			continue
		}
		if code, ok := cr.allow(regionCurrency[region]); ok {
			return code, true
		}
	}

	for _, tag := range tags {
		lang := strings.ToLower(strings.Split(tag, "-")[0])
		if code, ok := cr.allow(langCurrency[lang]); ok {
			return code, true
		}
	}
	return "", false
}

// languageTags splits an Accept-Language header into bare tags, dropping
// quality values and empty segments.
func languageTags(header string) []string {
	if header == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		if i := strings.Index(tag, ";"); i != -1 {
			tag = strings.TrimSpace(tag[:i])
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// allow filters a candidate through the enabled set.
func (cr *Resolver) allow(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	if _, ok := cr.enabled[code]; !ok {
		return "", false
	}
	return code, true
}
