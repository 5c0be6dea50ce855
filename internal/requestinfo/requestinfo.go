// internal/requestinfo/requestinfo.go
//
// Per-request client attributes.
//
/*
Context
--------
RequestInfo bundles the client attributes the gateway logs and the
currency resolver consumes: parsed User-Agent, primary Accept-Language
tag, client IP, and best-effort GeoLite2 country.  It is attached to the
request context by the Enrich middleware and read by name, never
reparsed.

The geo reader is process-global and optional.  Deployments without a
GeoLite2 database simply get empty Country fields; nothing downstream may
require geo data.
*/
package requestinfo

import (
	"net"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// UA carries the parsed User-Agent attributes the gateway cares about.
type UA struct {
	Browser string
	Device  string // "Desktop", "Phone", "Tablet", "Bot", "Other"
	IsBot   bool
}

// Geo carries the best-effort GeoLite2 lookup result.
type Geo struct {
	IP         net.IP
	CountryISO string // "" when no reader or no match
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Lang      string // primary Accept-Language subtag, lower-cased
	Timestamp time.Time
}

//
// Geo reader (process-global, optional)
//

var geoReader *geoip2.Reader

// OpenGeo opens the GeoLite2 database at path.  An empty path is a no-op;
// a failed open is logged and geo enrichment stays disabled.
func OpenGeo(path string) {
	if path == "" {
		return
	}
	r, err := geoip2.Open(path)
	if err != nil {
		zap.S().Warnw("geoip database unavailable", "path", path, "err", err)
		return
	}
	geoReader = r
}

// CloseGeo releases the reader.  Call on shutdown.
func CloseGeo() {
	if geoReader != nil {
		_ = geoReader.Close()
		geoReader = nil
	}
}

//
// Parsing helpers
//

// parseUA maps a raw User-Agent header onto the trimmed UA struct.
func parseUA(raw string) UA {
	u := uasurfer.Parse(raw)

	var device string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		device = "Desktop"
	case uasurfer.DevicePhone, uasurfer.DeviceWearable:
		device = "Phone"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	default:
		device = "Other"
	}
	if u.IsBot() {
		device = "Bot"
	}

	return UA{
		Browser: u.Browser.Name.String(),
		Device:  device,
		IsBot:   u.IsBot(),
	}
}

// lookupGeo returns best-effort country data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.Country(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{IP: ip, CountryISO: rec.Country.IsoCode}
}
