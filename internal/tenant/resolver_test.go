// internal/tenant/resolver_test.go

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shorya321/vehicleservice-sub006/internal/business"
)

// fakeDir is an in-memory Directory.
type fakeDir struct {
	subs     map[string]*business.Account
	doms     map[string]*business.Account
	err      error
	subCalls int
	domCalls int
}

func (f *fakeDir) ByCustomDomain(_ context.Context, host string) (*business.Account, error) {
	f.domCalls++
	if f.err != nil {
		return nil, f.err
	}
	if acct, ok := f.doms[host]; ok {
		return acct, nil
	}
	return nil, business.ErrNotFound
}

func (f *fakeDir) BySubdomain(_ context.Context, sub string) (*business.Account, error) {
	f.subCalls++
	if f.err != nil {
		return nil, f.err
	}
	if acct, ok := f.subs[sub]; ok {
		return acct, nil
	}
	return nil, business.ErrNotFound
}

func acmeAccount() *business.Account {
	return &business.Account{
		ID:        "biz-1",
		Name:      "Acme Transfers",
		Subdomain: "acme",
		Status:    business.StatusActive,
		BrandName: sql.NullString{String: "Acme Rides", Valid: true},
		LogoURL:   sql.NullString{String: "https://cdn/acme.png", Valid: true},
	}
}

func TestClassify(t *testing.T) {
	r := NewResolver("platform.test", &fakeDir{})

	cases := []struct {
		host  string
		class Class
		label string
	}{
		{"platform.test", ClassPlatform, ""},
		{"platform.test:3000", ClassPlatform, ""},
		{"PLATFORM.TEST", ClassPlatform, ""},
		{"acme.platform.test", ClassSubdomain, "acme"},
		{"acme.platform.test:8443", ClassSubdomain, "acme"},
		{"a.b.platform.test", ClassSubdomain, "a.b"},
		{"rides.acme.com", ClassUnknown, ""},
		{"notplatform.test", ClassUnknown, ""},
	}
	for _, tc := range cases {
		class, label := r.Classify(tc.host)
		if class != tc.class || label != tc.label {
			t.Errorf("Classify(%q) = (%v, %q), want (%v, %q)",
				tc.host, class, label, tc.class, tc.label)
		}
	}
}

// The platform's own hostname must never trigger a directory lookup.
func TestResolvePlatformSkipsLookup(t *testing.T) {
	dir := &fakeDir{}
	r := NewResolver("platform.test", dir)

	tc := r.Resolve(context.Background(), "platform.test:8080")
	if tc.Class != ClassPlatform || tc.Business != nil {
		t.Fatalf("unexpected context: %+v", tc)
	}
	if dir.subCalls+dir.domCalls != 0 {
		t.Fatalf("platform host performed %d lookups", dir.subCalls+dir.domCalls)
	}
}

func TestResolveSubdomain(t *testing.T) {
	dir := &fakeDir{subs: map[string]*business.Account{"acme": acmeAccount()}}
	r := NewResolver("platform.test", dir)

	tc := r.Resolve(context.Background(), "acme.platform.test")
	if tc.Class != ClassSubdomain || tc.Business == nil || tc.Business.ID != "biz-1" {
		t.Fatalf("unexpected context: %+v", tc)
	}
}

func TestResolveSubdomainMissStaysSubdomain(t *testing.T) {
	r := NewResolver("platform.test", &fakeDir{})

	tc := r.Resolve(context.Background(), "typo.platform.test")
	if tc.Class != ClassSubdomain || tc.Business != nil {
		t.Fatalf("unexpected context: %+v", tc)
	}
	if !tc.TenantOwned() {
		t.Fatal("syntactic subdomain must stay tenant-owned for the isolation guard")
	}
}

func TestResolveCustomDomain(t *testing.T) {
	dir := &fakeDir{doms: map[string]*business.Account{"rides.acme.com": acmeAccount()}}
	r := NewResolver("platform.test", dir)

	tc := r.Resolve(context.Background(), "rides.acme.com")
	if tc.Class != ClassCustomDomain || tc.Business == nil {
		t.Fatalf("unexpected context: %+v", tc)
	}
}

// A database failure degrades to "no business", never to an error the
// caller would surface as a 500.
func TestResolveLookupFailureDegrades(t *testing.T) {
	dir := &fakeDir{err: errors.New("connection refused")}
	r := NewResolver("platform.test", dir)

	tc := r.Resolve(context.Background(), "acme.platform.test")
	if tc.Class != ClassSubdomain || tc.Business != nil {
		t.Fatalf("unexpected context: %+v", tc)
	}
}

func TestMiddlewareSetsBrandingHeaders(t *testing.T) {
	dir := &fakeDir{doms: map[string]*business.Account{"rides.acme.com": acmeAccount()}}
	r := NewResolver("platform.test", dir)

	var got Context
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got = FromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "http://rides.acme.com/business/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got.Class != ClassCustomDomain {
		t.Fatalf("context not attached: %+v", got)
	}

	hd := rec.Header()
	if hd.Get(HeaderBusinessID) != "biz-1" {
		t.Errorf("business id header = %q", hd.Get(HeaderBusinessID))
	}
	if hd.Get(HeaderBrandName) != "Acme Rides" {
		t.Errorf("brand name header = %q", hd.Get(HeaderBrandName))
	}
	if hd.Get(HeaderThemePrimary) != business.DefaultTheme.Primary {
		t.Errorf("primary color header = %q", hd.Get(HeaderThemePrimary))
	}
	if hd.Get(HeaderCustomDomain) != "true" {
		t.Errorf("custom domain flag = %q", hd.Get(HeaderCustomDomain))
	}

	// Same branding forwarded to the upstream request.
	if req.Header.Get(HeaderBusinessID) != "biz-1" {
		t.Errorf("upstream business id header = %q", req.Header.Get(HeaderBusinessID))
	}
}

func TestMiddlewareStripsSpoofedBranding(t *testing.T) {
	r := NewResolver("platform.test", &fakeDir{})

	var got http.Header
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got = req.Header
	}))

	req := httptest.NewRequest(http.MethodGet, "http://platform.test/", nil)
	req.Header.Set(HeaderBusinessID, "spoofed")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.Get(HeaderBusinessID) != "" {
		t.Errorf("spoofed business id forwarded: %q", got.Get(HeaderBusinessID))
	}
}

func TestMiddlewareSubdomainFlagFalse(t *testing.T) {
	dir := &fakeDir{subs: map[string]*business.Account{"acme": acmeAccount()}}
	r := NewResolver("platform.test", dir)

	h := r.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://acme.platform.test/", nil))

	if rec.Header().Get(HeaderCustomDomain) != "false" {
		t.Errorf("custom domain flag = %q", rec.Header().Get(HeaderCustomDomain))
	}
}
