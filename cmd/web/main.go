// cmd/web/main.go
//
// Edge gateway – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load config (conf/.env → conf/gateway.yaml → VS_ env overrides).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve vault: secret references, open the platform DB, and log an
//     active-tenant count as an early sanity check.
//
//  4. Build the branding cache (lazy-loads each business on first hit).
//
//  5. Assemble the edge pipeline:
//
//     • request id / logging / security headers
//     • static-asset bypass          – straight to the upstream proxy
//     • rate limit, request info     – UA, geo, language
//     • currency cookie              – set when missing or invalid
//     • session refresh              – identity or anonymous, never fails
//     • tenant resolution            – host classification + branding
//     • route isolation, role guards – redirect or fall through
//     • reverse proxy                – forward to the rendering upstream
//
//  6. /metrics and /healthz are served outside the pipeline; everything
//     else is wrapped with ForceHTTPS.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shorya321/vehicleservice-sub006/internal/auth"
	"github.com/shorya321/vehicleservice-sub006/internal/business"
	"github.com/shorya321/vehicleservice-sub006/internal/config"
	"github.com/shorya321/vehicleservice-sub006/internal/currency"
	"github.com/shorya321/vehicleservice-sub006/internal/database"
	"github.com/shorya321/vehicleservice-sub006/internal/guard"
	"github.com/shorya321/vehicleservice-sub006/internal/logger"
	"github.com/shorya321/vehicleservice-sub006/internal/middleware"
	"github.com/shorya321/vehicleservice-sub006/internal/profile"
	"github.com/shorya321/vehicleservice-sub006/internal/proxy"
	"github.com/shorya321/vehicleservice-sub006/internal/requestinfo"
	"github.com/shorya321/vehicleservice-sub006/internal/server"
	"github.com/shorya321/vehicleservice-sub006/internal/tenant"
	"github.com/shorya321/vehicleservice-sub006/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Secrets and platform DB ─────────────────────────────────────
	//
	var secrets config.SecretResolver
	if strings.HasPrefix(cfg.Database.Password, "vault:") ||
		strings.HasPrefix(cfg.Auth.JWTSecret, "vault:") {
		vcli, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		secrets = vcli
	}
	if err := cfg.ResolveSecrets(ctx, secrets); err != nil {
		logOut.Fatalf("resolve secrets: %v", err)
	}

	logOut.Infow("connecting to platform DB")
	db, err := database.OpenWithOptions(ctx, cfg.Database.DSNWithPassword(), database.Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         2,
		RetryBackoff:    500 * time.Millisecond,
	})
	if err != nil {
		logOut.Fatalf("connect platform DB: %v", err)
	}
	defer db.Close()

	// Log active-business count as an early sanity check.
	var active int
	_ = db.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM business_accounts WHERE status = ?`, business.StatusActive)
	logOut.Infow("platform DB online", "active_businesses", active)

	//
	// ── 2.  Branding cache and resolver ─────────────────────────────────
	//
	businesses := business.NewRepo(db)
	cache := tenant.NewCache(businesses, tenant.IdleTTL, tenant.MaxEntries)
	defer cache.Close()

	resolver := tenant.NewResolver(cfg.Site.PlatformHost(), cache)

	//
	// ── 3.  Request plumbing ────────────────────────────────────────────
	//
	requestinfo.OpenGeo(cfg.GeoIP.DBPath)
	defer requestinfo.CloseGeo()

	sessions := auth.NewClient(cfg.Auth, cfg.IsProduction())
	currencies := currency.NewResolver(cfg.Currency, cfg.IsProduction())
	guards := guard.New(strings.TrimRight(cfg.Site.URL, "/"), cfg.IsDevelopment(),
		profile.NewRepo(db), businesses)
	limiter := middleware.NewRateLimiter(20, 40)
	defer limiter.Close()

	upstreamURL, err := url.Parse(cfg.Upstream.URL)
	if err != nil {
		logOut.Fatalf("parse upstream url: %v", err)
	}
	upstream := proxy.New(upstreamURL)

	//
	// ── 4.  Edge pipeline ───────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logOut.Desugar()))
	r.Use(middleware.Security)
	r.Use(middleware.AssetBypass(upstream))
	r.Use(limiter.Middleware)
	r.Use(requestinfo.Enrich)
	r.Use(currencies.Middleware)
	r.Use(sessions.Middleware)
	r.Use(resolver.Middleware)
	r.Use(guards.Isolation)
	r.Use(guards.Roles)
	r.Handle("/*", upstream)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS && !cfg.IsDevelopment(), r))

	//
	// ── 5.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, mux)

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Errorw("shutdown incomplete", "err", err)
	}
}
