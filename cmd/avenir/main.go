// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/avenir-labs/avenir-site/internal/analytics"
	"github.com/avenir-labs/avenir-site/internal/assist"
	"github.com/avenir-labs/avenir-site/internal/cache"
	"github.com/avenir-labs/avenir-site/internal/config"
	"github.com/avenir-labs/avenir-site/internal/geoip"
	"github.com/avenir-labs/avenir-site/internal/handler/api"
	"github.com/avenir-labs/avenir-site/internal/middleware"
	"github.com/avenir-labs/avenir-site/internal/session"
	"github.com/avenir-labs/avenir-site/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Avenir Labs - company site and admin API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_DB_PATH           SQLite database path (default: ./data/avenir.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_STATIC_DIR        Frontend build directory (default: ./web/dist)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_UPLOADS_DIR       Media uploads directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_GEOIP_DB_PATH     GeoLite2-Country.mmdb path for visitor geolocation (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AVENIR_OPENAI_API_KEY    OpenAI API key for content drafting (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("avenir %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Session manager backed by the sessions table
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Cache backend: Redis when configured, in-memory otherwise
	appCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory", "max_size", cfg.CacheMaxSize)
	}

	// GeoIP lookup for country analytics. Runs disabled without a database
	// file, visitors then count under the unknown country bucket.
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip disabled", "error", err)
		} else {
			slog.Info("geoip initialized", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()

	tracker := analytics.NewTracker(db, geo)

	// Nightly pruning of analytics rows past the retention window
	retention := analytics.NewRetention(tracker, cfg.AnalyticsRetentionDays)
	if err := retention.Start(); err != nil {
		return fmt.Errorf("starting analytics retention: %w", err)
	}
	defer retention.Stop()

	// AI drafting assistant, nil unless an API key is configured
	assistSvc := assist.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if assistSvc != nil {
		slog.Info("assist service initialized", "model", cfg.OpenAIModel)
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized")

	apiHandler := api.NewHandler(api.Config{
		DB:         db,
		Sessions:   sessionManager,
		Tracker:    tracker,
		Cache:      appCache,
		Assist:     assistSvc,
		Protection: loginProtection,
		UploadDir:  cfg.UploadsDir,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	// CSRF protection via Fetch metadata. The contact form endpoint is
	// exempted so external integrations can post inquiries directly.
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	r.Use(middleware.SkipCSRF("/api/messages"))
	r.Use(middleware.CSRF(csrfConfig))
	slog.Info("CSRF protection initialized")

	r.Route("/api", func(r chi.Router) {
		apiRateLimiter := middleware.NewGlobalRateLimiter(100.0, 200)
		r.Use(apiRateLimiter.Middleware())

		r.Get("/health", apiHandler.Health)

		// Public catalog and content
		r.Get("/services", apiHandler.ListServices)
		r.Get("/services/{id}", apiHandler.GetService)
		r.Get("/solutions", apiHandler.ListSolutions)
		r.Get("/solutions/{id}", apiHandler.GetSolution)
		r.Get("/resources", apiHandler.ListResources)
		r.Get("/resources/featured", apiHandler.ListFeaturedResources)
		r.Get("/resources/{id}", apiHandler.GetResource)
		r.Get("/company-info/{type}", apiHandler.GetCompanyInfo)

		// Public contact form
		r.Post("/messages", apiHandler.CreateMessage)

		// Auth routes with tighter per-IP limits
		r.Group(func(r chi.Router) {
			authRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
			r.Use(authRateLimiter.Middleware())

			r.Post("/register", apiHandler.Register)
			r.With(loginProtection.Middleware()).Post("/login", apiHandler.Login)
			r.Post("/logout", apiHandler.Logout)
		})

		// Authenticated account routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth())

			r.Get("/user", apiHandler.CurrentUser)
			r.Patch("/user", apiHandler.UpdateProfile)
			r.Post("/user/change-password", apiHandler.ChangePassword)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Post("/services", apiHandler.CreateService)
			r.Put("/services/{id}", apiHandler.UpdateService)
			r.Delete("/services/{id}", apiHandler.DeleteService)

			r.Post("/solutions", apiHandler.CreateSolution)
			r.Put("/solutions/{id}", apiHandler.UpdateSolution)
			r.Delete("/solutions/{id}", apiHandler.DeleteSolution)

			r.Post("/resources", apiHandler.CreateResource)
			r.Put("/resources/{id}", apiHandler.UpdateResource)
			r.Delete("/resources/{id}", apiHandler.DeleteResource)

			r.Put("/company-info/{type}", apiHandler.UpdateCompanyInfo)

			r.Get("/messages", apiHandler.ListMessages)
			r.Patch("/messages/{id}/read", apiHandler.MarkMessageRead)
			r.Delete("/messages/{id}", apiHandler.DeleteMessage)

			r.Get("/analytics", apiHandler.GetAnalytics)
			r.Get("/analytics/countries", apiHandler.GetCountryAnalytics)

			r.Post("/media", apiHandler.UploadMedia)
			r.Get("/media", apiHandler.ListMedia)
			r.Delete("/media/{id}", apiHandler.DeleteMedia)

			r.Post("/assist/draft", apiHandler.GenerateDraft)

			r.Get("/users", apiHandler.ListUsers)
			r.Patch("/users/{id}/admin", apiHandler.SetUserAdmin)
			r.Delete("/users/{id}", apiHandler.DeleteUser)
		})
	})

	// Serve uploaded media. Uploads: cache for 1 week (604800 seconds)
	uploadsHandler := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	// Hashed build assets: cache for 1 year (31536000 seconds)
	assetsHandler := middleware.StaticCache(31536000)(http.FileServer(http.Dir(cfg.StaticDir)))
	r.Handle("/assets/*", assetsHandler)

	// SPA fallback: any other GET serves the frontend, with page view
	// tracking for visitor analytics
	spa := tracker.Middleware()(spaHandler(cfg.StaticDir))
	r.NotFound(spa.ServeHTTP)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// spaHandler serves files from the frontend build directory, falling back to
// index.html for client-side routes. The fallback is served uncacheable so
// browsers pick up new asset hashes after each deploy.
func spaHandler(staticDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(staticDir))
	index := filepath.Join(staticDir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean the URL path before mapping it onto the filesystem so
		// .. sequences cannot escape the build directory.
		cleanPath := path.Clean("/" + r.URL.Path)
		filePath := filepath.Join(staticDir, filepath.FromSlash(cleanPath))

		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, index)
	})
}
