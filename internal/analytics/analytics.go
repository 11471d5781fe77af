// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics tracks site traffic into daily counters: page views,
// visitors, service detail clicks, and contact inquiries, plus per-country
// visitor counts when GeoIP is available.
package analytics

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/avenir-labs/avenir-site/internal/geoip"
	"github.com/avenir-labs/avenir-site/internal/store"
	"github.com/avenir-labs/avenir-site/internal/util"
)

// counterTimeout bounds the background database writes.
const counterTimeout = 5 * time.Second

// skippedExtensions are static asset suffixes that never count as page views.
var skippedExtensions = map[string]bool{
	".js":    true,
	".css":   true,
	".map":   true,
	".ico":   true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
	".svg":   true,
	".webp":  true,
	".avif":  true,
	".woff":  true,
	".woff2": true,
	".ttf":   true,
	".eot":   true,
	".txt":   true,
	".xml":   true,
}

// Tracker records traffic events. All writes are fire-and-forget so a slow
// or broken counter never delays a response.
type Tracker struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewTracker creates a Tracker. geo may be nil when GeoIP is disabled.
func NewTracker(db *sql.DB, geo *geoip.Lookup) *Tracker {
	return &Tracker{
		queries: store.New(db),
		geo:     geo,
	}
}

// shouldTrack reports whether a request counts as a page view.
// Only successful-looking GET page loads count: no assets, no API calls,
// no crawlers.
func shouldTrack(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	p := r.URL.Path
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/uploads/") {
		return false
	}
	if ext := strings.ToLower(path.Ext(p)); ext != "" && skippedExtensions[ext] {
		return false
	}
	if ua := useragent.Parse(r.UserAgent()); ua.Bot {
		return false
	}
	return true
}

// Middleware counts qualifying requests as page views and attributes the
// visitor to a country when GeoIP is enabled.
func (t *Tracker) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldTrack(r) {
				ip := util.RealIP(r)
				go t.recordPageView(ip)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recordPageView bumps the daily page view counters and, when possible,
// the per-country visitor count.
func (t *Tracker) recordPageView(ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
	defer cancel()

	date := store.Day(time.Now())
	if err := t.queries.IncrementPageView(ctx, date); err != nil {
		slog.Error("recording page view", "error", err)
		return
	}

	if t.geo == nil {
		return
	}
	if country := t.geo.LookupCountry(ip); country != "" {
		if err := t.queries.IncrementCountryVisitor(ctx, date, country); err != nil {
			slog.Error("recording country visitor", "error", err)
		}
	}
}

// TrackServiceClick bumps today's service click counter in the background.
func (t *Tracker) TrackServiceClick() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := t.queries.IncrementServiceClick(ctx, store.Day(time.Now())); err != nil {
			slog.Error("recording service click", "error", err)
		}
	}()
}

// TrackInquiry bumps today's inquiry counter in the background.
func (t *Tracker) TrackInquiry() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := t.queries.IncrementInquiry(ctx, store.Day(time.Now())); err != nil {
			slog.Error("recording inquiry", "error", err)
		}
	}()
}
