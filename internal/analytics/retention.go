// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avenir-labs/avenir-site/internal/store"
)

// Retention prunes analytics rows older than the configured window and
// keeps the GeoIP database fresh.
type Retention struct {
	tracker *Tracker
	days    int
	cron    *cron.Cron
}

// NewRetention creates the retention job. days <= 0 disables pruning.
func NewRetention(tracker *Tracker, days int) *Retention {
	return &Retention{
		tracker: tracker,
		days:    days,
		cron:    cron.New(),
	}
}

// Start schedules the nightly jobs and starts the cron scheduler.
func (r *Retention) Start() error {
	// Daily at 00:30: prune old analytics rows
	if r.days > 0 {
		if _, err := r.cron.AddFunc("30 0 * * *", r.prune); err != nil {
			return err
		}
	}

	// Daily at 03:00: reload the GeoIP database if it changed on disk
	if r.tracker.geo != nil {
		if _, err := r.cron.AddFunc("0 3 * * *", func() {
			if err := r.tracker.geo.Reload(); err != nil {
				slog.Warn("GeoIP reload failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	r.cron.Start()
	slog.Info("analytics retention started", "days", r.days)
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (r *Retention) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// prune removes analytics rows older than the retention window.
func (r *Retention) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := store.Day(time.Now().AddDate(0, 0, -r.days))
	n, err := r.tracker.queries.PruneAnalytics(ctx, cutoff)
	if err != nil {
		slog.Error("analytics prune failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("pruned old analytics rows", "rows", n, "cutoff", cutoff)
	}
}
