// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// DateFormat is the day-bucket key format for analytics rows.
const DateFormat = "2006-01-02"

// AnalyticsDay holds the four daily counters. One row per calendar day,
// created lazily on the first event of the day.
type AnalyticsDay struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	PageViews     int64  `json:"page_views"`
	Visitors      int64  `json:"visitors"`
	ServiceClicks int64  `json:"service_clicks"`
	Inquiries     int64  `json:"inquiries"`
}

// CountryDay holds the per-country visitor count for one day.
type CountryDay struct {
	Date     string `json:"date"`
	Country  string `json:"country"`
	Visitors int64  `json:"visitors"`
}

// incrementDay atomically bumps one counter column for the given day,
// inserting the day row if absent. The column name is a compile-time
// constant at every call site.
func (q *Queries) incrementDay(ctx context.Context, date, column string, delta int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO analytics_daily (date, `+column+`) VALUES (?, ?)
		ON CONFLICT (date) DO UPDATE SET `+column+` = `+column+` + excluded.`+column,
		date, delta)
	return err
}

// IncrementPageView bumps page_views and visitors for the given day.
// Every request counts as a new visitor; the counter is deliberately
// not deduplicated.
func (q *Queries) IncrementPageView(ctx context.Context, date string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO analytics_daily (date, page_views, visitors) VALUES (?, 1, 1)
		ON CONFLICT (date) DO UPDATE SET
			page_views = page_views + 1,
			visitors = visitors + 1`,
		date)
	return err
}

// IncrementServiceClick bumps service_clicks for the given day.
func (q *Queries) IncrementServiceClick(ctx context.Context, date string) error {
	return q.incrementDay(ctx, date, "service_clicks", 1)
}

// IncrementInquiry bumps inquiries for the given day.
func (q *Queries) IncrementInquiry(ctx context.Context, date string) error {
	return q.incrementDay(ctx, date, "inquiries", 1)
}

// IncrementCountryVisitor bumps the visitor count for a country on the
// given day.
func (q *Queries) IncrementCountryVisitor(ctx context.Context, date, country string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO analytics_countries (date, country, visitors) VALUES (?, ?, 1)
		ON CONFLICT (date, country) DO UPDATE SET visitors = visitors + 1`,
		date, country)
	return err
}

// ListDailyAnalytics returns the most recent n day rows, newest first.
func (q *Queries) ListDailyAnalytics(ctx context.Context, n int64) ([]AnalyticsDay, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, date, page_views, visitors, service_clicks, inquiries
		FROM analytics_daily ORDER BY date DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []AnalyticsDay
	for rows.Next() {
		var d AnalyticsDay
		if err := rows.Scan(&d.ID, &d.Date, &d.PageViews, &d.Visitors, &d.ServiceClicks, &d.Inquiries); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// GetDailyAnalytics returns the row for one day.
func (q *Queries) GetDailyAnalytics(ctx context.Context, date string) (AnalyticsDay, error) {
	var d AnalyticsDay
	err := q.db.QueryRowContext(ctx, `
		SELECT id, date, page_views, visitors, service_clicks, inquiries
		FROM analytics_daily WHERE date = ?`, date).
		Scan(&d.ID, &d.Date, &d.PageViews, &d.Visitors, &d.ServiceClicks, &d.Inquiries)
	return d, err
}

// ListCountryAnalytics returns per-country visitor totals over the last
// n days, largest first.
func (q *Queries) ListCountryAnalytics(ctx context.Context, since string) ([]CountryDay, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT MIN(date), country, SUM(visitors)
		FROM analytics_countries WHERE date >= ?
		GROUP BY country ORDER BY SUM(visitors) DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CountryDay
	for rows.Next() {
		var c CountryDay
		if err := rows.Scan(&c.Date, &c.Country, &c.Visitors); err != nil {
			return nil, err
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

// PruneAnalytics deletes analytics rows older than the cutoff date.
// Returns the number of day rows removed.
func (q *Queries) PruneAnalytics(ctx context.Context, cutoff string) (int64, error) {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM analytics_countries WHERE date < ?`, cutoff); err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM analytics_daily WHERE date < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Day returns the day-bucket key for a point in time.
func Day(t time.Time) string {
	return t.Format(DateFormat)
}
