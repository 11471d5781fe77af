// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/avenir-labs/avenir-site/internal/geoip"
	"github.com/avenir-labs/avenir-site/internal/store"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

// CountryAnalyticsResponse is one country's visitor total over the
// requested window.
type CountryAnalyticsResponse struct {
	Country  string `json:"country"`
	Name     string `json:"name"`
	Visitors int64  `json:"visitors"`
}

// GetAnalytics handles GET /api/analytics?days=N. Admin only; returns
// the most recent N day rows, newest first.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	days := parseDaysParam(r, defaultAnalyticsDays, maxAnalyticsDays)

	rows, err := h.queries.ListDailyAnalytics(r.Context(), int64(days))
	if err != nil {
		WriteInternalError(w, "Failed to retrieve analytics")
		return
	}
	if rows == nil {
		rows = []store.AnalyticsDay{}
	}

	WriteSuccess(w, rows, &Meta{Total: int64(len(rows))})
}

// GetCountryAnalytics handles GET /api/analytics/countries?days=N.
// Admin only; aggregated per country per day since the cutoff.
func (h *Handler) GetCountryAnalytics(w http.ResponseWriter, r *http.Request) {
	days := parseDaysParam(r, defaultAnalyticsDays, maxAnalyticsDays)
	since := store.Day(time.Now().AddDate(0, 0, -(days - 1)))

	rows, err := h.queries.ListCountryAnalytics(r.Context(), since)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve country analytics")
		return
	}

	responses := make([]CountryAnalyticsResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, CountryAnalyticsResponse{
			Country:  row.Country,
			Name:     geoip.CountryName(row.Country),
			Visitors: row.Visitors,
		})
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}
