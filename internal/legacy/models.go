// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package legacy imports content from the previous WordPress-based site.
// The old site kept services as a custom post type, articles as regular
// posts, and contact form submissions in a plugin table. The importer
// maps those rows onto the current schema and is safe to re-run: rows
// already present (matched by slug or reference) are skipped.
package legacy

import (
	"database/sql"
	"time"
)

// Service is a service row from the legacy services table.
type Service struct {
	ID        int64
	Title     string
	Slug      string
	Excerpt   string
	Body      string
	ImageURL  sql.NullString
	CreatedAt time.Time
}

// Post is an article row from the legacy posts table.
type Post struct {
	ID        int64
	Title     string
	Slug      string
	Excerpt   string
	Body      string
	Category  string
	Tags      sql.NullString // comma-separated
	ImageURL  sql.NullString
	Featured  bool
	CreatedAt time.Time
}

// Inquiry is a contact form submission from the legacy forms table.
type Inquiry struct {
	ID        int64
	Name      string
	Email     string
	Company   sql.NullString
	Phone     sql.NullString
	Subject   sql.NullString
	Body      string
	CreatedAt time.Time
}
