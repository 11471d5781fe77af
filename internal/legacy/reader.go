// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package legacy

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// Reader reads content from the legacy MySQL database.
type Reader struct {
	db     *sql.DB
	prefix string // table prefix, e.g. "wp_"
}

// BuildDSN builds a MySQL DSN from connection parameters. parseTime is
// required so DATETIME columns scan into time.Time.
func BuildDSN(user, password, host, port, database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		user, password, host, port, database)
}

// NewReader opens a connection to the legacy database and verifies it.
func NewReader(dsn, tablePrefix string) (*Reader, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to legacy database: %w", err)
	}

	return &Reader{db: db, prefix: tablePrefix}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Counts returns row counts for the legacy tables. Used to verify the
// connection and table prefix before running an import.
func (r *Reader) Counts(ctx context.Context) (services, posts, inquiries int64, err error) {
	tables := []struct {
		name  string
		count *int64
	}{
		{"services", &services},
		{"posts", &posts},
		{"inquiries", &inquiries},
	}
	for _, t := range tables {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.prefix, t.name)
		if err = r.db.QueryRowContext(ctx, query).Scan(t.count); err != nil {
			return 0, 0, 0, fmt.Errorf("counting %s%s: %w", r.prefix, t.name, err)
		}
	}
	return services, posts, inquiries, nil
}

// Services returns all published services from the legacy database.
func (r *Reader) Services(ctx context.Context) ([]Service, error) {
	query := fmt.Sprintf(`
		SELECT id, title, slug, excerpt, body, image_url, created_at
		FROM %sservices
		WHERE status = 'publish'
		ORDER BY created_at`, r.prefix)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying legacy services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.Excerpt, &s.Body, &s.ImageURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning legacy service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Posts returns all published articles from the legacy database.
func (r *Reader) Posts(ctx context.Context) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT id, title, slug, excerpt, body, category, tags, image_url, featured, created_at
		FROM %sposts
		WHERE status = 'publish'
		ORDER BY created_at`, r.prefix)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying legacy posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.Category, &p.Tags, &p.ImageURL, &p.Featured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning legacy post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Inquiries returns all contact form submissions from the legacy database.
func (r *Reader) Inquiries(ctx context.Context) ([]Inquiry, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, company, phone, subject, body, created_at
		FROM %sinquiries
		ORDER BY created_at`, r.prefix)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying legacy inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []Inquiry
	for rows.Next() {
		var q Inquiry
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Company, &q.Phone, &q.Subject, &q.Body, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning legacy inquiry: %w", err)
		}
		inquiries = append(inquiries, q)
	}
	return inquiries, rows.Err()
}
