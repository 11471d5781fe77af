// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// CatalogEntry is the shared shape of the services and solutions tables.
// Both are independent catalog tables with identical columns; the query
// layer parameterizes only the table name (a compile-time constant, never
// caller input).
type CatalogEntry struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	ImageURL    sql.NullString `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Catalog table names.
const (
	TableServices  = "services"
	TableSolutions = "solutions"
)

const catalogColumns = `id, title, slug, description, content, image_url, created_at, updated_at`

func scanCatalogEntry(row *sql.Row) (CatalogEntry, error) {
	var e CatalogEntry
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Description, &e.Content, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// CreateCatalogEntryParams holds the fields for CreateCatalogEntry.
type CreateCatalogEntryParams struct {
	Title       string
	Slug        string
	Description string
	Content     string
	ImageURL    sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCatalogEntry inserts a row into the given catalog table and
// returns the created row.
func (q *Queries) CreateCatalogEntry(ctx context.Context, table string, arg CreateCatalogEntryParams) (CatalogEntry, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO `+table+` (title, slug, description, content, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Description, arg.Content, arg.ImageURL, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return CatalogEntry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CatalogEntry{}, err
	}
	return q.GetCatalogEntryByID(ctx, table, id)
}

// GetCatalogEntryByID returns one catalog row.
func (q *Queries) GetCatalogEntryByID(ctx context.Context, table string, id int64) (CatalogEntry, error) {
	return scanCatalogEntry(q.db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM `+table+` WHERE id = ?`, id))
}

// ListCatalogEntries returns all rows ordered by creation time descending.
func (q *Queries) ListCatalogEntries(ctx context.Context, table string) ([]CatalogEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+catalogColumns+` FROM `+table+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Slug, &e.Description, &e.Content, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountCatalogSlug counts rows with the given slug, excluding one ID.
func (q *Queries) CountCatalogSlug(ctx context.Context, table, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

// UpdateCatalogEntryParams holds the fields for UpdateCatalogEntry.
type UpdateCatalogEntryParams struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Content     string
	ImageURL    sql.NullString
	UpdatedAt   time.Time
}

// UpdateCatalogEntry overwrites a catalog row and returns the updated row.
func (q *Queries) UpdateCatalogEntry(ctx context.Context, table string, arg UpdateCatalogEntryParams) (CatalogEntry, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE `+table+` SET title = ?, slug = ?, description = ?, content = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Description, arg.Content, arg.ImageURL, arg.UpdatedAt, arg.ID)
	if err != nil {
		return CatalogEntry{}, err
	}
	return q.GetCatalogEntryByID(ctx, table, arg.ID)
}

// DeleteCatalogEntry removes a catalog row.
func (q *Queries) DeleteCatalogEntry(ctx context.Context, table string, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	return err
}
