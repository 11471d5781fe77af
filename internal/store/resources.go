// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Resource is a tagged content item: blog post, news item, portfolio
// entry, or case study. Tags are stored as a JSON array string; the
// handler layer marshals and unmarshals them.
type Resource struct {
	ID          int64          `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	ImageURL    sql.NullString `json:"-"`
	Tags        string         `json:"-"`
	Featured    bool           `json:"featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

const resourceColumns = `id, type, title, slug, description, content, image_url, tags, featured, created_at, updated_at`

func scanResource(row *sql.Row) (Resource, error) {
	var r Resource
	err := row.Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Description, &r.Content,
		&r.ImageURL, &r.Tags, &r.Featured, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanResourceRows(rows *sql.Rows) ([]Resource, error) {
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Description, &r.Content,
			&r.ImageURL, &r.Tags, &r.Featured, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// CreateResourceParams holds the fields for CreateResource.
type CreateResourceParams struct {
	Type        string
	Title       string
	Slug        string
	Description string
	Content     string
	ImageURL    sql.NullString
	Tags        string
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateResource inserts a resource and returns the created row.
func (q *Queries) CreateResource(ctx context.Context, arg CreateResourceParams) (Resource, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO resources (type, title, slug, description, content, image_url, tags, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Type, arg.Title, arg.Slug, arg.Description, arg.Content,
		arg.ImageURL, arg.Tags, arg.Featured, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Resource{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Resource{}, err
	}
	return q.GetResourceByID(ctx, id)
}

// GetResourceByID returns one resource.
func (q *Queries) GetResourceByID(ctx context.Context, id int64) (Resource, error) {
	return scanResource(q.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id))
}

// ListResources returns all resources ordered by creation time descending.
func (q *Queries) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return scanResourceRows(rows)
}

// ListResourcesByType returns resources of one type, newest first.
func (q *Queries) ListResourcesByType(ctx context.Context, resourceType string) ([]Resource, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE type = ? ORDER BY created_at DESC, id DESC`,
		resourceType)
	if err != nil {
		return nil, err
	}
	return scanResourceRows(rows)
}

// ListFeaturedResources returns up to limit featured resources, newest first.
func (q *Queries) ListFeaturedResources(ctx context.Context, limit int64) ([]Resource, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE featured = 1 ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	return scanResourceRows(rows)
}

// CountResourceSlug counts resources with the given slug, excluding one ID.
func (q *Queries) CountResourceSlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n, err
}

// UpdateResourceParams holds the fields for UpdateResource.
type UpdateResourceParams struct {
	ID          int64
	Type        string
	Title       string
	Slug        string
	Description string
	Content     string
	ImageURL    sql.NullString
	Tags        string
	Featured    bool
	UpdatedAt   time.Time
}

// UpdateResource overwrites a resource row and returns the updated row.
func (q *Queries) UpdateResource(ctx context.Context, arg UpdateResourceParams) (Resource, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE resources SET type = ?, title = ?, slug = ?, description = ?, content = ?,
			image_url = ?, tags = ?, featured = ?, updated_at = ?
		WHERE id = ?`,
		arg.Type, arg.Title, arg.Slug, arg.Description, arg.Content,
		arg.ImageURL, arg.Tags, arg.Featured, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Resource{}, err
	}
	return q.GetResourceByID(ctx, arg.ID)
}

// DeleteResource removes a resource row.
func (q *Queries) DeleteResource(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	return err
}
