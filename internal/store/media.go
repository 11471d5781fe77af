// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Media is an uploaded image available to the admin panel for catalog
// imageUrl fields.
type Media struct {
	ID            int64          `json:"id"`
	UUID          string         `json:"uuid"`
	Filename      string         `json:"filename"`
	OriginalName  string         `json:"original_name"`
	MimeType      string         `json:"mime_type"`
	Size          int64          `json:"size"`
	Width         int64          `json:"width"`
	Height        int64          `json:"height"`
	FilePath      string         `json:"file_path"`
	ThumbnailPath sql.NullString `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}

const mediaColumns = `id, uuid, filename, original_name, mime_type, size, width, height, file_path, thumbnail_path, created_at`

// CreateMediaParams holds the fields for CreateMedia.
type CreateMediaParams struct {
	UUID          string
	Filename      string
	OriginalName  string
	MimeType      string
	Size          int64
	Width         int64
	Height        int64
	FilePath      string
	ThumbnailPath sql.NullString
	CreatedAt     time.Time
}

// CreateMedia inserts a media row and returns it.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO media (uuid, filename, original_name, mime_type, size, width, height, file_path, thumbnail_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.UUID, arg.Filename, arg.OriginalName, arg.MimeType, arg.Size,
		arg.Width, arg.Height, arg.FilePath, arg.ThumbnailPath, arg.CreatedAt)
	if err != nil {
		return Media{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Media{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// GetMediaByID returns one media row.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (Media, error) {
	var m Media
	err := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id).
		Scan(&m.ID, &m.UUID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size,
			&m.Width, &m.Height, &m.FilePath, &m.ThumbnailPath, &m.CreatedAt)
	return m, err
}

// ListMedia returns all media rows, newest first.
func (q *Queries) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.UUID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size,
			&m.Width, &m.Height, &m.FilePath, &m.ThumbnailPath, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// DeleteMedia removes a media row.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
