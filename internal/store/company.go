// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// CompanyInfo is a single rich-text block keyed by type ("about" or
// "contact"). At most one row exists per type; writes are upserts.
type CompanyInfo struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetCompanyInfo returns the row for the given type.
func (q *Queries) GetCompanyInfo(ctx context.Context, infoType string) (CompanyInfo, error) {
	var c CompanyInfo
	err := q.db.QueryRowContext(ctx,
		`SELECT id, type, content, updated_at FROM company_info WHERE type = ?`, infoType).
		Scan(&c.ID, &c.Type, &c.Content, &c.UpdatedAt)
	return c, err
}

// UpsertCompanyInfo inserts or replaces the content for the given type and
// returns the resulting row.
func (q *Queries) UpsertCompanyInfo(ctx context.Context, infoType, content string, updatedAt time.Time) (CompanyInfo, error) {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO company_info (type, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (type) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		infoType, content, updatedAt)
	if err != nil {
		return CompanyInfo{}, err
	}
	return q.GetCompanyInfo(ctx, infoType)
}
