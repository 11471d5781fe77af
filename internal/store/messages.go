// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Message is a visitor-submitted inquiry from the lead-capture form.
// The reference is an opaque identifier returned to the visitor so
// support can locate the inquiry later.
type Message struct {
	ID        int64          `json:"id"`
	Reference string         `json:"reference"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Company   sql.NullString `json:"-"`
	Phone     sql.NullString `json:"-"`
	Service   sql.NullString `json:"-"`
	Message   string         `json:"message"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

const messageColumns = `id, reference, name, email, company, phone, service, message, is_read, created_at`

// CreateMessageParams holds the fields for CreateMessage.
type CreateMessageParams struct {
	Reference string
	Name      string
	Email     string
	Company   sql.NullString
	Phone     sql.NullString
	Service   sql.NullString
	Message   string
	CreatedAt time.Time
}

// CreateMessage inserts a message and returns the created row.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO messages (reference, name, email, company, phone, service, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		arg.Reference, arg.Name, arg.Email, arg.Company, arg.Phone, arg.Service, arg.Message, arg.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Message{}, err
	}
	return q.GetMessageByID(ctx, id)
}

// GetMessageByID returns one message.
func (q *Queries) GetMessageByID(ctx context.Context, id int64) (Message, error) {
	var m Message
	err := q.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id).
		Scan(&m.ID, &m.Reference, &m.Name, &m.Email, &m.Company, &m.Phone, &m.Service, &m.Message, &m.IsRead, &m.CreatedAt)
	return m, err
}

// ListMessages returns all messages, newest first.
func (q *Queries) ListMessages(ctx context.Context) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Reference, &m.Name, &m.Email, &m.Company, &m.Phone, &m.Service, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountMessageReference returns how many messages carry the given reference.
func (q *Queries) CountMessageReference(ctx context.Context, reference string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE reference = ?`, reference).Scan(&count)
	return count, err
}

// MarkMessageRead sets the read flag. Idempotent.
func (q *Queries) MarkMessageRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	return err
}

// DeleteMessage removes a message row.
func (q *Queries) DeleteMessage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	return err
}
