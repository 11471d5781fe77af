// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avenir-labs/avenir-site/internal/store"
)

// MessageResponse represents an inquiry in API responses.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMessageRequest is the request body for the lead-capture form.
type CreateMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service,omitempty"`
	Message string `json:"message"`
}

func messageToResponse(m store.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		Reference: m.Reference,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if m.Company.Valid {
		resp.Company = m.Company.String
	}
	if m.Phone.Valid {
		resp.Phone = m.Phone.String
	}
	if m.Service.Valid {
		resp.Service = m.Service.String
	}
	return resp
}

// CreateMessage handles POST /api/messages. Public: this is the
// lead-capture form. The returned reference lets the visitor cite the
// inquiry in follow-up.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	if !emailRe.MatchString(strings.TrimSpace(req.Email)) {
		fieldErrors["email"] = "Invalid email address"
	}
	if strings.TrimSpace(req.Message) == "" {
		fieldErrors["message"] = "Message is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	toNull := func(s string) sql.NullString {
		s = strings.TrimSpace(s)
		if s == "" {
			return sql.NullString{}
		}
		return sql.NullString{String: s, Valid: true}
	}

	msg, err := h.queries.CreateMessage(ctx, store.CreateMessageParams{
		Reference: uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Company:   toNull(req.Company),
		Phone:     toNull(req.Phone),
		Service:   toNull(req.Service),
		Message:   req.Message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to submit message")
		return
	}

	if h.tracker != nil {
		h.tracker.TrackInquiry()
	}
	WriteCreated(w, messageToResponse(msg))
}

// ListMessages handles GET /api/messages. Admin only; newest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.queries.ListMessages(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list messages")
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, messageToResponse(m))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// MarkMessageRead handles PATCH /api/messages/{id}/read. Admin only;
// idempotent.
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msg, ok := requireEntityByID(w, r, "message", func(id int64) (store.Message, error) {
		return h.queries.GetMessageByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.MarkMessageRead(ctx, msg.ID); err != nil {
		WriteInternalError(w, "Failed to mark message read")
		return
	}

	msg.IsRead = true
	WriteSuccess(w, messageToResponse(msg), nil)
}

// DeleteMessage handles DELETE /api/messages/{id}. Admin only.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msg, ok := requireEntityByID(w, r, "message", func(id int64) (store.Message, error) {
		return h.queries.GetMessageByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteMessage(ctx, msg.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
