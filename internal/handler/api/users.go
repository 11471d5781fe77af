// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avenir-labs/avenir-site/internal/middleware"
	"github.com/avenir-labs/avenir-site/internal/store"
)

// ListUsers handles GET /api/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}
	if users == nil {
		users = []store.User{}
	}
	WriteSuccess(w, users, &Meta{Total: int64(len(users))})
}

// SetUserAdminRequest is the request body for PATCH /api/users/{id}/admin.
type SetUserAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetUserAdmin handles PATCH /api/users/{id}/admin. Admin only. Admins
// cannot demote themselves, so at least one admin always remains.
func (h *Handler) SetUserAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(ctx, id)
	})
	if !ok {
		return
	}

	var req SetUserAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if target.ID == middleware.GetUserID(r) && !req.IsAdmin {
		WriteBadRequest(w, "Cannot remove your own admin access", nil)
		return
	}

	if err := h.queries.SetUserAdmin(ctx, target.ID, req.IsAdmin, time.Now()); err != nil {
		WriteInternalError(w, "Failed to update user")
		return
	}

	target.IsAdmin = req.IsAdmin
	slog.Info("user admin flag changed", "user_id", target.ID, "is_admin", req.IsAdmin)
	WriteSuccess(w, target, nil)
}

// DeleteUser handles DELETE /api/users/{id}. Admin only; accounts
// cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(ctx, id)
	})
	if !ok {
		return
	}

	if target.ID == middleware.GetUserID(r) {
		WriteBadRequest(w, "Cannot delete your own account", nil)
		return
	}

	if err := h.queries.DeleteUser(ctx, target.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to delete user")
		return
	}

	slog.Info("user deleted", "user_id", target.ID)
	w.WriteHeader(http.StatusNoContent)
}
