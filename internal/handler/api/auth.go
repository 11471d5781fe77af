// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/avenir-labs/avenir-site/internal/auth"
	"github.com/avenir-labs/avenir-site/internal/middleware"
	"github.com/avenir-labs/avenir-site/internal/store"
	"github.com/avenir-labs/avenir-site/internal/util"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterRequest is the request body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for POST /api/login. Identity may be
// a username or an email address.
type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	fieldErrors := map[string]string{}
	if len(req.Username) < minUsernameLength {
		fieldErrors["username"] = fmt.Sprintf("Username must be at least %d characters", minUsernameLength)
	}
	if !emailRe.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email address"
	}
	if len(req.Password) < minPasswordLength {
		fieldErrors["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if n, err := h.queries.CountUsersByUsername(ctx, req.Username, 0); err != nil {
		WriteInternalError(w, "Failed to check username")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"username": "Username already exists"})
		return
	}
	if n, err := h.queries.CountUsersByEmail(ctx, req.Email, 0); err != nil {
		WriteInternalError(w, "Failed to check email")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"email": "Email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Failed to create account")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create account")
		return
	}

	h.establishSession(r, user.ID)
	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	WriteCreated(w, user)
}

// Login handles POST /api/login. The identity is matched against
// usernames first, then emails. Failures return one generic error so
// error text does not reveal which accounts exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Identity = strings.TrimSpace(req.Identity)
	if req.Identity == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"identity": "Identity and password are required"})
		return
	}

	if h.protection != nil {
		if locked, remaining := h.protection.IsAccountLocked(req.Identity); locked {
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Too many failed attempts. Try again in %s", remaining.Round(time.Second)), nil)
			return
		}
	}

	user, err := h.queries.GetUserByUsername(ctx, req.Identity)
	if errors.Is(err, sql.ErrNoRows) {
		user, err = h.queries.GetUserByEmail(ctx, strings.ToLower(req.Identity))
	}
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Failed to look up account")
			return
		}
		h.failLogin(w, r, req.Identity)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, r, req.Identity)
		return
	}

	if h.protection != nil {
		h.protection.RecordSuccessfulLogin(req.Identity)
	}

	// Upgrade hashes created with older argon2 parameters while the
	// plaintext is available.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(ctx, user.ID, newHash, time.Now()); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	h.establishSession(r, user.ID)
	slog.Info("user logged in", "user_id", user.ID, "ip", util.RealIP(r))

	WriteSuccess(w, user, nil)
}

// failLogin records the failed attempt and writes the generic
// authentication error.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, identity string) {
	if h.protection != nil {
		if locked, remaining := h.protection.RecordFailedAttempt(identity); locked {
			slog.Warn("account locked after failed logins", "identity", identity, "ip", util.RealIP(r))
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Too many failed attempts. Try again in %s", remaining.Round(time.Second)), nil)
			return
		}
	}
	WriteUnauthorized(w, "Invalid credentials")
}

// establishSession binds the session to the user, renewing the token to
// prevent session fixation.
func (h *Handler) establishSession(r *http.Request, userID int64) {
	ctx := r.Context()
	if err := h.sessions.RenewToken(ctx); err != nil {
		slog.Error("session renew failed", "error", err)
	}
	h.sessions.Put(ctx, middleware.SessionKeyUserID, userID)
}

// Logout handles POST /api/logout. Logging out without a session is not
// an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, user, nil)
}

// UpdateProfileRequest is the request body for PATCH /api/user.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UpdateProfile handles PATCH /api/user.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	username := user.Username
	email := user.Email
	fieldErrors := map[string]string{}

	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		if len(username) < minUsernameLength {
			fieldErrors["username"] = fmt.Sprintf("Username must be at least %d characters", minUsernameLength)
		}
	}
	if req.Email != nil {
		email = strings.TrimSpace(strings.ToLower(*req.Email))
		if !emailRe.MatchString(email) {
			fieldErrors["email"] = "Invalid email address"
		}
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if n, err := h.queries.CountUsersByUsername(ctx, username, user.ID); err != nil {
		WriteInternalError(w, "Failed to check username")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"username": "Username already exists"})
		return
	}
	if n, err := h.queries.CountUsersByEmail(ctx, email, user.ID); err != nil {
		WriteInternalError(w, "Failed to check email")
		return
	} else if n > 0 {
		WriteValidationError(w, map[string]string{"email": "Email already exists"})
		return
	}

	updated, err := h.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		ID:        user.ID,
		Username:  username,
		Email:     email,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update profile")
		return
	}

	WriteSuccess(w, updated, nil)
}

// ChangePasswordRequest is the request body for POST /api/user/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/user/change-password. Requires the
// current password; the session stays valid afterwards.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		WriteValidationError(w, map[string]string{
			"newPassword": fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		})
		return
	}

	ok, err := auth.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		WriteValidationError(w, map[string]string{"currentPassword": "Current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		WriteInternalError(w, "Failed to change password")
		return
	}
	if err := h.queries.UpdateUserPassword(ctx, user.ID, hash, time.Now()); err != nil {
		WriteInternalError(w, "Failed to change password")
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	WriteSuccess(w, map[string]string{"status": "password_changed"}, nil)
}
