// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers for the site and its
// admin panel.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/avenir-labs/avenir-site/internal/analytics"
	"github.com/avenir-labs/avenir-site/internal/assist"
	"github.com/avenir-labs/avenir-site/internal/cache"
	"github.com/avenir-labs/avenir-site/internal/imaging"
	"github.com/avenir-labs/avenir-site/internal/middleware"
	"github.com/avenir-labs/avenir-site/internal/store"
)

// cacheTTL is how long featured-resources and company-info reads are
// served from cache before hitting the store again.
const cacheTTL = 5 * time.Minute

// Config holds the dependencies for the API handlers.
type Config struct {
	DB         *sql.DB
	Sessions   *scs.SessionManager
	Tracker    *analytics.Tracker
	Cache      cache.Cacher
	Assist     *assist.Service // nil disables /api/assist
	Protection *middleware.LoginProtection
	UploadDir  string
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	sessions   *scs.SessionManager
	tracker    *analytics.Tracker
	assist     *assist.Service
	protection *middleware.LoginProtection
	processor  *imaging.Processor

	featuredCache *cache.TypedCache[[]ResourceResponse]
	companyCache  *cache.TypedCache[CompanyInfoResponse]
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	c := cfg.Cache
	if c == nil {
		c = cache.NewWithTTL(cacheTTL)
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &Handler{
		db:            cfg.DB,
		queries:       store.New(cfg.DB),
		sessions:      cfg.Sessions,
		tracker:       cfg.Tracker,
		assist:        cfg.Assist,
		protection:    cfg.Protection,
		processor:     imaging.NewProcessor(uploadDir),
		featuredCache: cache.NewTypedCache[[]ResourceResponse](c, cacheTTL),
		companyCache:  cache.NewTypedCache[CompanyInfoResponse](c, cacheTTL),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// HealthResponse contains liveness information.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, HealthResponse{Status: "ok"}, nil)
}

// decodeJSON decodes JSON from the request body.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseIDParam parses the {id} chi URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requireEntityByID parses an ID from the URL and fetches the entity.
// Returns the entity and true, or the zero value and false with the
// error response already written.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch func(id int64) (T, error)) (T, bool) {
	var zero T

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, capitalizeFirst(entityName) + " not found")
		} else {
			WriteInternalError(w, "Failed to retrieve "+entityName)
		}
		return zero, false
	}

	return entity, true
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// parseDaysParam parses a ?days=N query parameter, clamped to [1, max],
// defaulting when absent or invalid.
func parseDaysParam(r *http.Request, def, max int) int {
	s := r.URL.Query().Get("days")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
