// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avenir-labs/avenir-site/internal/content"
	"github.com/avenir-labs/avenir-site/internal/store"
	"github.com/avenir-labs/avenir-site/internal/util"
)

// CatalogResponse represents a service or solution in API responses.
type CatalogResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCatalogRequest is the request body for creating a service or solution.
type CreateCatalogRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// UpdateCatalogRequest is the partial request body for updating a
// service or solution.
type UpdateCatalogRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// catalogToResponse converts a store.CatalogEntry to CatalogResponse,
// rendering the markdown body when renderHTML is set.
func catalogToResponse(e store.CatalogEntry, renderHTML bool) CatalogResponse {
	resp := CatalogResponse{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Content:     e.Content,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.ImageURL.Valid {
		resp.ImageURL = &e.ImageURL.String
	}
	if renderHTML {
		if html, err := content.RenderMarkdown(e.Content); err == nil {
			resp.ContentHTML = html
		}
	}
	return resp
}

// SlugCounter counts rows carrying a slug, excluding one ID.
type SlugCounter func(ctx context.Context, slug string, excludeID int64) (int64, error)

// uniqueSlug derives a slug from title and suffixes it until no other
// row uses it.
func uniqueSlug(ctx context.Context, title string, excludeID int64, count SlugCounter) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "untitled"
	}
	slug := base
	for i := 2; ; i++ {
		n, err := count(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// validateCatalogCreate validates a create payload, returning per-field errors.
func validateCatalogCreate(req CreateCatalogRequest) map[string]string {
	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = "Title is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		fieldErrors["description"] = "Description is required"
	}
	if strings.TrimSpace(req.Content) == "" {
		fieldErrors["content"] = "Content is required"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// listCatalog handles GET for a catalog table. Public.
func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request, table string) {
	entries, err := h.queries.ListCatalogEntries(r.Context(), table)
	if err != nil {
		WriteInternalError(w, "Failed to list entries")
		return
	}

	responses := make([]CatalogResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, catalogToResponse(e, false))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// getCatalog handles GET by ID for a catalog table. Public. A
// successful fetch counts as a service click.
func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request, table, entityName string) {
	ctx := r.Context()
	entry, ok := requireEntityByID(w, r, entityName, func(id int64) (store.CatalogEntry, error) {
		return h.queries.GetCatalogEntryByID(ctx, table, id)
	})
	if !ok {
		return
	}

	if h.tracker != nil {
		h.tracker.TrackServiceClick()
	}
	WriteSuccess(w, catalogToResponse(entry, true), nil)
}

// createCatalog handles POST for a catalog table. Admin only.
func (h *Handler) createCatalog(w http.ResponseWriter, r *http.Request, table string) {
	ctx := r.Context()

	var req CreateCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := validateCatalogCreate(req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	slug, err := uniqueSlug(ctx, req.Title, 0, func(ctx context.Context, slug string, excludeID int64) (int64, error) {
		return h.queries.CountCatalogSlug(ctx, table, slug, excludeID)
	})
	if err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	now := time.Now()
	entry, err := h.queries.CreateCatalogEntry(ctx, table, store.CreateCatalogEntryParams{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    nullableString(req.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create entry")
		return
	}

	WriteCreated(w, catalogToResponse(entry, false))
}

// updateCatalog handles PUT by ID for a catalog table. Admin only.
// Absent fields keep their stored values; the slug is stable across
// title edits.
func (h *Handler) updateCatalog(w http.ResponseWriter, r *http.Request, table, entityName string) {
	ctx := r.Context()
	existing, ok := requireEntityByID(w, r, entityName, func(id int64) (store.CatalogEntry, error) {
		return h.queries.GetCatalogEntryByID(ctx, table, id)
	})
	if !ok {
		return
	}

	var req UpdateCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateCatalogEntryParams{
		ID:          existing.ID,
		Title:       existing.Title,
		Slug:        existing.Slug,
		Description: existing.Description,
		Content:     existing.Content,
		ImageURL:    existing.ImageURL,
		UpdatedAt:   time.Now(),
	}

	fieldErrors := map[string]string{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			fieldErrors["title"] = "Title cannot be empty"
		} else {
			params.Title = strings.TrimSpace(*req.Title)
		}
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			fieldErrors["description"] = "Description cannot be empty"
		} else {
			params.Description = *req.Description
		}
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			fieldErrors["content"] = "Content cannot be empty"
		} else {
			params.Content = *req.Content
		}
	}
	if req.ImageURL != nil {
		params.ImageURL = nullableString(req.ImageURL)
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	entry, err := h.queries.UpdateCatalogEntry(ctx, table, params)
	if err != nil {
		WriteInternalError(w, "Failed to update entry")
		return
	}

	WriteSuccess(w, catalogToResponse(entry, false), nil)
}

// deleteCatalog handles DELETE by ID for a catalog table. Admin only.
func (h *Handler) deleteCatalog(w http.ResponseWriter, r *http.Request, table, entityName string) {
	ctx := r.Context()
	entry, ok := requireEntityByID(w, r, entityName, func(id int64) (store.CatalogEntry, error) {
		return h.queries.GetCatalogEntryByID(ctx, table, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteCatalogEntry(ctx, table, entry.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServices handles GET /api/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, store.TableServices)
}

// GetService handles GET /api/services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	h.getCatalog(w, r, store.TableServices, "service")
}

// CreateService handles POST /api/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	h.createCatalog(w, r, store.TableServices)
}

// UpdateService handles PUT /api/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	h.updateCatalog(w, r, store.TableServices, "service")
}

// DeleteService handles DELETE /api/services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalog(w, r, store.TableServices, "service")
}

// ListSolutions handles GET /api/solutions.
func (h *Handler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, store.TableSolutions)
}

// GetSolution handles GET /api/solutions/{id}.
func (h *Handler) GetSolution(w http.ResponseWriter, r *http.Request) {
	h.getCatalog(w, r, store.TableSolutions, "solution")
}

// CreateSolution handles POST /api/solutions.
func (h *Handler) CreateSolution(w http.ResponseWriter, r *http.Request) {
	h.createCatalog(w, r, store.TableSolutions)
}

// UpdateSolution handles PUT /api/solutions/{id}.
func (h *Handler) UpdateSolution(w http.ResponseWriter, r *http.Request) {
	h.updateCatalog(w, r, store.TableSolutions, "solution")
}

// DeleteSolution handles DELETE /api/solutions/{id}.
func (h *Handler) DeleteSolution(w http.ResponseWriter, r *http.Request) {
	h.deleteCatalog(w, r, store.TableSolutions, "solution")
}
