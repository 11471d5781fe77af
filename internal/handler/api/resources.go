// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/avenir-labs/avenir-site/internal/content"
	"github.com/avenir-labs/avenir-site/internal/model"
	"github.com/avenir-labs/avenir-site/internal/store"
)

const featuredCacheKey = "resources:featured"

// ResourceResponse represents a resource in API responses.
type ResourceResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Tags        []string  `json:"tags"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateResourceRequest is the request body for POST /api/resources.
type CreateResourceRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Featured    bool     `json:"featured"`
}

// UpdateResourceRequest is the partial request body for PUT /api/resources/{id}.
type UpdateResourceRequest struct {
	Type        *string   `json:"type,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Content     *string   `json:"content,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
}

// resourceToResponse converts a store.Resource to ResourceResponse.
func resourceToResponse(res store.Resource, renderHTML bool) ResourceResponse {
	resp := ResourceResponse{
		ID:          res.ID,
		Type:        res.Type,
		Title:       res.Title,
		Slug:        res.Slug,
		Description: res.Description,
		Content:     res.Content,
		Tags:        decodeTags(res.Tags),
		Featured:    res.Featured,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
	if res.ImageURL.Valid {
		resp.ImageURL = &res.ImageURL.String
	}
	if renderHTML {
		if html, err := content.RenderMarkdown(res.Content); err == nil {
			resp.ContentHTML = html
		}
	}
	return resp
}

// decodeTags parses the stored JSON tags array, falling back to an
// empty slice on malformed data.
func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// encodeTags serializes tags for storage.
func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ListResources handles GET /api/resources[?type=]. Public.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		resources []store.Resource
		err       error
	)
	if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
		if !model.IsValidResourceType(typeFilter) {
			WriteBadRequest(w, "Invalid resource type. Use: "+strings.Join(model.ValidResourceTypes(), ", "), nil)
			return
		}
		resources, err = h.queries.ListResourcesByType(ctx, typeFilter)
	} else {
		resources, err = h.queries.ListResources(ctx)
	}
	if err != nil {
		WriteInternalError(w, "Failed to list resources")
		return
	}

	responses := make([]ResourceResponse, 0, len(resources))
	for _, res := range resources {
		responses = append(responses, resourceToResponse(res, false))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// ListFeaturedResources handles GET /api/resources/featured. Public;
// served from cache, at most four rows.
func (h *Handler) ListFeaturedResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	responses, err := h.featuredCache.GetOrSet(ctx, featuredCacheKey, func() (*[]ResourceResponse, error) {
		resources, err := h.queries.ListFeaturedResources(ctx, model.FeaturedResourceLimit)
		if err != nil {
			return nil, err
		}
		out := make([]ResourceResponse, 0, len(resources))
		for _, res := range resources {
			out = append(out, resourceToResponse(res, false))
		}
		return &out, nil
	})
	if err != nil {
		WriteInternalError(w, "Failed to list featured resources")
		return
	}

	WriteSuccess(w, *responses, &Meta{Total: int64(len(*responses))})
}

// GetResource handles GET /api/resources/{id}. Public.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, ok := requireEntityByID(w, r, "resource", func(id int64) (store.Resource, error) {
		return h.queries.GetResourceByID(ctx, id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, resourceToResponse(res, true), nil)
}

// CreateResource handles POST /api/resources. Admin only.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := validateCatalogCreate(CreateCatalogRequest{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	if !model.IsValidResourceType(req.Type) {
		fieldErrors["type"] = "Type must be one of: " + strings.Join(model.ValidResourceTypes(), ", ")
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	slug, err := uniqueSlug(ctx, req.Title, 0, h.queries.CountResourceSlug)
	if err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	now := time.Now()
	res, err := h.queries.CreateResource(ctx, store.CreateResourceParams{
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    nullableString(req.ImageURL),
		Tags:        encodeTags(req.Tags),
		Featured:    req.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create resource")
		return
	}

	h.invalidateFeatured(r)
	WriteCreated(w, resourceToResponse(res, false))
}

// UpdateResource handles PUT /api/resources/{id}. Admin only.
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, ok := requireEntityByID(w, r, "resource", func(id int64) (store.Resource, error) {
		return h.queries.GetResourceByID(ctx, id)
	})
	if !ok {
		return
	}

	var req UpdateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateResourceParams{
		ID:          existing.ID,
		Type:        existing.Type,
		Title:       existing.Title,
		Slug:        existing.Slug,
		Description: existing.Description,
		Content:     existing.Content,
		ImageURL:    existing.ImageURL,
		Tags:        existing.Tags,
		Featured:    existing.Featured,
		UpdatedAt:   time.Now(),
	}

	fieldErrors := map[string]string{}
	if req.Type != nil {
		if !model.IsValidResourceType(*req.Type) {
			fieldErrors["type"] = "Type must be one of: " + strings.Join(model.ValidResourceTypes(), ", ")
		} else {
			params.Type = *req.Type
		}
	}
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
	if req.Tags != nil {
		params.Tags = encodeTags(*req.Tags)
	}
	if req.Featured != nil {
		params.Featured = *req.Featured
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	res, err := h.queries.UpdateResource(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to update resource")
		return
	}

	h.invalidateFeatured(r)
	WriteSuccess(w, resourceToResponse(res, false), nil)
}

// DeleteResource handles DELETE /api/resources/{id}. Admin only.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, ok := requireEntityByID(w, r, "resource", func(id int64) (store.Resource, error) {
		return h.queries.GetResourceByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteResource(ctx, res.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to delete resource")
		return
	}

	h.invalidateFeatured(r)
	w.WriteHeader(http.StatusNoContent)
}

// invalidateFeatured drops the cached featured-resources list after a
// resource mutation.
func (h *Handler) invalidateFeatured(r *http.Request) {
	_ = h.featuredCache.Delete(r.Context(), featuredCacheKey)
}
