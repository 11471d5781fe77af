// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avenir-labs/avenir-site/internal/content"
	"github.com/avenir-labs/avenir-site/internal/model"
)

// CompanyInfoResponse represents a company-info block in API responses.
// Reads never 404: an absent row is served as an empty block.
type CompanyInfoResponse struct {
	Type        string     `json:"type"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UpdateCompanyInfoRequest is the request body for PUT /api/company-info/{type}.
type UpdateCompanyInfoRequest struct {
	Content string `json:"content"`
}

// GetCompanyInfo handles GET /api/company-info/{type}. Public.
func (h *Handler) GetCompanyInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	infoType := chi.URLParam(r, "type")
	if !model.IsValidCompanyInfoType(infoType) {
		WriteBadRequest(w, "Invalid company info type. Use: about or contact", nil)
		return
	}

	resp, err := h.companyCache.GetOrSet(ctx, companyCacheKey(infoType), func() (*CompanyInfoResponse, error) {
		info, err := h.queries.GetCompanyInfo(ctx, infoType)
		if errors.Is(err, sql.ErrNoRows) {
			return &CompanyInfoResponse{Type: infoType, Content: ""}, nil
		}
		if err != nil {
			return nil, err
		}

		out := CompanyInfoResponse{
			Type:      info.Type,
			Content:   info.Content,
			UpdatedAt: &info.UpdatedAt,
		}
		if html, renderErr := content.RenderMarkdown(info.Content); renderErr == nil {
			out.ContentHTML = html
		}
		return &out, nil
	})
	if err != nil {
		WriteInternalError(w, "Failed to retrieve company info")
		return
	}

	WriteSuccess(w, resp, nil)
}

// UpdateCompanyInfo handles PUT /api/company-info/{type}. Admin only;
// inserts the row if absent.
func (h *Handler) UpdateCompanyInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	infoType := chi.URLParam(r, "type")
	if !model.IsValidCompanyInfoType(infoType) {
		WriteBadRequest(w, "Invalid company info type. Use: about or contact", nil)
		return
	}

	var req UpdateCompanyInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	info, err := h.queries.UpsertCompanyInfo(ctx, infoType, req.Content, time.Now())
	if err != nil {
		WriteInternalError(w, "Failed to update company info")
		return
	}

	_ = h.companyCache.Delete(ctx, companyCacheKey(infoType))

	resp := CompanyInfoResponse{
		Type:      info.Type,
		Content:   info.Content,
		UpdatedAt: &info.UpdatedAt,
	}
	WriteSuccess(w, resp, nil)
}

func companyCacheKey(infoType string) string {
	return "company-info:" + infoType
}
