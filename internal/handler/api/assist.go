// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/avenir-labs/avenir-site/internal/assist"
	"github.com/avenir-labs/avenir-site/internal/model"
)

// GenerateDraft handles POST /api/assist/draft. Admin only; returns 503
// when no OpenAI API key is configured.
func (h *Handler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	if h.assist == nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable",
			"AI drafting is not configured", nil)
		return
	}

	var input assist.DraftInput
	if err := decodeJSON(r, &input); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(input.Topic) == "" {
		fieldErrors["topic"] = "Topic is required"
	}
	if input.ResourceType != "" && !model.IsValidResourceType(input.ResourceType) {
		fieldErrors["resourceType"] = "Type must be one of: " + strings.Join(model.ValidResourceTypes(), ", ")
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	draft, err := h.assist.GenerateDraft(r.Context(), input)
	if err != nil {
		slog.Error("draft generation failed", "topic", input.Topic, "error", err)
		WriteError(w, http.StatusBadGateway, "assist_failed",
			"Draft generation failed, try again", nil)
		return
	}

	WriteSuccess(w, draft, nil)
}
