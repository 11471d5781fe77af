// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/avenir-labs/avenir-site/internal/model"
	"github.com/avenir-labs/avenir-site/internal/store"
)

// MediaResponse represents an uploaded image in API responses.
type MediaResponse struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        int64     `json:"width"`
	Height       int64     `json:"height"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func mediaToResponse(m store.Media) MediaResponse {
	resp := MediaResponse{
		ID:           m.ID,
		UUID:         m.UUID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		Width:        m.Width,
		Height:       m.Height,
		URL:          "/uploads/originals/" + m.UUID + "/" + m.Filename,
		CreatedAt:    m.CreatedAt,
	}
	if m.ThumbnailPath.Valid {
		resp.ThumbnailURL = "/uploads/thumbs/" + m.UUID + "/" + m.Filename
	}
	return resp
}

// UploadMedia handles POST /api/media. Admin only; accepts a single
// "file" multipart field holding an image.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadBytes)
	if err := r.ParseMultipartForm(model.MaxUploadBytes); err != nil {
		WriteBadRequest(w, "Failed to parse upload. Maximum size is 10MB", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided. Use the 'file' field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteInternalError(w, "Failed to read upload")
		return
	}

	mimeType := h.processor.DetectMimeType(data)
	if !h.processor.IsSupportedType(mimeType) {
		WriteValidationError(w, map[string]string{
			"file": "Unsupported file type. Use JPEG, PNG, GIF, or WebP",
		})
		return
	}

	id := uuid.New().String()
	filename := filepath.Base(header.Filename)

	result, err := h.processor.ProcessImage(bytes.NewReader(data), id, filename)
	if err != nil {
		slog.Error("image processing failed", "filename", filename, "error", err)
		WriteValidationError(w, map[string]string{"file": "File is not a valid image"})
		return
	}

	params := store.CreateMediaParams{
		UUID:         id,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     result.MimeType,
		Size:         result.Size,
		Width:        int64(result.Width),
		Height:       int64(result.Height),
		FilePath:     result.FilePath,
		CreatedAt:    time.Now(),
	}

	// Thumbnail failures degrade to serving the original only.
	thumb, err := h.processor.CreateThumbnail(result.FilePath, id, filename)
	if err != nil {
		slog.Warn("thumbnail creation failed", "uuid", id, "error", err)
	} else if thumb != nil {
		params.ThumbnailPath = sql.NullString{String: thumb.FilePath, Valid: true}
	}

	media, err := h.queries.CreateMedia(ctx, params)
	if err != nil {
		if delErr := h.processor.DeleteMediaFiles(id); delErr != nil {
			slog.Error("orphaned upload cleanup failed", "uuid", id, "error", delErr)
		}
		WriteInternalError(w, "Failed to save upload")
		return
	}

	slog.Info("media uploaded", "id", media.ID, "uuid", media.UUID, "size", media.Size)
	WriteCreated(w, mediaToResponse(media))
}

// ListMedia handles GET /api/media. Admin only; newest first.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := h.queries.ListMedia(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list media")
		return
	}

	responses := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		responses = append(responses, mediaToResponse(m))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// DeleteMedia handles DELETE /api/media/{id}. Admin only; removes the
// row and the files on disk.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	media, ok := requireEntityByID(w, r, "media", func(id int64) (store.Media, error) {
		return h.queries.GetMediaByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteMedia(ctx, media.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to delete media")
		return
	}
	if err := h.processor.DeleteMediaFiles(media.UUID); err != nil {
		slog.Warn("media file cleanup failed", "uuid", media.UUID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
