// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUploadRequest builds a multipart request carrying one file field.
func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// testJPEG encodes a solid-color JPEG of the given size.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestUploadMedia(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "photo.jpg", testJPEG(t, 120, 80)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := unmarshalData[MediaResponse](t, w)
	assert.Equal(t, "image/jpeg", media.MimeType)
	assert.Equal(t, int64(120), media.Width)
	assert.Equal(t, int64(80), media.Height)
	assert.Equal(t, "photo.jpg", media.OriginalName)
	assert.True(t, strings.HasPrefix(media.URL, "/uploads/originals/"))
	// Below thumbnail size, so no thumbnail variant.
	assert.Empty(t, media.ThumbnailURL)
}

func TestUploadMedia_LargeImageGetsThumbnail(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "big.jpg", testJPEG(t, 1200, 900)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := unmarshalData[MediaResponse](t, w)
	assert.True(t, strings.HasPrefix(media.ThumbnailURL, "/uploads/thumbs/"))
}

func TestUploadMedia_RejectsNonImage(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "notes.txt", []byte("plain text")))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, unmarshalError(t, w).Details, "file")
}

func TestUploadMedia_MissingFileField(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.UploadMedia, newUploadRequest(t, "attachment", "photo.jpg", testJPEG(t, 10, 10)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMedia(t *testing.T) {
	_, h := testSetup(t)

	executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "a.jpg", testJPEG(t, 20, 20)))
	executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "b.jpg", testJPEG(t, 20, 20)))

	w := executeHandler(t, h.ListMedia, newGetRequest(t, "/api/media", nil))
	require.Equal(t, http.StatusOK, w.Code)
	list, meta := unmarshalList[MediaResponse](t, w)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), meta.Total)
}

func TestDeleteMedia(t *testing.T) {
	db, h := testSetup(t)

	w := executeHandler(t, h.UploadMedia, newUploadRequest(t, "file", "gone.jpg", testJPEG(t, 30, 30)))
	require.Equal(t, http.StatusCreated, w.Code)
	media := unmarshalData[MediaResponse](t, w)

	var filePath string
	require.NoError(t, db.QueryRow(`SELECT file_path FROM media WHERE id = ?`, media.ID).Scan(&filePath))
	_, err := os.Stat(filePath)
	require.NoError(t, err, "uploaded file should exist on disk")

	params := map[string]string{"id": intToStr(media.ID)}
	w = executeHandler(t, h.DeleteMedia, newDeleteRequest(t, "/api/media/1", params))
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err), "file should be removed with the row")

	w = executeHandler(t, h.DeleteMedia, newDeleteRequest(t, "/api/media/1", params))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
