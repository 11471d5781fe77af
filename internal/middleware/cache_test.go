// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticCache(t *testing.T) {
	tests := []struct {
		name   string
		maxAge int
		want   string
	}{
		{
			name:   "uploads one week",
			maxAge: 604800,
			want:   "public, max-age=604800",
		},
		{
			name:   "assets one year",
			maxAge: 31536000,
			want:   "public, max-age=31536000",
		},
		{
			name:   "zero",
			maxAge: 0,
			want:   "public, max-age=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			wrapped := StaticCache(tt.maxAge)(handler)

			req := httptest.NewRequest(http.MethodGet, "/uploads/thumbs/x/a.jpg", nil)
			rr := httptest.NewRecorder()

			wrapped.ServeHTTP(rr, req)

			if got := rr.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticCachePreservesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("jpeg-bytes"))
	})

	wrapped := StaticCache(604800)(handler)

	req := httptest.NewRequest(http.MethodGet, "/uploads/originals/x/a.jpg", nil)
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want %q", ct, "image/jpeg")
	}
	if body := rr.Body.String(); body != "jpeg-bytes" {
		t.Errorf("Body = %q, want %q", body, "jpeg-bytes")
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "public, max-age=604800" {
		t.Errorf("Cache-Control = %q, want %q", cc, "public, max-age=604800")
	}
}

func TestNoStore(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	NoStore(handler).ServeHTTP(rr, req)

	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", cc, "no-store")
	}
}
