// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders Markdown bodies to sanitized HTML for API
// responses.
package content

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer provides a reusable HTML sanitization policy for rendered
// content. UGCPolicy allows safe tags while stripping <script>, event
// handlers, and similar.
var htmlSanitizer = bluemonday.UGCPolicy()

// md is the shared Markdown converter. GFM gives tables, strikethrough,
// and autolinks, which editors expect from the admin panel.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdown converts Markdown to sanitized HTML.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// SanitizeHTML strips dangerous markup from an HTML fragment.
func SanitizeHTML(html string) string {
	return htmlSanitizer.Sanitize(html)
}
