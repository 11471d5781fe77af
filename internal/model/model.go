// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and validation helpers shared
// across the application: resource types, company-info keys, and
// credential constraints.
package model

// Resource type constants. A resource is one content item of the
// public site (blog post, news item, portfolio entry, case study).
const (
	ResourceTypeBlog      = "blog"
	ResourceTypeNews      = "news"
	ResourceTypePortfolio = "portfolio"
	ResourceTypeCaseStudy = "case-study"
)

// ValidResourceTypes returns all valid resource types.
func ValidResourceTypes() []string {
	return []string{
		ResourceTypeBlog,
		ResourceTypeNews,
		ResourceTypePortfolio,
		ResourceTypeCaseStudy,
	}
}

// IsValidResourceType checks if a resource type is valid.
func IsValidResourceType(t string) bool {
	for _, v := range ValidResourceTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Company info keys. At most one row exists per key.
const (
	CompanyInfoAbout   = "about"
	CompanyInfoContact = "contact"
)

// IsValidCompanyInfoType checks if a company-info key is valid.
func IsValidCompanyInfoType(t string) bool {
	return t == CompanyInfoAbout || t == CompanyInfoContact
}

// FeaturedResourceLimit caps the homepage featured-resources query.
const FeaturedResourceLimit = 4

// Credential constraints enforced on registration and profile updates.
const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// Supported image MIME types for media uploads.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// IsSupportedMimeType checks if a MIME type can be uploaded as media.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// Thumbnail variant parameters for uploaded media.
const (
	ThumbnailWidth   = 480
	ThumbnailHeight  = 320
	ThumbnailQuality = 80
)

// MaxUploadBytes caps a single media upload.
const MaxUploadBytes = 10 << 20
