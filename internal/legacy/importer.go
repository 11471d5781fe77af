// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package legacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avenir-labs/avenir-site/internal/model"
	"github.com/avenir-labs/avenir-site/internal/store"
	"github.com/avenir-labs/avenir-site/internal/util"
)

// Source provides legacy content to the importer. Satisfied by Reader;
// tests substitute an in-memory implementation.
type Source interface {
	Services(ctx context.Context) ([]Service, error)
	Posts(ctx context.Context) ([]Post, error)
	Inquiries(ctx context.Context) ([]Inquiry, error)
}

// Result summarizes an import run.
type Result struct {
	ServicesImported  int
	ServicesSkipped   int
	ResourcesImported int
	ResourcesSkipped  int
	MessagesImported  int
	MessagesSkipped   int
}

// Importer writes legacy content into the site database.
type Importer struct {
	queries *store.Queries
	dryRun  bool
}

// NewImporter creates an importer. With dryRun set it reports what would
// be imported without writing anything.
func NewImporter(db *sql.DB, dryRun bool) *Importer {
	return &Importer{queries: store.New(db), dryRun: dryRun}
}

// Run imports services, posts, and inquiries from the source. Rows whose
// slug or reference already exists are skipped, so re-running an import
// after a partial failure is safe.
func (i *Importer) Run(ctx context.Context, src Source) (*Result, error) {
	result := &Result{}

	if err := i.importServices(ctx, src, result); err != nil {
		return result, err
	}
	if err := i.importPosts(ctx, src, result); err != nil {
		return result, err
	}
	if err := i.importInquiries(ctx, src, result); err != nil {
		return result, err
	}

	return result, nil
}

func (i *Importer) importServices(ctx context.Context, src Source, result *Result) error {
	services, err := src.Services(ctx)
	if err != nil {
		return err
	}

	for _, svc := range services {
		slug := svc.Slug
		if slug == "" {
			slug = util.Slugify(svc.Title)
		}

		count, err := i.queries.CountCatalogSlug(ctx, store.TableServices, slug, 0)
		if err != nil {
			return fmt.Errorf("checking service slug %q: %w", slug, err)
		}
		if count > 0 {
			result.ServicesSkipped++
			continue
		}

		if !i.dryRun {
			_, err := i.queries.CreateCatalogEntry(ctx, store.TableServices, store.CreateCatalogEntryParams{
				Title:       svc.Title,
				Slug:        slug,
				Description: svc.Excerpt,
				Content:     svc.Body,
				ImageURL:    svc.ImageURL,
				CreatedAt:   svc.CreatedAt,
				UpdatedAt:   time.Now(),
			})
			if err != nil {
				return fmt.Errorf("importing service %q: %w", svc.Title, err)
			}
		}
		slog.Debug("imported service", "slug", slug)
		result.ServicesImported++
	}
	return nil
}

func (i *Importer) importPosts(ctx context.Context, src Source, result *Result) error {
	posts, err := src.Posts(ctx)
	if err != nil {
		return err
	}

	for _, post := range posts {
		slug := post.Slug
		if slug == "" {
			slug = util.Slugify(post.Title)
		}

		count, err := i.queries.CountResourceSlug(ctx, slug, 0)
		if err != nil {
			return fmt.Errorf("checking resource slug %q: %w", slug, err)
		}
		if count > 0 {
			result.ResourcesSkipped++
			continue
		}

		if !i.dryRun {
			_, err := i.queries.CreateResource(ctx, store.CreateResourceParams{
				Type:        resourceTypeFor(post.Category),
				Title:       post.Title,
				Slug:        slug,
				Description: post.Excerpt,
				Content:     post.Body,
				ImageURL:    post.ImageURL,
				Tags:        tagsJSON(post.Tags),
				Featured:    post.Featured,
				CreatedAt:   post.CreatedAt,
				UpdatedAt:   time.Now(),
			})
			if err != nil {
				return fmt.Errorf("importing post %q: %w", post.Title, err)
			}
		}
		slog.Debug("imported post", "slug", slug, "type", resourceTypeFor(post.Category))
		result.ResourcesImported++
	}
	return nil
}

func (i *Importer) importInquiries(ctx context.Context, src Source, result *Result) error {
	inquiries, err := src.Inquiries(ctx)
	if err != nil {
		return err
	}

	for _, inq := range inquiries {
		reference := fmt.Sprintf("legacy-%d", inq.ID)

		count, err := i.queries.CountMessageReference(ctx, reference)
		if err != nil {
			return fmt.Errorf("checking message reference %q: %w", reference, err)
		}
		if count > 0 {
			result.MessagesSkipped++
			continue
		}

		if !i.dryRun {
			_, err := i.queries.CreateMessage(ctx, store.CreateMessageParams{
				Reference: reference,
				Name:      inq.Name,
				Email:     inq.Email,
				Company:   inq.Company,
				Phone:     inq.Phone,
				Service:   inq.Subject,
				Message:   inq.Body,
				CreatedAt: inq.CreatedAt,
			})
			if err != nil {
				return fmt.Errorf("importing inquiry %q: %w", reference, err)
			}
		}
		result.MessagesImported++
	}
	return nil
}

// resourceTypeFor maps a legacy post category onto a resource type.
// Unrecognized categories land in the blog.
func resourceTypeFor(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "news", "press":
		return model.ResourceTypeNews
	case "portfolio", "work":
		return model.ResourceTypePortfolio
	case "case-study", "case study", "case-studies", "case studies":
		return model.ResourceTypeCaseStudy
	default:
		return model.ResourceTypeBlog
	}
}

// tagsJSON converts the legacy comma-separated tag list into the JSON
// array the resources table stores.
func tagsJSON(tags sql.NullString) string {
	if !tags.Valid {
		return "[]"
	}

	var cleaned []string
	for _, tag := range strings.Split(tags.String, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return "[]"
	}

	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
