// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package legacy

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenir-labs/avenir-site/internal/model"
	"github.com/avenir-labs/avenir-site/internal/store"
)

// fakeSource feeds the importer fixed rows without a MySQL connection.
type fakeSource struct {
	services  []Service
	posts     []Post
	inquiries []Inquiry
}

func (f *fakeSource) Services(context.Context) ([]Service, error)  { return f.services, nil }
func (f *fakeSource) Posts(context.Context) ([]Post, error)        { return f.posts, nil }
func (f *fakeSource) Inquiries(context.Context) ([]Inquiry, error) { return f.inquiries, nil }

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db))
	return db
}

func sampleSource() *fakeSource {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return &fakeSource{
		services: []Service{
			{ID: 1, Title: "AI Strategy", Slug: "ai-strategy", Excerpt: "Roadmaps", Body: "Full text", CreatedAt: created},
			{ID: 2, Title: "Untagged Service", Excerpt: "No slug upstream", Body: "Body", CreatedAt: created},
		},
		posts: []Post{
			{
				ID: 10, Title: "LLM Rollout", Slug: "llm-rollout", Excerpt: "How we did it", Body: "Article",
				Category: "Case Studies",
				Tags:     sql.NullString{String: "ai, llm", Valid: true},
				Featured: true, CreatedAt: created,
			},
			{
				ID: 11, Title: "Company Update", Slug: "company-update", Excerpt: "Q1", Body: "Update",
				Category:  "news",
				CreatedAt: created,
			},
		},
		inquiries: []Inquiry{
			{ID: 100, Name: "Jo", Email: "jo@example.com", Body: "Hello", CreatedAt: created,
				Company: sql.NullString{String: "Acme", Valid: true}},
		},
	}
}

func TestImporter_Run(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	result, err := NewImporter(db, false).Run(ctx, sampleSource())
	require.NoError(t, err)

	assert.Equal(t, 2, result.ServicesImported)
	assert.Equal(t, 2, result.ResourcesImported)
	assert.Equal(t, 1, result.MessagesImported)
	assert.Zero(t, result.ServicesSkipped)

	queries := store.New(db)

	services, err := queries.ListCatalogEntries(ctx, store.TableServices)
	require.NoError(t, err)
	require.Len(t, services, 2)

	// Missing upstream slug gets generated from the title
	slugs := []string{services[0].Slug, services[1].Slug}
	assert.Contains(t, slugs, "ai-strategy")
	assert.Contains(t, slugs, "untagged-service")

	resources, err := queries.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	for _, res := range resources {
		switch res.Slug {
		case "llm-rollout":
			assert.Equal(t, model.ResourceTypeCaseStudy, res.Type)
			assert.JSONEq(t, `["ai","llm"]`, res.Tags)
			assert.True(t, res.Featured)
		case "company-update":
			assert.Equal(t, model.ResourceTypeNews, res.Type)
			assert.Equal(t, "[]", res.Tags)
		default:
			t.Fatalf("unexpected resource slug %q", res.Slug)
		}
	}

	messages, err := queries.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "legacy-100", messages[0].Reference)
	assert.Equal(t, "Acme", messages[0].Company.String)
}

func TestImporter_Rerun_SkipsExisting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	src := sampleSource()

	importer := NewImporter(db, false)

	_, err := importer.Run(ctx, src)
	require.NoError(t, err)

	result, err := importer.Run(ctx, src)
	require.NoError(t, err)

	assert.Zero(t, result.ServicesImported)
	assert.Zero(t, result.ResourcesImported)
	assert.Zero(t, result.MessagesImported)
	assert.Equal(t, 2, result.ServicesSkipped)
	assert.Equal(t, 2, result.ResourcesSkipped)
	assert.Equal(t, 1, result.MessagesSkipped)

	services, err := store.New(db).ListCatalogEntries(ctx, store.TableServices)
	require.NoError(t, err)
	assert.Len(t, services, 2)
}

func TestImporter_DryRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	result, err := NewImporter(db, true).Run(ctx, sampleSource())
	require.NoError(t, err)

	// Counts reflect what would be imported
	assert.Equal(t, 2, result.ServicesImported)
	assert.Equal(t, 2, result.ResourcesImported)
	assert.Equal(t, 1, result.MessagesImported)

	// Nothing was written
	services, err := store.New(db).ListCatalogEntries(ctx, store.TableServices)
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestResourceTypeFor(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"news", model.ResourceTypeNews},
		{"Press", model.ResourceTypeNews},
		{"portfolio", model.ResourceTypePortfolio},
		{"Case Studies", model.ResourceTypeCaseStudy},
		{"case-study", model.ResourceTypeCaseStudy},
		{"random", model.ResourceTypeBlog},
		{"", model.ResourceTypeBlog},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resourceTypeFor(tt.category), "category %q", tt.category)
	}
}

func TestTagsJSON(t *testing.T) {
	assert.Equal(t, "[]", tagsJSON(sql.NullString{}))
	assert.Equal(t, "[]", tagsJSON(sql.NullString{String: " , ", Valid: true}))
	assert.JSONEq(t, `["ai","consulting"]`, tagsJSON(sql.NullString{String: "ai, consulting", Valid: true}))
}

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN("user", "pass", "db.internal", "3306", "legacy")
	assert.Equal(t, "user:pass@tcp(db.internal:3306)/legacy?parseTime=true", dsn)
}
