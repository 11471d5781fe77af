// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/avenir-labs/avenir-site/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "avenir-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashed-password",
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Username != "testuser" {
		t.Errorf("Username = %q, want %q", user.Username, "testuser")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if user.IsAdmin {
		t.Error("IsAdmin should be false")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	_, err := q.CreateUser(ctx, CreateUserParams{
		Username: "dupe", Email: "a@example.com", PasswordHash: "h",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = q.CreateUser(ctx, CreateUserParams{
		Username: "dupe", Email: "b@example.com", PasswordHash: "h",
		CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestGetUserByUsername(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	created, err := q.CreateUser(ctx, CreateUserParams{
		Username: "findme", Email: "find@example.com", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	found, err := q.GetUserByUsername(ctx, "findme")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	_, err = q.GetUserByUsername(ctx, "nobody")
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestCountUsersByEmail_ExcludeID(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Username: "self", Email: "self@example.com", PasswordHash: "h",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// The user's own row does not count against itself.
	n, err := q.CountUsersByEmail(ctx, "self@example.com", user.ID)
	if err != nil {
		t.Fatalf("CountUsersByEmail: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	n, err = q.CountUsersByEmail(ctx, "self@example.com", 0)
	if err != nil {
		t.Fatalf("CountUsersByEmail: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestCatalogEntryCRUD(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	for _, table := range []string{TableServices, TableSolutions} {
		now := time.Now()
		created, err := q.CreateCatalogEntry(ctx, table, CreateCatalogEntryParams{
			Title:       "AI Strategy",
			Slug:        "ai-strategy",
			Description: "Roadmaps for AI adoption",
			Content:     "Full offering details",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			t.Fatalf("%s: CreateCatalogEntry: %v", table, err)
		}
		if created.ID == 0 {
			t.Errorf("%s: ID should not be 0", table)
		}

		got, err := q.GetCatalogEntryByID(ctx, table, created.ID)
		if err != nil {
			t.Fatalf("%s: GetCatalogEntryByID: %v", table, err)
		}
		if got.Title != "AI Strategy" {
			t.Errorf("%s: Title = %q, want %q", table, got.Title, "AI Strategy")
		}

		updated, err := q.UpdateCatalogEntry(ctx, table, UpdateCatalogEntryParams{
			ID:          created.ID,
			Title:       "AI Strategy Consulting",
			Slug:        "ai-strategy-consulting",
			Description: got.Description,
			Content:     got.Content,
			UpdatedAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("%s: UpdateCatalogEntry: %v", table, err)
		}
		if updated.Title != "AI Strategy Consulting" {
			t.Errorf("%s: Title = %q after update", table, updated.Title)
		}

		if err := q.DeleteCatalogEntry(ctx, table, created.ID); err != nil {
			t.Fatalf("%s: DeleteCatalogEntry: %v", table, err)
		}
		if _, err := q.GetCatalogEntryByID(ctx, table, created.ID); err != sql.ErrNoRows {
			t.Errorf("%s: err = %v after delete, want sql.ErrNoRows", table, err)
		}
	}
}

func TestCatalogSlugIsolation(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	// The same slug may exist in both tables; each table is counted on
	// its own.
	for _, table := range []string{TableServices, TableSolutions} {
		_, err := q.CreateCatalogEntry(ctx, table, CreateCatalogEntryParams{
			Title: "Shared", Slug: "shared-slug", Description: "d", Content: "c",
			CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("%s: CreateCatalogEntry: %v", table, err)
		}
	}

	n, err := q.CountCatalogSlug(ctx, TableServices, "shared-slug", 0)
	if err != nil {
		t.Fatalf("CountCatalogSlug: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestResourceTypeConstraint(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	_, err := q.CreateResource(ctx, CreateResourceParams{
		Type: "podcast", Title: "Bad", Slug: "bad", Description: "d",
		Content: "c", Tags: "[]", CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Error("expected CHECK constraint error for unknown resource type")
	}

	for _, rt := range model.ValidResourceTypes() {
		_, err := q.CreateResource(ctx, CreateResourceParams{
			Type: rt, Title: "Good " + rt, Slug: "good-" + rt, Description: "d",
			Content: "c", Tags: "[]", CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Errorf("CreateResource(%q): %v", rt, err)
		}
	}
}

func TestListResourcesByType(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	for i, rt := range []string{model.ResourceTypeBlog, model.ResourceTypeBlog, model.ResourceTypeNews} {
		_, err := q.CreateResource(ctx, CreateResourceParams{
			Type: rt, Title: "R", Slug: "r-" + string(rune('a'+i)), Description: "d",
			Content: "c", Tags: "[]", CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateResource: %v", err)
		}
	}

	blogs, err := q.ListResourcesByType(ctx, model.ResourceTypeBlog)
	if err != nil {
		t.Fatalf("ListResourcesByType: %v", err)
	}
	if len(blogs) != 2 {
		t.Errorf("len(blogs) = %d, want 2", len(blogs))
	}

	all, err := q.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestListFeaturedResources_Limit(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	for i := 0; i < 6; i++ {
		_, err := q.CreateResource(ctx, CreateResourceParams{
			Type: model.ResourceTypeBlog, Title: "F", Slug: "f-" + string(rune('a'+i)),
			Description: "d", Content: "c", Tags: "[]", Featured: true,
			CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateResource: %v", err)
		}
	}

	featured, err := q.ListFeaturedResources(ctx, model.FeaturedResourceLimit)
	if err != nil {
		t.Fatalf("ListFeaturedResources: %v", err)
	}
	if len(featured) != model.FeaturedResourceLimit {
		t.Errorf("len(featured) = %d, want %d", len(featured), model.FeaturedResourceLimit)
	}
}

func TestUpsertCompanyInfo(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	_, err := q.GetCompanyInfo(ctx, model.CompanyInfoAbout)
	if err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}

	info, err := q.UpsertCompanyInfo(ctx, model.CompanyInfoAbout, `{"mission":"v1"}`, time.Now())
	if err != nil {
		t.Fatalf("UpsertCompanyInfo: %v", err)
	}
	if info.Content != `{"mission":"v1"}` {
		t.Errorf("Content = %q", info.Content)
	}

	// Second upsert replaces, does not duplicate.
	info, err = q.UpsertCompanyInfo(ctx, model.CompanyInfoAbout, `{"mission":"v2"}`, time.Now())
	if err != nil {
		t.Fatalf("UpsertCompanyInfo: %v", err)
	}
	if info.Content != `{"mission":"v2"}` {
		t.Errorf("Content = %q after second upsert", info.Content)
	}
	if info.ID == 0 {
		t.Error("ID should not be 0")
	}
}

func TestMessageLifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	msg, err := q.CreateMessage(ctx, CreateMessageParams{
		Reference: "ref-123",
		Name:      "Jordan",
		Email:     "jordan@example.com",
		Company:   sql.NullString{String: "Acme", Valid: true},
		Message:   "We want to talk about AI adoption.",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.IsRead {
		t.Error("new message should be unread")
	}

	if err := q.MarkMessageRead(ctx, msg.ID); err != nil {
		t.Fatalf("MarkMessageRead: %v", err)
	}
	// Marking again is a no-op, not an error.
	if err := q.MarkMessageRead(ctx, msg.ID); err != nil {
		t.Fatalf("MarkMessageRead (second): %v", err)
	}

	got, err := q.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessageByID: %v", err)
	}
	if !got.IsRead {
		t.Error("message should be read")
	}

	if err := q.DeleteMessage(ctx, msg.ID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if _, err := q.GetMessageByID(ctx, msg.ID); err != sql.ErrNoRows {
		t.Errorf("err = %v after delete, want sql.ErrNoRows", err)
	}
}

func TestAnalyticsCounters(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	date := Day(time.Now())
	for i := 0; i < 3; i++ {
		if err := q.IncrementPageView(ctx, date); err != nil {
			t.Fatalf("IncrementPageView: %v", err)
		}
	}
	if err := q.IncrementServiceClick(ctx, date); err != nil {
		t.Fatalf("IncrementServiceClick: %v", err)
	}
	if err := q.IncrementInquiry(ctx, date); err != nil {
		t.Fatalf("IncrementInquiry: %v", err)
	}

	day, err := q.GetDailyAnalytics(ctx, date)
	if err != nil {
		t.Fatalf("GetDailyAnalytics: %v", err)
	}
	if day.PageViews != 3 {
		t.Errorf("PageViews = %d, want 3", day.PageViews)
	}
	if day.ServiceClicks != 1 {
		t.Errorf("ServiceClicks = %d, want 1", day.ServiceClicks)
	}
	if day.Inquiries != 1 {
		t.Errorf("Inquiries = %d, want 1", day.Inquiries)
	}
}

func TestAnalyticsCountries(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	date := Day(time.Now())
	for _, c := range []string{"DE", "DE", "FR"} {
		if err := q.IncrementCountryVisitor(ctx, date, c); err != nil {
			t.Fatalf("IncrementCountryVisitor: %v", err)
		}
	}

	rows, err := q.ListCountryAnalytics(ctx, date)
	if err != nil {
		t.Fatalf("ListCountryAnalytics: %v", err)
	}
	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Country] = row.Visitors
	}
	if counts["DE"] != 2 {
		t.Errorf("DE visitors = %d, want 2", counts["DE"])
	}
	if counts["FR"] != 1 {
		t.Errorf("FR visitors = %d, want 1", counts["FR"])
	}
}

func TestPruneAnalytics(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	old := Day(time.Now().AddDate(0, 0, -400))
	recent := Day(time.Now())
	if err := q.IncrementPageView(ctx, old); err != nil {
		t.Fatalf("IncrementPageView: %v", err)
	}
	if err := q.IncrementPageView(ctx, recent); err != nil {
		t.Fatalf("IncrementPageView: %v", err)
	}

	cutoff := Day(time.Now().AddDate(0, 0, -365))
	n, err := q.PruneAnalytics(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneAnalytics: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if _, err := q.GetDailyAnalytics(ctx, recent); err != nil {
		t.Errorf("recent day should survive prune: %v", err)
	}
}

func TestMediaCRUD(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	m, err := q.CreateMedia(ctx, CreateMediaParams{
		UUID:         "11111111-2222-3333-4444-555555555555",
		Filename:     "upload.webp",
		OriginalName: "team photo.jpg",
		MimeType:     "image/webp",
		Size:         2048,
		Width:        1200,
		Height:       800,
		FilePath:     "uploads/2026/08/upload.webp",
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}
	if m.ID == 0 {
		t.Error("ID should not be 0")
	}

	list, err := q.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}

	if err := q.DeleteMedia(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMedia: %v", err)
	}
	if _, err := q.GetMediaByID(ctx, m.ID); err != sql.ErrNoRows {
		t.Errorf("err = %v after delete, want sql.ErrNoRows", err)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding twice is safe.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed (second): %v", err)
	}

	q := New(db)
	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("seeded user should be admin")
	}

	for _, ct := range []string{model.CompanyInfoAbout, model.CompanyInfoContact} {
		info, err := q.GetCompanyInfo(ctx, ct)
		if err != nil {
			t.Errorf("GetCompanyInfo(%q): %v", ct, err)
			continue
		}
		// Seeded rows are empty placeholders until an admin fills them in.
		if info.Content != "" {
			t.Errorf("seeded %q content = %q, want empty", ct, info.Content)
		}
	}
}
