// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/avenir-labs/avenir-site/internal/auth"
	"github.com/avenir-labs/avenir-site/internal/model"
)

// Default admin credentials
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme123"
)

// Seed creates initial data in the database.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Check if admin user already exists
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	if err := seedCompanyInfo(ctx, queries, now); err != nil {
		return err
	}

	return nil
}

// seedCompanyInfo ensures both company info rows exist so public reads
// always have content to return.
func seedCompanyInfo(ctx context.Context, queries *Queries, now time.Time) error {
	for _, t := range []string{model.CompanyInfoAbout, model.CompanyInfoContact} {
		if _, err := queries.GetCompanyInfo(ctx, t); err == nil {
			continue
		} else if err != sql.ErrNoRows {
			return fmt.Errorf("checking company info %q: %w", t, err)
		}
		if _, err := queries.UpsertCompanyInfo(ctx, t, "", now); err != nil {
			return fmt.Errorf("seeding company info %q: %w", t, err)
		}
	}
	return nil
}
