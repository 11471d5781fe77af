// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Command legacyimport copies content from the previous site's MySQL
// database into the SQLite database used by the current site. It is
// idempotent: rows already imported are skipped, so it can be re-run
// after a partial failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/avenir-labs/avenir-site/internal/legacy"
	"github.com/avenir-labs/avenir-site/internal/store"
)

func main() {
	dbPath := flag.String("db", "./data/avenir.db", "SQLite database path")
	prefix := flag.String("prefix", "", "Legacy table prefix (e.g. wp_)")
	dryRun := flag.Bool("dry-run", false, "Report what would be imported without writing")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "legacyimport - import content from the legacy MySQL site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEGACY_DB_HOST      MySQL host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEGACY_DB_PORT      MySQL port (default: 3306)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEGACY_DB_USER      MySQL user (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEGACY_DB_PASSWORD  MySQL password (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEGACY_DB_NAME      MySQL database name (required)\n")
	}

	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := run(*dbPath, *prefix, *dryRun); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(dbPath, prefix string, dryRun bool) error {
	_ = godotenv.Load()

	user := os.Getenv("LEGACY_DB_USER")
	password := os.Getenv("LEGACY_DB_PASSWORD")
	database := os.Getenv("LEGACY_DB_NAME")
	if user == "" || database == "" {
		return fmt.Errorf("LEGACY_DB_USER and LEGACY_DB_NAME must be set")
	}

	host := envOrDefault("LEGACY_DB_HOST", "localhost")
	port := envOrDefault("LEGACY_DB_PORT", "3306")

	ctx := context.Background()

	dsn := legacy.BuildDSN(user, password, host, port, database)
	reader, err := legacy.NewReader(dsn, prefix)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Error("error closing legacy database", "error", err)
		}
	}()

	services, posts, inquiries, err := reader.Counts(ctx)
	if err != nil {
		return err
	}
	slog.Info("legacy database connected",
		"host", host,
		"database", database,
		"services", services,
		"posts", posts,
		"inquiries", inquiries,
	)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening site database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing site database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if dryRun {
		slog.Info("dry run, nothing will be written")
	}

	result, err := legacy.NewImporter(db, dryRun).Run(ctx, reader)
	if err != nil {
		return err
	}

	slog.Info("import complete",
		"services_imported", result.ServicesImported,
		"services_skipped", result.ServicesSkipped,
		"resources_imported", result.ResourcesImported,
		"resources_skipped", result.ResourcesSkipped,
		"messages_imported", result.MessagesImported,
		"messages_skipped", result.MessagesSkipped,
	)
	return nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
