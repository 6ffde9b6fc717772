// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/backfill"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/reconcile"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/store"
	"github.com/LSA-CEO/gozo-authentic-sub001/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, "gozo - localized content reconciliation and translation backfill\n\n")
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "Commands:\n")
	_, _ = fmt.Fprintf(os.Stderr, "  serve      Run the admin API server (default)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  scan       Report gaps, stale values and structural conflicts (read-only)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  repair     Delete general keys that collide with nested sections\n")
	_, _ = fmt.Fprintf(os.Stderr, "  backfill   Translate missing and stale values\n")
	_, _ = fmt.Fprintf(os.Stderr, "  seed       Load content and categories from a YAML file\n")
	_, _ = fmt.Fprintf(os.Stderr, "  version    Show version information\n")
	_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_DB_PATH              SQLite database path (default: ./data/gozo.db)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_SOURCE_LOCALE        Source locale (default: en)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_LOCALES              Comma-separated locales (default: en,fr,de,it,nl,es,pt)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_TRANSLATOR_API_KEY   API key for the translation endpoint\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_REDIS_URL            Redis URL for the translation cache (optional)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  GOZO_ADMIN_TOKEN          Bearer token for mutating API routes\n")
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = usage
	flag.Parse()

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if *showVersion || cmd == "version" {
		_, _ = fmt.Println(versionInfo())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, args); err != nil {
		slog.Error("application error", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	switch cmd {
	case "serve":
		return runServe(ctx, args)
	case "scan":
		return runScan(ctx, args)
	case "repair":
		return runRepair(ctx, args)
	case "backfill":
		return runBackfill(ctx, args)
	case "seed":
		return runSeed(ctx, args)
	}
	usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func versionInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runScan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	verbose := fs.Bool("tasks", false, "List every task, not only the counts")
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.store.ListContentEntries(ctx)
	if err != nil {
		return fmt.Errorf("loading content entries: %w", err)
	}
	records, err := a.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}

	scan := reconcile.Scan(entries, records, a.reg)
	out := map[string]any{
		"counts":          scan.Counts(),
		"missing_sources": len(scan.MissingSources),
		"conflicts":       len(scan.Conflicts),
	}
	if *verbose {
		out["tasks"] = scan.Tasks
	}
	for _, ms := range scan.MissingSources {
		a.logger.Info("missing source", "entity", ms.Entity.String(), "field", ms.Field)
	}
	for _, c := range scan.Conflicts {
		a.logger.Info("structural conflict", "page", c.Entry.Page, "key", c.Entry.Key, "locale", c.Entry.Locale)
	}
	return printJSON(out)
}

func runRepair(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("repair", flag.ExitOnError)
	page := fs.String("page", "", "Repair a single page (default: all pages)")
	dryRun := fs.Bool("dry-run", false, "Report conflicts without deleting")
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := reconcile.NewRepairer(a.store, a.logger).Repair(ctx, reconcile.RepairOptions{
		Page:   *page,
		DryRun: *dryRun,
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"dry_run":   res.DryRun,
		"conflicts": len(res.Conflicts),
		"deleted":   res.Deleted,
	})
}

func runBackfill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	scope := fs.String("scope", string(backfill.ScopeSiteContent), "categories | site_content | specific")
	repair := fs.Bool("repair", false, "Repair structural conflicts before a site_content run")
	page := fs.String("page", "", "Page of the group (specific scope)")
	section := fs.String("section", "", "Section of the group (specific scope)")
	key := fs.String("key", "", "Key of the group (specific scope)")
	locales := fs.String("locales", "", "Comma-separated target locales (default: all targets)")
	_ = fs.Parse(args)

	req := backfill.Request{ContentType: backfill.Scope(*scope), Repair: *repair}
	if req.ContentType == backfill.ScopeSpecific {
		item := backfill.SpecificTranslation{Page: *page, Section: *section, Key: *key}
		if *locales != "" {
			item.Locales = strings.Split(*locales, ",")
		}
		req.Translations = []backfill.SpecificTranslation{item}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.backfill.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := printJSON(report); err != nil {
		return err
	}
	if !report.Success {
		return fmt.Errorf("backfill finished with %d failed tasks", len(report.Failed))
	}
	return nil
}

func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML seed file")
	_ = fs.Parse(args)

	if *file == "" {
		return errors.New("seed requires -file")
	}
	data, err := store.LoadSeedFile(*file)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.store.Seed(ctx, data, a.reg, a.logger)
	if err != nil {
		return err
	}
	return printJSON(res)
}
