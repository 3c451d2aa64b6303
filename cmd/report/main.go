// Package main generates an offline wrapped report for one wallet:
// a Markdown summary plus CSV exports of the daily P&L series and the
// counterfactual comparisons.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/hyperliquid"
	"trading-wrapped/internal/prices"
	"trading-wrapped/internal/reporting"
	"trading-wrapped/internal/storage"
	"trading-wrapped/internal/storage/migrations"
	pgstore "trading-wrapped/internal/storage/postgres"
	"trading-wrapped/internal/wrapped"
)

func main() {
	_ = godotenv.Load()

	// Parse flags
	address := flag.String("address", "", "Wallet address (0x...)")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (stored snapshot mode)")
	analyze := flag.Bool("analyze", false, "Run a live analysis instead of reading a stored snapshot")
	tz := flag.String("tz", "", "IANA timezone for hour-of-day buckets (default UTC)")
	flag.Parse()

	ctx := context.Background()

	// Validate flags
	if *address == "" {
		fmt.Fprintln(os.Stderr, "Error: --address is required")
		os.Exit(1)
	}
	if err := hyperliquid.ValidateAddress(*address); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid wallet address %q\n", *address)
		os.Exit(1)
	}
	if !*analyze && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when reading a stored snapshot")
		fmt.Fprintln(os.Stderr, "Use --analyze to fetch and analyze live data instead")
		os.Exit(1)
	}

	loc := time.UTC
	if *tz != "" {
		parsed, err := time.LoadLocation(*tz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unknown timezone %q\n", *tz)
			os.Exit(1)
		}
		loc = parsed
	}

	snapshot, err := loadSnapshot(ctx, *address, *postgresDSN, *analyze, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Build and render
	report := reporting.NewGenerator(nil).Build(snapshot)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"WRAPPED.md":    reporting.RenderMarkdown(report),
		"daily_pnl.csv": reporting.RenderDailyPnLCSV(report.DailyPnL),
		"what_if.csv":   reporting.RenderWhatIfCSV(report.WhatIf),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Println("Wrapped report generated successfully:")
	fmt.Printf("  - %s/WRAPPED.md\n", *outputDir)
	fmt.Printf("  - %s/daily_pnl.csv\n", *outputDir)
	fmt.Printf("  - %s/what_if.csv\n", *outputDir)
}

// loadSnapshot either reads the latest stored snapshot or runs a live
// analysis against the public APIs.
func loadSnapshot(ctx context.Context, address, postgresDSN string, analyze bool, loc *time.Location) (*domain.ResultSnapshot, error) {
	if analyze {
		service := wrapped.New(wrapped.Options{
			Venue: hyperliquid.NewHTTPClient(""),
			Prices: prices.NewCache(&prices.Router{
				Crypto: prices.NewCoinGeckoClient(""),
				Stock:  prices.NewStooqClient(""),
			}),
		})
		snapshot, err := service.Analyze(ctx, address, loc)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", address, err)
		}
		return snapshot, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	snapshot, err := pgstore.NewSnapshotStore(pool).GetLatest(ctx, address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("no stored analysis for %s (run the server or use --analyze)", address)
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot, nil
}
