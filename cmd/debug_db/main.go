package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vitos/alpha_tracker/internal/config"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	days := flag.Int("days", 30, "days of summaries to print")
	limit := flag.Int("trades", 20, "recent trades to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	since := time.Now().UTC().AddDate(0, 0, -*days)
	summaries, err := store.QuerySummariesSince(ctx, since)
	if err != nil {
		fmt.Printf("Failed to query summaries: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d daily summaries since %s:\n", len(summaries), domain.DateKey(since))
	var volume float64
	for _, s := range summaries {
		volume += s.TotalQualifyingQty
		fmt.Printf("- %s: buy=%.8f points=%.2f trades=%d scoring=%s\n",
			domain.DateKey(s.Date), s.TotalQualifyingQty, s.Points, s.TradeCount, s.Scoring)
	}
	fmt.Printf("Total buy volume %.8f -> level %d\n", volume, domain.LevelForAmount(volume))

	trades, err := store.ListTrades(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list trades: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nLatest %d trades:\n", len(trades))
	for _, t := range trades {
		fmt.Printf("- %s %s %s qty=%.8f price=%.8f status=%s at %s\n",
			t.ID, t.Symbol, t.Side, t.FilledQty, t.Price, t.Status, t.OccurredAt.Format(time.RFC3339))
	}
}
