package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/vitos/alpha_tracker/internal/config"
	"github.com/vitos/alpha_tracker/internal/infrastructure/exchange"
	"github.com/vitos/alpha_tracker/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	hours := flag.Int("hours", 24, "how far back to list orders")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.HasCredentials() {
		fmt.Println("❌ BINANCE_API_KEY / BINANCE_SECRET_KEY are not set")
		os.Exit(1)
	}

	fmt.Printf("Testing Binance Interaction...\n")
	if cfg.Binance.BaseURL != "" {
		fmt.Printf("Endpoint: %s\n", cfg.Binance.BaseURL)
	}
	fmt.Printf("Testnet: %v\n", cfg.Binance.Testnet)
	fmt.Printf("API Key: %s...\n", cfg.Binance.APIKey[:min(4, len(cfg.Binance.APIKey))])

	binance.UseTestnet = cfg.Binance.Testnet
	adapter := exchange.NewBinanceAdapter(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.BaseURL,
		cfg.Binance.Symbols, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 2. Check Public Endpoint (Ping)
	if err := adapter.Ping(ctx); err != nil {
		fmt.Printf("❌ Ping failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Ping OK")

	// 3. Check Private Endpoint (Orders)
	if len(cfg.Binance.Symbols) == 0 {
		fmt.Println("⚠️ No symbols configured, skipping order check")
		return
	}
	end := time.Now()
	orders, err := adapter.FetchOrders(ctx, end.Add(-time.Duration(*hours)*time.Hour), end, "")
	if err != nil {
		fmt.Printf("❌ Failed to list orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d orders in the last %dh\n", len(orders), *hours)

	records, err := usecase.ParseOrders(orders)
	if err != nil {
		fmt.Printf("❌ Orders did not parse: %v\n", err)
		os.Exit(1)
	}
	for _, r := range records {
		fmt.Printf("  %s %s %s qty=%.8f status=%s at %s\n",
			r.ID, r.Symbol, r.Side, r.FilledQty, r.Status, r.OccurredAt.Format(time.RFC3339))
	}
}
