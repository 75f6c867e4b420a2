package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/alpha_tracker/internal/config"
	"github.com/vitos/alpha_tracker/internal/domain"
	"github.com/vitos/alpha_tracker/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	principal := flag.Float64("principal", 0, "amount per trade (USDT)")
	target := flag.Int("target", 0, "target level (1-20)")
	current := flag.Float64("current", 0, "cumulative volume already traded")
	maxDays := flag.Int("days", usecase.DefaultMaxDays, "days available to reach the target")
	table := flag.Bool("table", false, "print the level table and exit")
	asJSON := flag.Bool("json", false, "print the full report as JSON")
	flag.Parse()

	if *table {
		printTable()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	engine := usecase.NewLevelEngine()
	planner := usecase.NewPlanService(engine, usecase.NewPlanOptimizer(engine, cfg.Planner.LeverageFactor), cfg.Planner.DailyTradeCap)

	report, err := planner.Calculate(usecase.PlanRequest{
		PrincipalAmount:    *principal,
		TargetLevel:        *target,
		CurrentTotalAmount: *current,
		MaxDays:            *maxDays,
	})
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Printf("Failed to encode report: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printReport(report)

	if len(report.RecommendedLevels) > 0 {
		fmt.Println("\nRecommended levels for this principal:")
		for _, p := range engine.MultiLevelPlan(*principal, report.RecommendedLevels, *current) {
			fmt.Printf("  level %-2d volume %-8.0f trades %d\n", p.TargetLevel, p.RequiredAmount, p.RequiredTrades)
		}
	}
}

func printTable() {
	fmt.Printf("%-6s %12s\n", "Level", "Volume")
	for _, t := range domain.Tiers() {
		fmt.Printf("%-6d %12.0f\n", t.Level, t.RequiredAmount)
	}
}

func printReport(r *usecase.PlanReport) {
	cur := r.CurrentLevelInfo
	fmt.Printf("Current level: %d (volume %.2f", cur.CurrentLevel, cur.CurrentAmount)
	if cur.NextLevel != nil {
		fmt.Printf(", %.1f%% to level %d at %.0f", cur.ProgressPercentage, *cur.NextLevel, *cur.NextLevelAmount)
	}
	fmt.Println(")")

	plan := r.TradingPlan
	fmt.Printf("\nPlan for level %d (requires %.0f):\n", plan.TargetLevel, plan.RequiredAmount)
	if plan.CanAchieve {
		fmt.Printf("✅ %d trades of %.2f\n", plan.RequiredTrades, plan.TradeAmount)
	} else {
		fmt.Println("⚠️ Not achievable with these inputs")
	}
	for _, s := range plan.Suggestions {
		fmt.Printf("  - %s\n", s)
	}

	opt := r.OptimizedStrategy
	fmt.Printf("\nStrategy: %s, %d trades/day of %.2f, ~%d days", opt.Strategy, opt.DailyTrades, opt.TradeAmount, opt.EstimatedDays)
	if opt.Feasible {
		fmt.Println(" (within deadline)")
	} else {
		fmt.Println(" (exceeds deadline)")
	}
}
