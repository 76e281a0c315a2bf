// Command size_position suggests how many units to trade for a planned
// entry/stop pair, risking the configured fraction of account equity. The
// equity is reconstructed from the journal's realized history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"tradeforge/config"
	"tradeforge/internal/adapters/logger"
	"tradeforge/internal/adapters/sqlite"
	"tradeforge/internal/app"
)

func main() {
	entryStr := flag.String("entry", "", "Planned entry price per unit")
	stopStr := flag.String("stop", "", "Stop loss price per unit")
	flag.Parse()

	if *entryStr == "" || *stopStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: size_position -entry <price> -stop <price>")
		os.Exit(2)
	}
	entry, err := decimal.NewFromString(*entryStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid entry price %q: %v\n", *entryStr, err)
		os.Exit(2)
	}
	stop, err := decimal.NewFromString(*stopStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid stop loss price %q: %v\n", *stopStr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		log.Error(ctx, err, "failed to open trade journal database")
		os.Exit(1)
	}
	defer repo.Close()

	service, err := app.NewAnalyticsService(app.Config{
		StartingCapital: cfg.StartingCapital,
		PeriodsPerYear:  cfg.PeriodsPerYear,
		RiskFraction:    cfg.RiskFraction,
	}, log, repo)
	if err != nil {
		log.Error(ctx, err, "failed to create analytics service")
		os.Exit(1)
	}

	advice, err := service.SuggestPositionSize(ctx, entry, stop)
	if err != nil {
		log.Error(ctx, err, "failed to size position")
		os.Exit(1)
	}

	fmt.Println("=== Position Sizing ===")
	fmt.Printf("Account equity:    %s\n", advice.AccountEquity.StringFixed(2))
	fmt.Printf("Risk per trade:    %s (%.1f%% of equity)\n", advice.Size.RiskAmount.StringFixed(2), cfg.RiskFraction*100)
	fmt.Printf("Risk per unit:     %s\n", advice.Size.RiskPerUnit.StringFixed(2))
	fmt.Printf("Position size:     %d units\n", advice.Size.PositionSize)
	if advice.KellyFraction > 0 {
		fmt.Printf("Kelly suggestion:  %.1f%% of equity (capped)\n", advice.KellyFraction*100)
	} else {
		fmt.Println("Kelly suggestion:  unavailable (insufficient win/loss history)")
	}
}
