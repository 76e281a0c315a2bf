package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"tradeforge/config"
	"tradeforge/internal/adapters/logger"
	"tradeforge/internal/adapters/sqlite"
	"tradeforge/internal/app"
)

func main() {
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

	report, err := service.Analyze(ctx)
	if err != nil {
		log.Error(ctx, err, "analysis failed")
		os.Exit(1)
	}

	printReport(report)
}

func printReport(report *app.Report) {
	m := report.Metrics

	fmt.Println("=== Performance ===")
	fmt.Printf("Closed trades:     %d (%d wins / %d losses)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Printf("Total P&L:         %s\n", m.TotalPNL.StringFixed(2))
	fmt.Printf("Total fees:        %s\n", m.TotalFees.StringFixed(2))
	fmt.Printf("Final equity:      %s\n", m.FinalEquity.StringFixed(2))
	fmt.Printf("Win rate:          %.1f%%\n", m.WinRate*100)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Println("Profit factor:     inf (no losing trades)")
	} else {
		fmt.Printf("Profit factor:     %.2f\n", m.ProfitFactor)
	}
	fmt.Printf("Expectancy:        %.2f per trade\n", m.Expectancy)
	fmt.Printf("Max drawdown:      %s (%.1f%%)\n", m.MaxDrawdown.StringFixed(2), m.MaxDrawdownPct*100)
	fmt.Printf("Sharpe ratio:      %.2f\n", m.SharpeRatio)
	if m.BestTicker != "" {
		fmt.Printf("Best ticker:       %s (%s)\n", m.BestTicker, m.BestTickerPNL.StringFixed(2))
		fmt.Printf("Worst ticker:      %s (%s)\n", m.WorstTicker, m.WorstTickerPNL.StringFixed(2))
		fmt.Printf("Best month:        %s (%s)\n", m.BestMonth, m.BestMonthPNL.StringFixed(2))
		fmt.Printf("Worst month:       %s (%s)\n", m.WorstMonth, m.WorstMonthPNL.StringFixed(2))
	}

	if len(report.OpenLots) > 0 {
		fmt.Println("\n=== Open Positions ===")
		for i := range report.OpenLots {
			lot := &report.OpenLots[i]
			fmt.Printf("%-10s %-5s %s @ %s (opened %s)\n",
				lot.Ticker, lot.Direction, lot.Quantity.String(),
				lot.CostBasis().StringFixed(2), lot.OpenTime.Format("2006-01-02"))
		}
	}

	if len(report.Insights) > 0 {
		fmt.Println("\n=== Insights ===")
		for _, ins := range report.Insights {
			fmt.Printf("[%s] %s\n", ins.Severity, ins.Message)
		}
	}

	if len(report.Rejected) > 0 {
		fmt.Printf("\n%d invalid trade record(s) were skipped; see the log.\n", len(report.Rejected))
	}
}
