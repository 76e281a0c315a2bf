// Command export_report runs the analytics engine over the journal and
// writes the realized ledger, equity curve, and metrics panel as CSV files
// for spreadsheet or chart collaborators.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"tradeforge/config"
	"tradeforge/internal/adapters/logger"
	"tradeforge/internal/adapters/sqlite"
	"tradeforge/internal/app"
	"tradeforge/internal/journal"
)

func main() {
	outDir := flag.String("out", "./reports", "Directory to write report CSVs into")
	flag.Parse()

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

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Error(ctx, err, "failed to create output directory", map[string]interface{}{"dir": *outDir})
		os.Exit(1)
	}

	outputs := map[string]func(string) error{
		"realized_events.csv": func(p string) error { return journal.WriteEvents(report.Events, p) },
		"equity_curve.csv":    func(p string) error { return journal.WriteEquityCurve(report.Equity, p) },
		"metrics.csv":         func(p string) error { return journal.WriteMetricsSummary(report.Metrics, p) },
	}
	for name, write := range outputs {
		path := filepath.Join(*outDir, name)
		if err := write(path); err != nil {
			log.Error(ctx, err, "failed to write report file", map[string]interface{}{"path": path})
			os.Exit(1)
		}
	}

	log.Info(ctx, "report exported", map[string]interface{}{
		"dir":       *outDir,
		"events":    len(report.Events),
		"open_lots": len(report.OpenLots),
	})
}
