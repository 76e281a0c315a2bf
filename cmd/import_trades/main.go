// Command import_trades loads a trade CSV into the journal database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tradeforge/config"
	"tradeforge/internal/adapters/logger"
	"tradeforge/internal/adapters/sqlite"
	"tradeforge/internal/journal"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the trade CSV file to import")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: import_trades -csv <file>")
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

	trades, err := journal.ReadTrades(*csvPath)
	if err != nil {
		log.Error(ctx, err, "failed to read trade CSV", map[string]interface{}{"path": *csvPath})
		os.Exit(1)
	}
	if len(trades) == 0 {
		log.Warn(ctx, "no trades found in CSV", map[string]interface{}{"path": *csvPath})
		return
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		log.Error(ctx, err, "failed to open trade journal database")
		os.Exit(1)
	}
	defer repo.Close()

	for i := range trades {
		if _, err := repo.Create(ctx, &trades[i]); err != nil {
			log.Error(ctx, err, "failed to insert trade", map[string]interface{}{
				"ticker":    trades[i].Ticker,
				"timestamp": trades[i].Timestamp,
			})
			os.Exit(1)
		}
	}
	log.Info(ctx, "import complete", map[string]interface{}{
		"path":   *csvPath,
		"trades": len(trades),
	})
}
