// Package sqlite implements ports.TradeRepository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"tradeforge/internal/domain"
	"tradeforge/internal/ports"
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (and if needed creates) the trade journal database.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("%w: failed to create data directory '%s': %v", ports.ErrDBConnection, filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "trade journal database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

// initializeSchema creates the trades table if it does not exist. Money and
// quantity columns are TEXT so decimal values survive round-trips exactly.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP NOT NULL,
		ticker TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		fees TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'USD',
		notes TEXT NOT NULL DEFAULT '',
		option_type TEXT NULL,
		strike_price TEXT NULL,
		expiration_date TIMESTAMP NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_timestamp_id ON trades (timestamp, id);
	CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades (ticker);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "closing trade journal database")
		return r.db.Close()
	}
	return nil
}

// Create saves a new trade and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, trade *domain.TradeRecord) (int64, error) {
	if err := trade.Validate(); err != nil {
		return 0, err
	}
	var optType, strike sql.NullString
	var expiration sql.NullTime
	if trade.AssetType == domain.AssetOption {
		optType = sql.NullString{String: string(trade.OptionType), Valid: true}
		strike = sql.NullString{String: trade.Strike.String(), Valid: true}
		expiration = sql.NullTime{Time: trade.ExpirationDate.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO trades (timestamp, ticker, asset_type, side, quantity, price, fees, currency, notes, option_type, strike_price, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.Timestamp.UTC(), trade.Ticker, string(trade.AssetType), string(trade.Side),
		trade.Quantity.String(), trade.Price.String(), trade.Fees.String(),
		trade.Currency, trade.Notes, optType, strike, expiration,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert trade: %v", ports.ErrQueryFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get inserted trade id: %v", ports.ErrQueryFailed, err)
	}
	trade.ID = id
	return id, nil
}

const selectColumns = `id, timestamp, ticker, asset_type, side, quantity, price, fees, currency, notes, option_type, strike_price, expiration_date`

// GetAll returns every trade ordered by (timestamp, id) ascending, the
// canonical matching order.
func (r *Repository) GetAll(ctx context.Context) ([]domain.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM trades ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()
	return r.scanTrades(rows)
}

// GetByTicker returns all trades for one ticker in canonical order.
func (r *Repository) GetByTicker(ctx context.Context, ticker string) ([]domain.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM trades WHERE ticker = ? ORDER BY timestamp ASC, id ASC`, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades for ticker %s: %v", ports.ErrQueryFailed, ticker, err)
	}
	defer rows.Close()
	return r.scanTrades(rows)
}

// Delete removes a trade by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete trade %d: %v", ports.ErrDeleteFailed, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check delete result for trade %d: %v", ports.ErrDeleteFailed, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: trade %d", ports.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) scanTrades(rows *sql.Rows) ([]domain.TradeRecord, error) {
	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var assetType, side, quantity, price, fees string
		var optType, strike sql.NullString
		var expiration sql.NullTime
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Ticker, &assetType, &side,
			&quantity, &price, &fees, &t.Currency, &t.Notes, &optType, &strike, &expiration); err != nil {
			return nil, fmt.Errorf("%w: failed to scan trade row: %v", ports.ErrQueryFailed, err)
		}
		t.AssetType = domain.AssetType(assetType)
		t.Side = domain.OrderSide(side)
		var err error
		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("%w: trade %d has malformed quantity %q: %v", ports.ErrQueryFailed, t.ID, quantity, err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("%w: trade %d has malformed price %q: %v", ports.ErrQueryFailed, t.ID, price, err)
		}
		if t.Fees, err = decimal.NewFromString(fees); err != nil {
			return nil, fmt.Errorf("%w: trade %d has malformed fees %q: %v", ports.ErrQueryFailed, t.ID, fees, err)
		}
		if optType.Valid {
			t.OptionType = domain.OptionType(optType.String)
		}
		if strike.Valid {
			if t.Strike, err = decimal.NewFromString(strike.String); err != nil {
				return nil, fmt.Errorf("%w: trade %d has malformed strike %q: %v", ports.ErrQueryFailed, t.ID, strike.String, err)
			}
		}
		if expiration.Valid {
			t.ExpirationDate = expiration.Time
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating trade rows: %v", ports.ErrQueryFailed, err)
	}
	return trades, nil
}
