package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily bars for the underlying
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- One row per backtest run
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		strategy TEXT NOT NULL,
		structure TEXT NOT NULL,
		symbol TEXT NOT NULL,
		period_start DATETIME NOT NULL,
		period_end DATETIME NOT NULL,
		total_trades INTEGER NOT NULL,
		total_pnl REAL NOT NULL,
		win_rate REAL NOT NULL,
		skipped_cycles INTEGER NOT NULL,
		statistics TEXT NOT NULL,
		monthly_pnl TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Completed trades of a run
	CREATE TABLE IF NOT EXISTS backtest_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		entry_date DATETIME NOT NULL,
		expiry_date DATETIME NOT NULL,
		exit_date DATETIME NOT NULL,
		dte INTEGER NOT NULL,
		spot_entry REAL NOT NULL,
		spot_exit REAL NOT NULL,
		iv_entry REAL NOT NULL,
		net_credit REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		pnl REAL NOT NULL,
		legs TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES backtest_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON bars(symbol, date);
	CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBars upserts daily bars for a symbol in one transaction.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []models.DayBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close`)
	if err != nil {
		return fmt.Errorf("preparing bar insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date, b.Open, b.High, b.Low, b.Close); err != nil {
			return fmt.Errorf("inserting bar %s: %w", b.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// GetBars returns bars for a symbol in [from, to], ordered by date.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DayBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close
		FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying bars: %w", err)
	}
	defer rows.Close()

	var bars []models.DayBar
	for rows.Next() {
		var b models.DayBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scanning bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// CountBars returns the number of stored bars for a symbol.
func (s *SQLiteStore) CountBars(ctx context.Context, symbol string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bars WHERE symbol = ?`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting bars: %w", err)
	}
	return count, nil
}

// SaveResult persists a backtest run and its trades, returning the run ID.
func (s *SQLiteStore) SaveResult(ctx context.Context, symbol string, result *models.BacktestResult) (int64, error) {
	statsJSON, err := json.Marshal(result.Statistics)
	if err != nil {
		return 0, fmt.Errorf("encoding statistics: %w", err)
	}
	monthlyJSON, err := json.Marshal(result.MonthlyPnL)
	if err != nil {
		return 0, fmt.Errorf("encoding monthly pnl: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
			(strategy, structure, symbol, period_start, period_end,
			 total_trades, total_pnl, win_rate, skipped_cycles, statistics, monthly_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.StrategyName, result.StructureDescription, symbol,
		result.PeriodStart, result.PeriodEnd,
		result.Statistics.TotalTrades, result.Statistics.TotalPnL,
		result.Statistics.WinRate, result.SkippedCycles,
		string(statsJSON), string(monthlyJSON))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO backtest_trades
			(run_id, entry_date, expiry_date, exit_date, dte,
			 spot_entry, spot_exit, iv_entry, net_credit, exit_reason, pnl, legs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing trade insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Trades {
		legsJSON, err := json.Marshal(t.Legs)
		if err != nil {
			return 0, fmt.Errorf("encoding legs: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID,
			t.EntryDate, t.ExpiryDate, t.ExitDate, t.DTE,
			t.SpotAtEntry, t.SpotAtExit, t.IVAtEntry, t.NetCredit,
			string(t.ExitReason), t.TotalPnL, string(legsJSON)); err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns stored run summaries, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, symbol, period_start, period_end,
		       total_trades, total_pnl, win_rate, created_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Strategy, &r.Symbol, &r.PeriodStart, &r.PeriodEnd,
			&r.TotalTrades, &r.TotalPnL, &r.WinRate, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
