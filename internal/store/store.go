// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"options-backtester/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Historical bars
	SaveBars(ctx context.Context, symbol string, bars []models.DayBar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DayBar, error)
	CountBars(ctx context.Context, symbol string) (int, error)

	// Backtest results
	SaveResult(ctx context.Context, symbol string, result *models.BacktestResult) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Lifecycle
	Close() error
}

// RunRecord is a stored backtest run summary.
type RunRecord struct {
	ID          int64
	Strategy    string
	Symbol      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalTrades int
	TotalPnL    float64
	WinRate     float64
	CreatedAt   time.Time
}
