package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
	"options-backtester/internal/performance"
)

// importBatchSize is the number of bars written per database batch.
const importBatchSize = 500

// csvDate parses the date column of a bar CSV ("2006-01-02").
type csvDate struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *csvDate) UnmarshalCSV(value string) error {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", value, err)
	}
	d.Time = t
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d *csvDate) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

// csvBar maps one row of a daily-bar CSV.
type csvBar struct {
	Date  csvDate `csv:"date"`
	Open  float64 `csv:"open"`
	High  float64 `csv:"high"`
	Low   float64 `csv:"low"`
	Close float64 `csv:"close"`
}

// ImportBarsCSV reads daily bars from a CSV file and writes them to the
// store in batches. Returns the number of bars imported.
func ImportBarsCSV(ctx context.Context, ds DataStore, symbol, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.NewDataError("csv", symbol, "opening file", err)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return 0, errors.NewDataError("csv", symbol, "parsing file", err)
	}
	if len(rows) == 0 {
		return 0, errors.NewDataError("csv", symbol, "file has no rows", errors.ErrDataNotFound)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date.Time)
	})

	count := 0
	batcher := performance.NewBatchProcessor(importBatchSize, func(bars []models.DayBar) error {
		if err := ds.SaveBars(ctx, symbol, bars); err != nil {
			return err
		}
		count += len(bars)
		return nil
	})

	for _, row := range rows {
		bar := models.DayBar{
			Date:  row.Date.Time,
			Open:  row.Open,
			High:  row.High,
			Low:   row.Low,
			Close: row.Close,
		}
		if err := batcher.Add(bar); err != nil {
			return count, err
		}
	}
	if err := batcher.Flush(); err != nil {
		return count, err
	}

	return count, nil
}
