package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"options-backtester/internal/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
	return path
}

func TestImportBarsCSV(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Rows out of order: the import sorts them.
	path := writeCSV(t, `date,open,high,low,close
2024-01-03,24100,24180,24050,24150
2024-01-01,24000,24050,23950,24020
2024-01-02,24020,24120,24000,24100
`)

	count, err := ImportBarsCSV(ctx, s, "NIFTY", path)
	if err != nil {
		t.Fatalf("ImportBarsCSV failed: %v", err)
	}
	if count != 3 {
		t.Errorf("imported %d bars, want 3", count)
	}

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars, err := s.GetBars(ctx, "NIFTY", from, from.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	if bars[0].Close != 24020 || bars[2].Close != 24150 {
		t.Errorf("bars not sorted by date: first close %.0f, last %.0f",
			bars[0].Close, bars[2].Close)
	}
}

func TestImportBarsCSVEmpty(t *testing.T) {
	s := newTestStore(t)

	path := writeCSV(t, "date,open,high,low,close\n")
	_, err := ImportBarsCSV(context.Background(), s, "NIFTY", path)
	if err == nil {
		t.Fatal("expected error for empty csv")
	}
	if !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("error = %v, want wrapped ErrDataNotFound", err)
	}
}

func TestImportBarsCSVMissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := ImportBarsCSV(context.Background(), s, "NIFTY", "/nonexistent/bars.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportBarsCSVBadDate(t *testing.T) {
	s := newTestStore(t)

	path := writeCSV(t, `date,open,high,low,close
03-01-2024,24100,24180,24050,24150
`)
	_, err := ImportBarsCSV(context.Background(), s, "NIFTY", path)
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
}
