// Package store provides a SQLite-backed history of model runs, so scenario
// outcomes can be compared across assumption changes over time.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/broguedistilling/distillery-forecast/internal/engine"

	_ "modernc.org/sqlite" // register sqlite driver
)

// History provides SQLite-backed run persistence.
type History struct {
	db *sql.DB
}

// RunSummary is one persisted scenario run.
type RunSummary struct {
	ID           int64
	RunAt        time.Time
	Scenario     string
	Months       int
	EndingCash   float64
	MinimumCash  float64
	PeakRevolver float64
	FinalRunway  float64
	FounderPct   float64
	SafePct      float64
	SeriesAPct   float64
	IRR          float64
	MOIC         float64
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun stores the summary of one scenario run.
func (h *History) SaveRun(result engine.Result) error {
	summary := Summarize(result)

	_, err := h.db.Exec(`INSERT INTO runs
		(run_at, scenario, months, ending_cash, minimum_cash, peak_revolver,
		 final_runway, founder_pct, safe_pct, series_a_pct, irr, moic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), summary.Scenario, summary.Months,
		summary.EndingCash, summary.MinimumCash, summary.PeakRevolver,
		summary.FinalRunway, summary.FounderPct, summary.SafePct,
		summary.SeriesAPct, summary.IRR, summary.MOIC,
	)
	if err != nil {
		return fmt.Errorf("saving run for scenario %s: %w", summary.Scenario, err)
	}
	return nil
}

// ListRuns reads persisted runs, most recent first, up to the given limit.
// A non-positive limit returns everything.
func (h *History) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT id, run_at, scenario, months, ending_cash, minimum_cash,
		peak_revolver, final_runway, founder_pct, safe_pct, series_a_pct, irr, moic
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var runAt string
		if err := rows.Scan(&s.ID, &runAt, &s.Scenario, &s.Months, &s.EndingCash,
			&s.MinimumCash, &s.PeakRevolver, &s.FinalRunway, &s.FounderPct,
			&s.SafePct, &s.SeriesAPct, &s.IRR, &s.MOIC); err != nil {
			return nil, err
		}
		if parsed, parseErr := time.Parse(time.RFC3339, runAt); parseErr == nil {
			s.RunAt = parsed
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Summarize reduces a full model result to the persisted summary columns.
func Summarize(result engine.Result) RunSummary {
	summary := RunSummary{
		Scenario:   result.ScenarioName,
		Months:     len(result.Ledger),
		FounderPct: result.CapTable.Founders.OwnershipPct,
		SafePct:    result.CapTable.SafeInvestors.OwnershipPct,
		SeriesAPct: result.CapTable.SeriesAInvestor.OwnershipPct,
		IRR:        result.Returns.IRR,
		MOIC:       result.Returns.MOIC,
	}

	for i, month := range result.Ledger {
		if i == 0 || month.EndingCash < summary.MinimumCash {
			summary.MinimumCash = month.EndingCash
		}
		if month.RevolverBalance > summary.PeakRevolver {
			summary.PeakRevolver = month.RevolverBalance
		}
	}

	if n := len(result.Ledger); n > 0 {
		summary.EndingCash = result.Ledger[n-1].EndingCash
		summary.FinalRunway = result.Ledger[n-1].RunwayMonths
	}

	return summary
}
