package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_at           TEXT NOT NULL,
    scenario         TEXT NOT NULL,
    months           INTEGER NOT NULL,
    ending_cash      REAL NOT NULL,
    minimum_cash     REAL NOT NULL,
    peak_revolver    REAL NOT NULL,
    final_runway     REAL NOT NULL,
    founder_pct      REAL NOT NULL,
    safe_pct         REAL NOT NULL,
    series_a_pct     REAL NOT NULL,
    irr              REAL NOT NULL,
    moic             REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
CREATE INDEX IF NOT EXISTS idx_runs_run_at ON runs(run_at);
`
