// ════════════════════════════════════════════════════════════════════════════════════════════════
// Wheel Statistics Journal
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: SQLite-Backed Snapshot Store
//
// Description:
//   Durable journal of periodic wheel-health snapshots for offline latency
//   analysis and alert baselining. Only monitoring history is persisted —
//   timers themselves are in-memory and lost on restart by design.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package statstore

import (
	"database/sql"

	"hfxcore/timewheel"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one captured view of wheel health. The embedded Statistics
// carries its own JSON tags for the heartbeat encoding.
type Snapshot struct {
	CapturedNs   uint64 `json:"captured_ns"`
	ActiveTimers int    `json:"active_timers"`
	timewheel.Statistics
}

// Store owns the journal database and its prepared insert.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

const schema = `
CREATE TABLE IF NOT EXISTS wheel_stats (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	captured_ns      INTEGER NOT NULL,
	active_timers    INTEGER NOT NULL,
	total_scheduled  INTEGER NOT NULL,
	total_executed   INTEGER NOT NULL,
	total_cancelled  INTEGER NOT NULL,
	total_failed     INTEGER NOT NULL,
	avg_execution_ns REAL    NOT NULL,
	max_execution_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wheel_stats_captured ON wheel_stats(captured_ns);`

// Open creates or reopens the journal at path and bootstraps the schema.
// Use ":memory:" for ephemeral stores in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	ins, err := db.Prepare(`
		INSERT INTO wheel_stats (
			captured_ns, active_timers, total_scheduled, total_executed,
			total_cancelled, total_failed, avg_execution_ns, max_execution_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, insert: ins}, nil
}

// Append journals one snapshot.
func (s *Store) Append(snap *Snapshot) error {
	_, err := s.insert.Exec(
		int64(snap.CapturedNs),
		snap.ActiveTimers,
		int64(snap.TotalScheduled),
		int64(snap.TotalExecuted),
		int64(snap.TotalCancelled),
		int64(snap.TotalFailed),
		snap.AvgExecutionNs,
		int64(snap.MaxExecutionNs),
	)
	return err
}

// Recent returns up to limit snapshots, newest first. Used by startup
// diagnostics and the alerting baseline.
func (s *Store) Recent(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT captured_ns, active_timers, total_scheduled, total_executed,
		       total_cancelled, total_failed, avg_execution_ns, max_execution_ns
		FROM wheel_stats
		ORDER BY captured_ns DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0, limit)
	for rows.Next() {
		var snap Snapshot
		var captured, scheduled, executed, cancelled, failed, maxNs int64
		if err := rows.Scan(&captured, &snap.ActiveTimers, &scheduled,
			&executed, &cancelled, &failed, &snap.AvgExecutionNs, &maxNs); err != nil {
			return nil, err
		}
		snap.CapturedNs = uint64(captured)
		snap.TotalScheduled = uint64(scheduled)
		snap.TotalExecuted = uint64(executed)
		snap.TotalCancelled = uint64(cancelled)
		snap.TotalFailed = uint64(failed)
		snap.MaxExecutionNs = uint64(maxNs)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Close releases the prepared statement and the database handle.
func (s *Store) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
