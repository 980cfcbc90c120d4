// Package runlog provides SQLite-based archiving of causality runs and
// simulations, so assignment results can be compared across model revisions.
package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
)

// Store handles SQLite database operations for run archiving.
type Store struct {
	db *sql.DB
}

// Run is one archived causality assignment of a graph.
type Run struct {
	ID        string    `json:"id"`
	Graph     string    `json:"graph"`
	CreatedAt time.Time `json:"created_at"`
	Elements  int       `json:"elements"`
	Bonds     int       `json:"bonds"`
	Fallbacks int       `json:"fallbacks"`
}

// RunBond is the causality mark of one bond within a run.
type RunBond struct {
	RunID         string `json:"run_id"`
	BondIndex     int    `json:"bond_index"`
	Start         string `json:"start"`
	End           string `json:"end"`
	EffortInputAt string `json:"effort_input_at"`
	Fallback      bool   `json:"fallback"`
}

// RunEvent is one assignment event within a run.
type RunEvent struct {
	RunID         string `json:"run_id"`
	Seq           int    `json:"seq"`
	Phase         string `json:"phase"`
	BondIndex     int    `json:"bond_index"`
	EffortInputAt string `json:"effort_input_at"`
	Reason        string `json:"reason"`
}

// New opens (creating if needed) the run archive at the given path.
// Use ":memory:" for an ephemeral archive.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		graph TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		elements INTEGER NOT NULL,
		bonds INTEGER NOT NULL,
		fallbacks INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_bonds (
		run_id TEXT NOT NULL,
		bond_index INTEGER NOT NULL,
		start_element TEXT NOT NULL,
		end_element TEXT NOT NULL,
		effort_input_at TEXT NOT NULL,
		fallback INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, bond_index),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS run_events (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		phase TEXT NOT NULL,
		bond_index INTEGER NOT NULL,
		effort_input_at TEXT NOT NULL,
		reason TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_graph ON runs(graph);
	CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveRun archives the graph's causality marks and assignment events and
// returns the generated run identifier.
func (s *Store) SaveRun(g *bondgraph.Graph) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, graph, created_at, elements, bonds, fallbacks)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, g.Name(), time.Now().UTC(), len(g.ElementIDs()), len(g.Bonds()), len(g.FallbackBonds()),
	)
	if err != nil {
		return "", err
	}

	fallback := make(map[int]bool, len(g.FallbackBonds()))
	for _, b := range g.FallbackBonds() {
		fallback[b.Index] = true
	}
	for _, b := range g.Bonds() {
		eff, err := b.EffortInputEndpoint()
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(
			`INSERT INTO run_bonds (run_id, bond_index, start_element, end_element, effort_input_at, fallback)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, b.Index, b.Start, b.End, eff, fallback[b.Index],
		)
		if err != nil {
			return "", err
		}
	}

	for seq, ev := range g.Events() {
		_, err = tx.Exec(
			`INSERT INTO run_events (run_id, seq, phase, bond_index, effort_input_at, reason)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, seq, ev.Phase.String(), ev.Bond, ev.EffortInputAt, ev.Reason,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetRun retrieves a run by identifier.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, graph, created_at, elements, bonds, fallbacks
		 FROM runs WHERE id = ?`, id,
	)

	var r Run
	if err := row.Scan(&r.ID, &r.Graph, &r.CreatedAt, &r.Elements, &r.Bonds, &r.Fallbacks); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunBonds retrieves the archived marks of a run, ordered by bond index.
func (s *Store) GetRunBonds(runID string) ([]*RunBond, error) {
	rows, err := s.db.Query(
		`SELECT run_id, bond_index, start_element, end_element, effort_input_at, fallback
		 FROM run_bonds WHERE run_id = ? ORDER BY bond_index`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bonds []*RunBond
	for rows.Next() {
		var b RunBond
		if err := rows.Scan(&b.RunID, &b.BondIndex, &b.Start, &b.End, &b.EffortInputAt, &b.Fallback); err != nil {
			return nil, err
		}
		bonds = append(bonds, &b)
	}
	return bonds, rows.Err()
}

// GetRunEvents retrieves the archived events of a run, in occurrence order.
func (s *Store) GetRunEvents(runID string) ([]*RunEvent, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seq, phase, bond_index, effort_input_at, reason
		 FROM run_events WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*RunEvent
	for rows.Next() {
		var ev RunEvent
		var reason sql.NullString
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Phase, &ev.BondIndex, &ev.EffortInputAt, &reason); err != nil {
			return nil, err
		}
		ev.Reason = reason.String
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// ListRuns returns the most recent runs, optionally filtered by graph name.
func (s *Store) ListRuns(graph string, limit int) ([]*Run, error) {
	query := `SELECT id, graph, created_at, elements, bonds, fallbacks
	 FROM runs`
	args := []any{}
	if graph != "" {
		query += ` WHERE graph = ?`
		args = append(args, graph)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Graph, &r.CreatedAt, &r.Elements, &r.Bonds, &r.Fallbacks); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// ExportRunJSON exports a run with its bonds and events as JSON.
func (s *Store) ExportRunJSON(runID string) ([]byte, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	bonds, err := s.GetRunBonds(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.GetRunEvents(runID)
	if err != nil {
		return nil, err
	}

	export := map[string]any{
		"run":    run,
		"bonds":  bonds,
		"events": events,
	}
	return json.MarshalIndent(export, "", "  ")
}
