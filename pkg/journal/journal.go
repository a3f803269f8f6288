// Package journal persists health transitions and configuration apply
// attempts to a local SQLite database for after-the-fact inspection.
// The journal is an optional feature; write failures are the caller's
// to log and must never affect monitoring.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Transition is one health state change.
type Transition struct {
	ID          int64     `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	FromState   string    `json:"from_state"`
	ToState     string    `json:"to_state"`
	Reachable   []string  `json:"reachable"`
	Unreachable []string  `json:"unreachable"`
}

// Action is one configuration apply attempt.
type Action struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Edge       string    `json:"edge"`
	Path       string    `json:"path"`
	Commands   int       `json:"commands"`
	OK         bool      `json:"ok"`
	Detail     string    `json:"detail,omitempty"`
}

// Store manages the journal database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens the journal at dbPath, creating the schema if needed.
func NewStore(dbPath string) (*Store, error) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := database.ExecContext(context.Background(), "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	store := &Store{db: database}
	if err := store.initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the database schema.
func (s *Store) initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(context.Background(), Schema); err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordTransition appends one health state change.
func (s *Store) RecordTransition(t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occurred := t.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO transitions (occurred_at, from_state, to_state, reachable, unreachable)
		 VALUES (?, ?, ?, ?, ?)`,
		occurred, t.FromState, t.ToState,
		strings.Join(t.Reachable, ","), strings.Join(t.Unreachable, ","),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return nil
}

// RecordAction appends one configuration apply attempt.
func (s *Store) RecordAction(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occurred := a.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO actions (occurred_at, edge, path, commands, ok, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		occurred, a.Edge, a.Path, a.Commands, a.OK, a.Detail,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return nil
}

// RecentTransitions returns up to limit entries, newest first.
func (s *Store) RecentTransitions(limit int) ([]Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, occurred_at, from_state, to_state, reachable, unreachable
		 FROM transitions ORDER BY id DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	var transitions []Transition
	for rows.Next() {
		var (
			t                      Transition
			reachable, unreachable string
		)
		if scanErr := rows.Scan(&t.ID, &t.OccurredAt, &t.FromState, &t.ToState, &reachable, &unreachable); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, scanErr)
		}
		t.Reachable = splitCSV(reachable)
		t.Unreachable = splitCSV(unreachable)
		transitions = append(transitions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return transitions, nil
}

// RecentActions returns up to limit entries, newest first.
func (s *Store) RecentActions(limit int) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, occurred_at, edge, path, commands, ok, detail
		 FROM actions ORDER BY id DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	var actions []Action
	for rows.Next() {
		var a Action
		if scanErr := rows.Scan(&a.ID, &a.OccurredAt, &a.Edge, &a.Path, &a.Commands, &a.OK, &a.Detail); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, scanErr)
		}
		actions = append(actions, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return actions, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
