package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
)

// RunStore persists plan runs, their steps, and scheduled asks.
type RunStore struct {
	DB *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ask TEXT,
			outcome TEXT DEFAULT 'running',
			result TEXT,
			steps_taken INTEGER DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER,
			idx INTEGER,
			skill TEXT,
			input TEXT,
			output TEXT,
			ok INTEGER,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			ask TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			return nil, err
		}
	}

	return &RunStore{DB: db}, nil
}

func (s *RunStore) StartRun(ask string) (int64, error) {
	res, err := s.DB.Exec(`INSERT INTO runs (ask) VALUES (?)`, ask)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *RunStore) RecordStep(runID int64, idx int, skill, input, output string, ok bool) error {
	query := `INSERT INTO steps (run_id, idx, skill, input, output, ok) VALUES (?, ?, ?, ?, ?, ?)`
	okInt := 0
	if ok {
		okInt = 1
	}
	_, err := s.DB.Exec(query, runID, idx, skill, input, output, okInt)
	return err
}

func (s *RunStore) FinishRun(runID int64, outcome, result string, steps int) error {
	query := `UPDATE runs SET outcome = ?, result = ?, steps_taken = ?, finished_at = datetime('now') WHERE id = ?`
	_, err := s.DB.Exec(query, outcome, result, steps, runID)
	return err
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID      int64
	Ask     string
	Outcome string
	Result  string
	Steps   int
}

func (s *RunStore) RecentRuns(limit int) ([]RunRecord, error) {
	query := `SELECT id, ask, outcome, COALESCE(result, ''), steps_taken FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Ask, &r.Outcome, &r.Result, &r.Steps); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// --- Schedules ---

func (s *RunStore) AddSchedule(chatID string, ask string, intervalSeconds int) error {
	query := `INSERT INTO schedules (chat_id, ask, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`
	_, err := s.DB.Exec(query, chatID, ask, intervalSeconds)
	return err
}

func (s *RunStore) ClearSchedules(chatID string) error {
	query := `DELETE FROM schedules WHERE chat_id = ?`
	_, err := s.DB.Exec(query, chatID)
	return err
}

func (s *RunStore) DeleteSchedule(chatID string, id int) error {
	query := `DELETE FROM schedules WHERE chat_id = ? AND id = ?`
	_, err := s.DB.Exec(query, chatID, id)
	return err
}

// Schedule is a stored ask due to run on an interval.
type Schedule struct {
	ID       int
	ChatID   string
	Ask      string
	Interval int
}

func (s *RunStore) GetDueSchedules() ([]Schedule, error) {
	query := `
		SELECT id, chat_id, ask, interval_seconds
		FROM schedules
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Schedule
	for rows.Next() {
		var sc Schedule
		if err := rows.Scan(&sc.ID, &sc.ChatID, &sc.Ask, &sc.Interval); err != nil {
			return nil, err
		}
		due = append(due, sc)
	}
	return due, rows.Err()
}

func (s *RunStore) UpdateScheduleLastRun(id int) error {
	query := `UPDATE schedules SET last_run = datetime('now') WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}
