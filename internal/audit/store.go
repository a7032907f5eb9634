// Package audit keeps a SQLite log of processed turns.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"ada/internal/agent"
	"ada/internal/domain"
)

// maxOutputBytes caps the tool output kept per turn.
const maxOutputBytes = 8 * 1024

// Entry is one logged turn.
type Entry struct {
	ID           string
	Input        string
	Route        string
	Category     string
	Agent        string
	Tool         string
	Arguments    string // JSON
	Success      bool
	ErrorKind    string
	Error        string
	Output       string
	FilesChanged int
	Additions    int
	Removals     int
	Duration     time.Duration
	StartedAt    time.Time
}

// Store is the SQLite-backed turn log. It implements agent.TurnRecorder.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ agent.TurnRecorder = (*Store)(nil)

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// RecordTurn stores a finished turn.
func (s *Store) RecordTurn(ctx context.Context, t *agent.Turn) error {
	e := entryFromTurn(t)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (id, input, route, category, agent, tool, arguments, success,
			error_kind, error, output, files_changed, additions, removals, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Input, e.Route, e.Category, e.Agent, e.Tool, e.Arguments, e.Success,
		e.ErrorKind, e.Error, e.Output, e.FilesChanged, e.Additions, e.Removals,
		e.Duration.Milliseconds(), e.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Recent returns up to limit turns, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input, route, COALESCE(category, ''), COALESCE(agent, ''), COALESCE(tool, ''),
			COALESCE(arguments, ''), success, COALESCE(error_kind, ''), COALESCE(error, ''),
			COALESCE(output, ''), files_changed, additions, removals, duration_ms, started_at
		FROM turns ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durMS, startedMS int64
		if err := rows.Scan(&e.ID, &e.Input, &e.Route, &e.Category, &e.Agent, &e.Tool,
			&e.Arguments, &e.Success, &e.ErrorKind, &e.Error, &e.Output,
			&e.FilesChanged, &e.Additions, &e.Removals, &durMS, &startedMS); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		e.Duration = time.Duration(durMS) * time.Millisecond
		e.StartedAt = time.UnixMilli(startedMS)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes turns started before now-olderThan and returns how many went.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune turns: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("pruned audit log", "deleted", n)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func entryFromTurn(t *agent.Turn) Entry {
	e := Entry{
		ID:        t.ID,
		Input:     t.Input,
		Route:     string(t.Route),
		Category:  string(t.Intent.Category),
		Agent:     t.Agent.Name,
		Success:   t.Success(),
		Duration:  t.Duration,
		StartedAt: t.Started,
	}
	if t.Call != nil {
		e.Tool = t.Call.Tool
		if data, err := json.Marshal(t.Call.Args); err == nil {
			e.Arguments = string(data)
		}
	}
	if t.Result != nil {
		e.Output = truncate(t.Result.Output, maxOutputBytes)
		for _, d := range t.Result.Diffs {
			e.FilesChanged++
			e.Additions += d.Additions
			e.Removals += d.Removals
		}
		if t.Result.Err != nil {
			e.ErrorKind = string(domain.KindOf(t.Result.Err))
			e.Error = t.Result.Err.Error()
		}
	}
	if e.Error == "" && t.Intent.Err != nil {
		e.ErrorKind = string(domain.KindOf(t.Intent.Err))
		e.Error = t.Intent.Err.Error()
	}
	return e
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "... (truncated)"
}
