package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai2048/game"

	_ "modernc.org/sqlite"
)

type SQLiteHistory struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteHistory(path string) *SQLiteHistory {
	return &SQLiteHistory{path: path}
}

func (s *SQLiteHistory) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteHistory) SaveGeneration(ctx context.Context, summary GenerationSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	w := summary.BestWeights
	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, size, best_fitness, mean_fitness, best_score, best_moves,
			w_empty, w_monotonic, w_smooth, w_corner_max, w_merge, duration_ns, recorded_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			size = excluded.size,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			best_score = excluded.best_score,
			best_moves = excluded.best_moves,
			w_empty = excluded.w_empty,
			w_monotonic = excluded.w_monotonic,
			w_smooth = excluded.w_smooth,
			w_corner_max = excluded.w_corner_max,
			w_merge = excluded.w_merge,
			duration_ns = excluded.duration_ns,
			recorded_at = excluded.recorded_at
	`, summary.RunID, summary.Generation, summary.Size, summary.BestFitness, summary.MeanFitness,
		summary.BestScore, summary.BestMoves, w.Empty, w.Monotonic, w.Smooth, w.CornerMax, w.Merge,
		int64(summary.Duration), summary.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save generation %d: %w", summary.Generation, err)
	}
	return nil
}

func (s *SQLiteHistory) Generations(ctx context.Context, runID string) ([]GenerationSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, size, best_fitness, mean_fitness, best_score, best_moves,
			w_empty, w_monotonic, w_smooth, w_corner_max, w_merge, duration_ns, recorded_at
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationSummary
	for rows.Next() {
		summary := GenerationSummary{RunID: runID}
		var w game.Weights
		var durationNS int64
		var recordedAt string
		if err := rows.Scan(&summary.Generation, &summary.Size, &summary.BestFitness, &summary.MeanFitness,
			&summary.BestScore, &summary.BestMoves, &w.Empty, &w.Monotonic, &w.Smooth, &w.CornerMax, &w.Merge,
			&durationNS, &recordedAt); err != nil {
			return nil, err
		}
		summary.BestWeights = w
		summary.Duration = time.Duration(durationNS)
		if summary.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("decode recorded_at of generation %d: %w", summary.Generation, err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *SQLiteHistory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteHistory) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("history is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			size INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			best_score INTEGER NOT NULL,
			best_moves INTEGER NOT NULL,
			w_empty REAL NOT NULL,
			w_monotonic REAL NOT NULL,
			w_smooth REAL NOT NULL,
			w_corner_max REAL NOT NULL,
			w_merge REAL NOT NULL,
			duration_ns INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
