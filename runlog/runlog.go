// Package runlog keeps a SQLite history of training runs.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS training_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_type VARCHAR(50) NOT NULL,
    features TEXT NOT NULL,
    alpha REAL NOT NULL,
    seed INTEGER NOT NULL,
    mse REAL NOT NULL,
    r2 REAL NOT NULL,
    rmse REAL NOT NULL,
    mae REAL NOT NULL,
    train_samples INTEGER NOT NULL,
    test_samples INTEGER NOT NULL,
    checksum TEXT NOT NULL,
    trained_at TEXT NOT NULL
);`

// Run is one row of the history.
type Run struct {
	ID           int64
	ModelType    string
	Features     []string
	Alpha        float64
	Seed         uint64
	MSE          float64
	R2           float64
	RMSE         float64
	MAE          float64
	TrainSamples int
	TestSamples  int
	Checksum     string
	TrainedAt    time.Time
}

// Store is a handle on the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create run history directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open run history %s", path)
	}
	// sqlite は単一ライタ
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create training_runs table")
	}
	return &Store{db: db}, nil
}

// Record inserts run and returns its id. A zero TrainedAt is set to now.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	features, err := json.Marshal(run.Features)
	if err != nil {
		return 0, errors.Wrap(err, "encode features")
	}
	if run.TrainedAt.IsZero() {
		run.TrainedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
        INSERT INTO training_runs
            (model_type, features, alpha, seed, mse, r2, rmse, mae, train_samples, test_samples, checksum, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ModelType, string(features), run.Alpha, int64(run.Seed),
		run.MSE, run.R2, run.RMSE, run.MAE,
		run.TrainSamples, run.TestSamples, run.Checksum,
		run.TrainedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, errors.Wrap(err, "insert training run")
	}
	return res.LastInsertId()
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, model_type, features, alpha, seed, mse, r2, rmse, mae,
               train_samples, test_samples, checksum, trained_at
        FROM training_runs
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query training runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			features  string
			seed      int64
			trainedAt string
		)
		if err := rows.Scan(&r.ID, &r.ModelType, &features, &r.Alpha, &seed,
			&r.MSE, &r.R2, &r.RMSE, &r.MAE,
			&r.TrainSamples, &r.TestSamples, &r.Checksum, &trainedAt); err != nil {
			return nil, errors.Wrap(err, "scan training run")
		}
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, errors.Wrapf(err, "decode features of run %d", r.ID)
		}
		r.Seed = uint64(seed)
		if r.TrainedAt, err = time.Parse(time.RFC3339Nano, trainedAt); err != nil {
			return nil, errors.Wrapf(err, "decode trained_at of run %d", r.ID)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
