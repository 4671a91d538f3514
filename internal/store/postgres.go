package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexshd/synergy"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore keeps runs in PostgreSQL: one analysis_runs row per run plus
// its region and T-value rows, written in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and checks connectivity.
func Connect(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the tables if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, run Run) error {
	counts, err := json.Marshal(run.Dataset.Counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO analysis_runs (id, created_at, name, universe, counts, total, validation)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING;
	`, run.ID.String(), run.CreatedAt, run.Dataset.Name, run.Dataset.Universe, counts,
		run.Result.Total, run.Result.Validation)
	if err != nil {
		return fmt.Errorf("failed to insert analysis_runs: %w", err)
	}

	batch := &pgx.Batch{}
	for i, r := range run.Result.Regions {
		batch.Queue(`
			INSERT INTO analysis_regions (run_id, position, region, type, count, rate, entropy)
			VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (run_id, position) DO NOTHING;
		`, run.ID.String(), i, r.Region, r.Type, r.Count, r.Rate, r.Entropy)
	}
	for i, r := range run.Result.TValues {
		batch.Queue(`
			INSERT INTO analysis_tvalues (run_id, position, dimension, combination, t_value)
			VALUES ($1::uuid, $2, $3, $4, $5)
			ON CONFLICT (run_id, position) DO NOTHING;
		`, run.ID.String(), i, r.Dimension, r.Combination, r.TValue)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert result rows: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	run := Run{ID: id}
	var counts []byte

	err := s.pool.QueryRow(ctx, `
		SELECT created_at, name, universe, counts, total, validation
		FROM analysis_runs WHERE id = $1::uuid
	`, id.String()).Scan(
		&run.CreatedAt,
		&run.Dataset.Name,
		&run.Dataset.Universe,
		&counts,
		&run.Result.Total,
		&run.Result.Validation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	if err := json.Unmarshal(counts, &run.Dataset.Counts); err != nil {
		return Run{}, fmt.Errorf("decode counts of run %s: %w", id, err)
	}
	run.Result.Universe = append([]string(nil), run.Dataset.Universe...)

	rows, err := s.pool.Query(ctx, `
		SELECT region, type, count, rate, entropy
		FROM analysis_regions WHERE run_id = $1::uuid ORDER BY position
	`, id.String())
	if err != nil {
		return Run{}, fmt.Errorf("failed to load regions of run %s: %w", id, err)
	}
	run.Result.Regions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (synergy.RegionRecord, error) {
		var r synergy.RegionRecord
		err := row.Scan(&r.Region, &r.Type, &r.Count, &r.Rate, &r.Entropy)
		return r, err
	})
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan regions of run %s: %w", id, err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT dimension, combination, t_value
		FROM analysis_tvalues WHERE run_id = $1::uuid ORDER BY position
	`, id.String())
	if err != nil {
		return Run{}, fmt.Errorf("failed to load t-values of run %s: %w", id, err)
	}
	run.Result.TValues, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (synergy.TValueRecord, error) {
		var r synergy.TValueRecord
		err := row.Scan(&r.Dimension, &r.Combination, &r.TValue)
		return r, err
	})
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan t-values of run %s: %w", id, err)
	}

	return run, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text FROM analysis_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan run ids: %w", err)
	}

	runs := make([]Run, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("bad run id %q: %w", raw, err)
		}
		run, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// compile-time interface checks
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
