// Package pathstore persists the best-path table.
package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/bestpath/internal/domain"
)

// ErrNotFound indicates that no best path is stored for the requested pair.
var ErrNotFound = errors.New("best path not found")

// Repository defines persistent storage for best paths.
type Repository interface {
	// List returns every stored path ordered by source and target.
	List(ctx context.Context) ([]domain.StoredPath, error)
	Get(ctx context.Context, pair domain.Pair) (domain.StoredPath, error)
	// Apply upserts all changes atomically.
	Apply(ctx context.Context, changes []domain.PathChange) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL best path repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context) ([]domain.StoredPath, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source, target, total_cost, steps, updated_at
		 FROM best_paths
		 ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("listing best paths: %w", err)
	}
	defer rows.Close()

	var paths []domain.StoredPath
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating best paths: %w", err)
	}
	return paths, nil
}

func (r *PgRepository) Get(ctx context.Context, pair domain.Pair) (domain.StoredPath, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT source, target, total_cost, steps, updated_at
		 FROM best_paths
		 WHERE source = $1 AND target = $2`, pair.Source, pair.Target)
	p, err := scanPath(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredPath{}, ErrNotFound
		}
		return domain.StoredPath{}, err
	}
	return p, nil
}

func (r *PgRepository) Apply(ctx context.Context, changes []domain.PathChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting best path transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range changes {
		steps, err := json.Marshal(c.Path.Steps)
		if err != nil {
			return fmt.Errorf("encoding steps of %s/%s: %w", c.Pair.Source, c.Pair.Target, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO best_paths (source, target, total_cost, steps, updated_at)
			 VALUES ($1, $2, $3, $4::jsonb, NOW())
			 ON CONFLICT (source, target)
			 DO UPDATE SET total_cost = $3, steps = $4::jsonb, updated_at = NOW()`,
			c.Pair.Source, c.Pair.Target, c.Path.TotalCost.Decimal(), string(steps))
		if err != nil {
			return fmt.Errorf("saving best path %s/%s: %w", c.Pair.Source, c.Pair.Target, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing best paths: %w", err)
	}
	return nil
}

func scanPath(row pgx.Row) (domain.StoredPath, error) {
	var (
		p     domain.StoredPath
		total decimal.Decimal
		steps []byte
	)
	if err := row.Scan(&p.Pair.Source, &p.Pair.Target, &total, &steps, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scanning best path: %w", err)
	}

	var err error
	if p.Path.TotalCost, err = domain.AmountFromDecimal(total); err != nil {
		return p, fmt.Errorf("decoding total cost of %s/%s: %w", p.Pair.Source, p.Pair.Target, err)
	}
	if err := json.Unmarshal(steps, &p.Path.Steps); err != nil {
		return p, fmt.Errorf("decoding steps of %s/%s: %w", p.Pair.Source, p.Pair.Target, err)
	}
	return p, nil
}
