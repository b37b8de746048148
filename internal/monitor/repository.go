package monitor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/bestpath/internal/domain"
)

// Repository defines persistent storage for monitored provider pairs.
type Repository interface {
	// Add inserts pp and reports whether it was absent.
	Add(ctx context.Context, pp domain.ProviderPair) (bool, error)
	// Remove deletes pp and reports whether it was present.
	Remove(ctx context.Context, pp domain.ProviderPair) (bool, error)
	// List returns all pairs ordered by source, target and provider.
	List(ctx context.Context) ([]domain.ProviderPair, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL monitored pair repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Add(ctx context.Context, pp domain.ProviderPair) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO monitored_pairs (source, target, provider)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (source, target, provider) DO NOTHING`,
		pp.Pair.Source, pp.Pair.Target, pp.Provider)
	if err != nil {
		return false, fmt.Errorf("adding monitored pair %s/%s: %w", pp.Pair.Source, pp.Pair.Target, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) Remove(ctx context.Context, pp domain.ProviderPair) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM monitored_pairs WHERE source = $1 AND target = $2 AND provider = $3`,
		pp.Pair.Source, pp.Pair.Target, pp.Provider)
	if err != nil {
		return false, fmt.Errorf("removing monitored pair %s/%s: %w", pp.Pair.Source, pp.Pair.Target, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.ProviderPair, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source, target, provider FROM monitored_pairs ORDER BY source, target, provider`)
	if err != nil {
		return nil, fmt.Errorf("listing monitored pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.ProviderPair
	for rows.Next() {
		var pp domain.ProviderPair
		if err := rows.Scan(&pp.Pair.Source, &pp.Pair.Target, &pp.Provider); err != nil {
			return nil, fmt.Errorf("scanning monitored pair: %w", err)
		}
		pairs = append(pairs, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monitored pairs: %w", err)
	}
	return pairs, nil
}
