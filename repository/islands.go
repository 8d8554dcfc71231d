package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atollhop/ops-api/models"
)

// IslandRepository reads islands and the small lookup tables backing
// the dashboard's dropdowns.
type IslandRepository struct {
	pool *pgxpool.Pool
}

// NewIslandRepository creates a repository backed by the given pool.
func NewIslandRepository(pool *pgxpool.Pool) *IslandRepository {
	return &IslandRepository{pool: pool}
}

// FindIslandID resolves an island name to its id, preferring an exact
// case-insensitive match and falling back to a substring match. A miss
// returns (nil, nil).
func (r *IslandRepository) FindIslandID(ctx context.Context, name string) (*int64, error) {
	islands, err := r.SearchIslands(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(islands) == 0 {
		return nil, nil
	}
	return &islands[0].ID, nil
}

// SearchIslands returns matching islands by name, exact match first.
func (r *IslandRepository) SearchIslands(ctx context.Context, query string) ([]models.Island, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	var exact models.Island
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM islands WHERE lower(name) = lower($1) LIMIT 1`, q).
		Scan(&exact.ID, &exact.Name)
	if err == nil {
		return []models.Island{exact}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to query islands: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM islands WHERE name ILIKE $1 GROUP BY id, name`, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query islands: %w", err)
	}
	defer rows.Close()

	var islands []models.Island
	for rows.Next() {
		var i models.Island
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, fmt.Errorf("failed to scan island row: %w", err)
		}
		islands = append(islands, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating island rows: %w", err)
	}
	return islands, nil
}

// GetLocations returns the distinct island names used by location
// dropdowns.
func (r *IslandRepository) GetLocations(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM islands GROUP BY name ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}
	return names, nil
}

// GetTransportTypes returns the transport type names.
func (r *IslandRepository) GetTransportTypes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT type FROM transport_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transport types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan transport type row: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transport type rows: %w", err)
	}
	return types, nil
}
