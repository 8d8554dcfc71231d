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

// RouteRepository reads and creates routes between islands.
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a repository backed by the given pool.
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

// FindDirectRouteID returns the id of a route directly connecting the
// two named islands, or nil when none exists.
func (r *RouteRepository) FindDirectRouteID(ctx context.Context, origin, destination string) (*int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT r.id
		FROM routes r
		JOIN islands o ON r.origin_id = o.id
		JOIN islands d ON r.destination_id = d.id
		WHERE o.name = $1 AND d.name = $2
		ORDER BY r.id
		LIMIT 1
	`, origin, destination).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find direct route %s→%s: %w", origin, destination, err)
	}
	return &id, nil
}

// SearchRoutes returns the filtered, sorted, paged routes view together
// with the unpaged total.
func (r *RouteRepository) SearchRoutes(ctx context.Context, f models.RouteFilter) ([]models.RouteData, int, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.TransportType != "" {
		conditions = append(conditions, "tt.type = "+arg(f.TransportType))
	}
	if f.Location != "" {
		p := arg(f.Location)
		conditions = append(conditions, fmt.Sprintf("(o.name = %s OR d.name = %s)", p, p))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(o.name ILIKE %s OR d.name ILIKE %s)", p, p))
	}
	if f.Origin != "" {
		conditions = append(conditions, "o.name = "+arg(f.Origin))
	}
	if f.Destination != "" {
		conditions = append(conditions, "d.name = "+arg(f.Destination))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	const from = `
		FROM routes r
		JOIN islands o ON r.origin_id = o.id
		JOIN islands d ON r.destination_id = d.id
		JOIN transport_types tt ON r.transport_type_id = tt.id`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count routes: %w", err)
	}

	order := " ORDER BY r.created_at DESC"
	switch f.Sort {
	case "oldest":
		order = " ORDER BY r.created_at ASC"
	case "longest":
		order = " ORDER BY r.duration_minutes DESC"
	case "shortest":
		order = " ORDER BY r.duration_minutes ASC"
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := `
		SELECT r.id, o.name, d.name, tt.type, r.duration_minutes` +
		from + where + order +
		" LIMIT " + arg(pageSize) + " OFFSET " + arg((page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.RouteData
	for rows.Next() {
		var rt models.RouteData
		if err := rows.Scan(&rt.ID, &rt.OriginName, &rt.DestinationName, &rt.TransportType, &rt.Duration); err != nil {
			return nil, 0, fmt.Errorf("failed to scan route row: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating route rows: %w", err)
	}

	return routes, total, nil
}

// AddRoute creates a route between two named islands for the given
// operator, resolving islands and transport type by name.
func (r *RouteRepository) AddRoute(ctx context.Context, in models.NewRouteInput) error {
	originID, err := r.islandIDByName(ctx, in.Origin)
	if err != nil {
		return err
	}
	destinationID, err := r.islandIDByName(ctx, in.Destination)
	if err != nil {
		return err
	}

	var transportTypeID int64
	err = r.pool.QueryRow(ctx,
		`SELECT id FROM transport_types WHERE type = $1`, in.TransportType).Scan(&transportTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transport type %q not found", in.TransportType)
		}
		return fmt.Errorf("failed to look up transport type: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO routes (operator_id, origin_id, destination_id, transport_type_id, duration_minutes)
		VALUES ($1, $2, $3, $4, $5)
	`, in.OperatorID, originID, destinationID, transportTypeID, in.Duration)
	if err != nil {
		return fmt.Errorf("failed to insert route: %w", err)
	}
	return nil
}

func (r *RouteRepository) islandIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM islands WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("island %q not found", name)
		}
		return 0, fmt.Errorf("failed to look up island %q: %w", name, err)
	}
	return id, nil
}
