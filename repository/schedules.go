package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atollhop/ops-api/models"
)

// ScheduleRepository owns schedule persistence: the transactional batch
// insert and the schedules list view.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a repository backed by the given pool.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// dayNames maps Monday-first weekday indexes to the names stored in the
// schedule_days column.
var dayNames = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func scheduleDayNames(s *models.RawSchedule) ([]string, error) {
	names := make([]string, 0, len(s.ScheduleDays))
	for _, d := range s.ScheduleDays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid schedule day %d for %s", d, s.PathKey())
		}
		names = append(names, dayNames[d])
	}
	return names, nil
}

// insertedSchedule pairs a generated schedule id with the route it was
// inserted with, in insertion order.
type insertedSchedule struct {
	ID      int64
	RouteID *int64
}

// InsertSchedulesBatch persists a batch of raw schedules in one
// transaction: atomic (stop-free) rows first, then composite rows whose
// stop_schedule_ids are resolved against the atomic rows of this same
// batch, then one price row per defined fare field of every inserted
// schedule. Any failure rolls the whole batch back.
func (r *ScheduleRepository) InsertSchedulesBatch(ctx context.Context, raws []models.RawSchedule) (models.BatchInsertResult, error) {
	var result models.BatchInsertResult

	var atomic, composite []models.RawSchedule
	for _, s := range raws {
		if s.Composite() {
			composite = append(composite, s)
		} else {
			atomic = append(atomic, s)
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertedAtomic, err := insertScheduleRows(ctx, tx, atomic, nil)
	if err != nil {
		return result, err
	}

	// Atomic ids keyed by the hop they cover, as written in the input.
	idByPath := make(map[string]int64, len(atomic))
	for i, s := range atomic {
		idByPath[s.PathKey()] = insertedAtomic[i].ID
	}

	stopIDs := make([][]int64, len(composite))
	for i := range composite {
		stopIDs[i], err = resolveStopIDs(&composite[i], idByPath)
		if err != nil {
			return result, err
		}
	}

	insertedComposite, err := insertScheduleRows(ctx, tx, composite, stopIDs)
	if err != nil {
		return result, err
	}

	routeIDs := collectRouteIDs(insertedAtomic, insertedComposite)
	opByRoute, err := operatorsForRoutes(ctx, tx, routeIDs)
	if err != nil {
		return result, err
	}

	priceRows, err := buildPriceRows(opByRoute, insertedAtomic, atomic)
	if err != nil {
		return result, err
	}
	compositePrices, err := buildPriceRows(opByRoute, insertedComposite, composite)
	if err != nil {
		return result, err
	}
	priceRows = append(priceRows, compositePrices...)

	if err := insertPriceRows(ctx, tx, priceRows); err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("failed to commit schedule batch: %w", err)
	}

	result.InsertedAtomic = len(insertedAtomic)
	result.InsertedComposite = len(insertedComposite)
	result.InsertedPrices = len(priceRows)
	return result, nil
}

// resolveStopIDs walks a composite schedule's stop list, mapping each
// origin→stop hop to the atomic schedule inserted for it in the same
// batch. A hop with no matching atomic row is a consistency error that
// aborts the whole transaction.
func resolveStopIDs(s *models.RawSchedule, idByPath map[string]int64) ([]int64, error) {
	ids := make([]int64, 0, len(s.Stops))
	prev := s.Origin
	for _, st := range s.Stops {
		id, ok := idByPath[prev+"→"+st.IslandName]
		if !ok {
			return nil, fmt.Errorf("missing atomic schedule for %q→%q", prev, st.IslandName)
		}
		ids = append(ids, id)
		prev = st.IslandName
	}
	return ids, nil
}

// insertScheduleRows performs one multi-row insert, returning generated
// ids and route references in input order. stopIDs is positional and
// nil for atomic batches. An empty input is a no-op.
func insertScheduleRows(ctx context.Context, tx pgx.Tx, raws []models.RawSchedule, stopIDs [][]int64) ([]insertedSchedule, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	const cols = 12
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO schedules (
			uuid, route_id, departure_time, arrival_time, schedule_days,
			route_code, stop_schedule_ids, part_of_schedule_ids,
			start_date, end_date, max_capacity, stop_details
		) VALUES `)

	args := make([]any, 0, len(raws)*cols)
	for i, s := range raws {
		days, err := scheduleDayNames(&s)
		if err != nil {
			return nil, err
		}

		stops := s.Stops
		if stops == nil {
			stops = []models.Stop{}
		}
		stopDetails, err := json.Marshal(stops)
		if err != nil {
			return nil, fmt.Errorf("failed to encode stop details for %s: %w", s.PathKey(), err)
		}

		var rowStopIDs []int64
		if stopIDs != nil {
			rowStopIDs = stopIDs[i]
		}
		if rowStopIDs == nil {
			rowStopIDs = []int64{}
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&sb,
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, COALESCE($%d, NOW()), COALESCE($%d, NOW() + INTERVAL '1 year'), $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9, n+10, n+11, n+12)

		args = append(args,
			uuid.New().String(),
			s.RouteID,
			s.DepartureTime,
			s.ArrivalTime,
			days,
			s.RouteCode,
			rowStopIDs,
			[]int64{},
			s.StartDate,
			s.EndDate,
			s.MaxCapacity,
			stopDetails,
		)
	}
	sb.WriteString(" RETURNING id, route_id")

	rows, err := tx.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert schedules: %w", err)
	}
	defer rows.Close()

	inserted := make([]insertedSchedule, 0, len(raws))
	for rows.Next() {
		var ins insertedSchedule
		if err := rows.Scan(&ins.ID, &ins.RouteID); err != nil {
			return nil, fmt.Errorf("failed to scan inserted schedule: %w", err)
		}
		inserted = append(inserted, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inserted schedules: %w", err)
	}
	if len(inserted) != len(raws) {
		return nil, fmt.Errorf("inserted %d schedules, expected %d", len(inserted), len(raws))
	}
	return inserted, nil
}

func collectRouteIDs(sets ...[]insertedSchedule) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, set := range sets {
		for _, ins := range set {
			if ins.RouteID == nil {
				continue
			}
			if _, ok := seen[*ins.RouteID]; ok {
				continue
			}
			seen[*ins.RouteID] = struct{}{}
			ids = append(ids, *ins.RouteID)
		}
	}
	return ids
}

// operatorsForRoutes resolves each route to its owning operator in one
// batched lookup. Skipped entirely for an empty id set.
func operatorsForRoutes(ctx context.Context, tx pgx.Tx, routeIDs []int64) (map[int64]int64, error) {
	opByRoute := make(map[int64]int64, len(routeIDs))
	if len(routeIDs) == 0 {
		return opByRoute, nil
	}

	rows, err := tx.Query(ctx,
		`SELECT id, operator_id FROM routes WHERE id = ANY($1)`, routeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up route operators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var routeID, operatorID int64
		if err := rows.Scan(&routeID, &operatorID); err != nil {
			return nil, fmt.Errorf("failed to scan route operator: %w", err)
		}
		opByRoute[routeID] = operatorID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route operators: %w", err)
	}
	return opByRoute, nil
}

type priceRow struct {
	OperatorID     int64
	ScheduleID     int64
	CurrencyID     int64
	FareCategoryID int64
	FareTypeID     int64
	Value          float64
}

// buildPriceRows expands each inserted schedule's price map into one
// row per defined fare field, in insertion order. A schedule that
// produces price rows must resolve to an operator through its route;
// anything else aborts the batch.
func buildPriceRows(opByRoute map[int64]int64, inserted []insertedSchedule, raws []models.RawSchedule) ([]priceRow, error) {
	var out []priceRow
	for i, ins := range inserted {
		items := raws[i].Prices.Items()
		if len(items) == 0 {
			continue
		}
		if ins.RouteID == nil {
			return nil, fmt.Errorf("no route to resolve an operator for priced schedule %s", raws[i].PathKey())
		}
		operatorID, ok := opByRoute[*ins.RouteID]
		if !ok {
			return nil, fmt.Errorf("no operator found for route %d (schedule %s)", *ins.RouteID, raws[i].PathKey())
		}
		for _, item := range items {
			out = append(out, priceRow{
				OperatorID:     operatorID,
				ScheduleID:     ins.ID,
				CurrencyID:     item.Meta.Currency,
				FareCategoryID: item.Meta.Category,
				FareTypeID:     item.Meta.Type,
				Value:          item.Value,
			})
		}
	}
	return out, nil
}

func insertPriceRows(ctx context.Context, tx pgx.Tx, rows []priceRow) error {
	if len(rows) == 0 {
		return nil
	}

	const cols = 6
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO prices (
			operator_id, schedule_id, currency_id,
			fare_category_id, fare_type_id, value
		) VALUES `)

	args := make([]any, 0, len(rows)*cols)
	for i, p := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args,
			p.OperatorID, p.ScheduleID, p.CurrencyID,
			p.FareCategoryID, p.FareTypeID, p.Value)
	}

	if _, err := tx.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert prices: %w", err)
	}
	return nil
}

// ListSchedules returns the filtered, sorted, paged schedules list view
// together with the unpaged total.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.ScheduleData, int, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.RouteID != nil {
		conditions = append(conditions, "s.route_id = "+arg(*f.RouteID))
	}
	if f.StartDate != "" {
		conditions = append(conditions, "s.start_date >= "+arg(f.StartDate)+"::timestamptz")
	}
	if f.EndDate != "" {
		conditions = append(conditions, "s.end_date <= "+arg(f.EndDate)+"::timestamptz")
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

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	const from = `
		FROM schedules s
		LEFT JOIN routes r ON s.route_id = r.id
		LEFT JOIN islands o ON r.origin_id = o.id
		LEFT JOIN islands d ON r.destination_id = d.id
		LEFT JOIN transport_types tt ON r.transport_type_id = tt.id`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count schedules: %w", err)
	}

	order := " ORDER BY s.created_at DESC"
	switch f.Sort {
	case "oldest":
		order = " ORDER BY s.created_at ASC"
	case "start":
		order = " ORDER BY s.start_date ASC"
	case "end":
		order = " ORDER BY s.end_date ASC"
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := `
		SELECT
			s.id, s.route_id,
			COALESCE(o.name, ''), COALESCE(d.name, ''),
			COALESCE(tt.type, ''),
			s.departure_time::text, s.arrival_time::text,
			s.schedule_days, s.route_code,
			s.start_date, s.end_date, s.max_capacity, s.stop_details` +
		from + where + order +
		" LIMIT " + arg(pageSize) + " OFFSET " + arg((page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.ScheduleData
	for rows.Next() {
		var s models.ScheduleData
		var routeID *int64
		var stopDetails []byte
		err := rows.Scan(
			&s.ID, &routeID,
			&s.OriginName, &s.DestinationName, &s.TransportType,
			&s.DepartureTime, &s.ArrivalTime,
			&s.ScheduleDays, &s.RouteCode,
			&s.StartDate, &s.EndDate, &s.MaxCapacity, &stopDetails,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		if routeID != nil {
			s.RouteID = *routeID
		}
		s.StopDetails = json.RawMessage(stopDetails)
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, total, nil
}
