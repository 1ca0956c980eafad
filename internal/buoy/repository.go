package buoy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/db"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type repository struct {
	conn *sqlx.DB
	q    sqlx.ExtContext
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{conn: conn, q: conn}
}

func SlotLockKey(day time.Time, period domain.TimePeriod) string {
	return db.LockKey(string(domain.KindOpenWater), day.Format(domain.DateLayout), string(period))
}

func (r *repository) WithSlotLock(ctx context.Context, day time.Time, period domain.TimePeriod, fn func(Repository) error) error {
	return db.WithAdvisoryLock(ctx, r.conn, []string{SlotLockKey(day, period)}, func(tx *sqlx.Tx) error {
		return fn(&repository{conn: r.conn, q: tx})
	})
}

func dateArg(day time.Time) string {
	return day.Format(domain.DateLayout)
}

func statusArgs(statuses []domain.Status) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *repository) ListBuoys(ctx context.Context) ([]domain.Buoy, error) {
	query := `
		SELECT name, max_depth, pulley, bottom_plate, large_buoy
		FROM buoys
		ORDER BY max_depth, name
	`

	var buoys []domain.Buoy
	if err := sqlx.SelectContext(ctx, r.q, &buoys, query); err != nil {
		return nil, fmt.Errorf("list buoys: %w", err)
	}
	return buoys, nil
}

func (r *repository) GetBuoy(ctx context.Context, name string) (*domain.Buoy, error) {
	query := `
		SELECT name, max_depth, pulley, bottom_plate, large_buoy
		FROM buoys
		WHERE name = $1
	`

	var b domain.Buoy
	err := sqlx.GetContext(ctx, r.q, &b, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get buoy: %w", err)
	}
	return &b, nil
}

func (r *repository) ListSlotDivers(ctx context.Context, day time.Time, period domain.TimePeriod) ([]Diver, error) {
	query := `
		SELECT r.id AS reservation_id, d.subtype, d.depth_m, COALESCE(d.pinned_buoy, '') AS pinned_buoy
		FROM reservations r
		JOIN open_water_details d ON d.reservation_id = r.id
		WHERE r.res_date = $1 AND d.time_period = $2 AND r.status = ANY($3) AND d.depth_m IS NOT NULL
		ORDER BY r.id
	`

	var divers []Diver
	err := sqlx.SelectContext(ctx, r.q, &divers, query, dateArg(day), period, statusArgs(domain.ActiveStatuses))
	if err != nil {
		return nil, fmt.Errorf("list slot divers: %w", err)
	}
	return divers, nil
}

type groupRow struct {
	domain.BuoyGroup
	Members pq.Int64Array `db:"reservation_ids"`
}

func (r *repository) ListSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod) ([]domain.BuoyGroup, error) {
	query := `
		SELECT g.id, g.res_date, g.time_period, g.buoy_name, g.boat, g.subtype,
		       COALESCE(array_agg(d.reservation_id ORDER BY d.reservation_id)
		                FILTER (WHERE d.reservation_id IS NOT NULL), '{}') AS reservation_ids
		FROM buoy_groups g
		LEFT JOIN open_water_details d ON d.group_id = g.id
		WHERE g.res_date = $1 AND g.time_period = $2
		GROUP BY g.id
		ORDER BY g.buoy_name
	`

	var rows []groupRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, dateArg(day), period); err != nil {
		return nil, fmt.Errorf("list slot groups: %w", err)
	}

	groups := make([]domain.BuoyGroup, 0, len(rows))
	for _, row := range rows {
		g := row.BuoyGroup
		g.ReservationIDs = make([]int, len(row.Members))
		for i, id := range row.Members {
			g.ReservationIDs[i] = int(id)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ReplaceSlotGroups drops every group of the slot and inserts the new
// ones. Boats follow their buoy across the rebuild.
func (r *repository) ReplaceSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod, planned []PlannedGroup) ([]domain.BuoyGroup, error) {
	var boats []struct {
		BuoyName string `db:"buoy_name"`
		Boat     string `db:"boat"`
	}
	err := sqlx.SelectContext(ctx, r.q, &boats, `
		SELECT buoy_name, boat FROM buoy_groups
		WHERE res_date = $1 AND time_period = $2 AND boat IS NOT NULL
	`, dateArg(day), period)
	if err != nil {
		return nil, fmt.Errorf("read boats: %w", err)
	}
	boatOf := make(map[string]string, len(boats))
	for _, b := range boats {
		boatOf[b.BuoyName] = b.Boat
	}

	if _, err := r.q.ExecContext(ctx, `
		UPDATE open_water_details SET group_id = NULL
		WHERE group_id IN (SELECT id FROM buoy_groups WHERE res_date = $1 AND time_period = $2)
	`, dateArg(day), period); err != nil {
		return nil, fmt.Errorf("unlink slot groups: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM buoy_groups WHERE res_date = $1 AND time_period = $2
	`, dateArg(day), period); err != nil {
		return nil, fmt.Errorf("delete slot groups: %w", err)
	}

	created := make([]domain.BuoyGroup, 0, len(planned))
	for _, p := range planned {
		var boat *string
		if b, ok := boatOf[p.BuoyName]; ok {
			boat = &b
		}

		var g domain.BuoyGroup
		err := sqlx.GetContext(ctx, r.q, &g, `
			INSERT INTO buoy_groups (res_date, time_period, buoy_name, boat, subtype)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, res_date, time_period, buoy_name, boat, subtype
		`, dateArg(day), period, p.BuoyName, boat, p.Subtype)
		if err != nil {
			return nil, fmt.Errorf("insert buoy group %s: %w", p.BuoyName, err)
		}

		ids := make(pq.Int64Array, len(p.ReservationIDs))
		for i, id := range p.ReservationIDs {
			ids[i] = int64(id)
		}
		if _, err := r.q.ExecContext(ctx, `
			UPDATE open_water_details SET group_id = $1 WHERE reservation_id = ANY($2)
		`, g.ID, ids); err != nil {
			return nil, fmt.Errorf("link buoy group %s: %w", p.BuoyName, err)
		}

		g.ReservationIDs = p.ReservationIDs
		created = append(created, g)
	}

	return created, nil
}

// FindOrCreateGroup returns the buoy's oldest group in the slot, creating
// one when the buoy carries none. Callers hold the slot lock.
func (r *repository) FindOrCreateGroup(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName string) (*domain.BuoyGroup, error) {
	var g domain.BuoyGroup
	err := sqlx.GetContext(ctx, r.q, &g, `
		SELECT id, res_date, time_period, buoy_name, boat, subtype
		FROM buoy_groups
		WHERE res_date = $1 AND time_period = $2 AND buoy_name = $3
		ORDER BY id
		LIMIT 1
	`, dateArg(day), period, buoyName)
	if err == nil {
		return &g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find buoy group: %w", err)
	}

	err = sqlx.GetContext(ctx, r.q, &g, `
		INSERT INTO buoy_groups (res_date, time_period, buoy_name)
		VALUES ($1, $2, $3)
		RETURNING id, res_date, time_period, buoy_name, boat, subtype
	`, dateArg(day), period, buoyName)
	if err != nil {
		return nil, fmt.Errorf("create buoy group: %w", err)
	}
	return &g, nil
}

func (r *repository) GetReservationSlot(ctx context.Context, reservationID int) (*SlotRef, error) {
	query := `
		SELECT r.res_date, d.time_period, r.status
		FROM reservations r
		JOIN open_water_details d ON d.reservation_id = r.id
		WHERE r.id = $1
	`

	var ref SlotRef
	err := sqlx.GetContext(ctx, r.q, &ref, query, reservationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation slot: %w", err)
	}
	return &ref, nil
}

func (r *repository) AssignReservation(ctx context.Context, reservationID, groupID int, pinnedBuoy *string) error {
	query := `
		UPDATE open_water_details SET group_id = $2, pinned_buoy = $3
		WHERE reservation_id = $1
	`

	result, err := r.q.ExecContext(ctx, query, reservationID, groupID, pinnedBuoy)
	if err != nil {
		return fmt.Errorf("assign reservation to group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PinSlot copies each grouped reservation's current buoy into its pin.
func (r *repository) PinSlot(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error) {
	query := `
		UPDATE open_water_details d SET pinned_buoy = g.buoy_name
		FROM buoy_groups g
		WHERE d.group_id = g.id AND g.res_date = $1 AND g.time_period = $2
	`

	result, err := r.q.ExecContext(ctx, query, dateArg(day), period)
	if err != nil {
		return 0, fmt.Errorf("pin slot: %w", err)
	}
	return result.RowsAffected()
}

func (r *repository) UnpinSlot(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error) {
	query := `
		UPDATE open_water_details d SET pinned_buoy = NULL
		FROM reservations r
		WHERE d.reservation_id = r.id AND r.res_date = $1 AND d.time_period = $2
		  AND d.pinned_buoy IS NOT NULL
	`

	result, err := r.q.ExecContext(ctx, query, dateArg(day), period)
	if err != nil {
		return 0, fmt.Errorf("unpin slot: %w", err)
	}
	return result.RowsAffected()
}

func (r *repository) SetBoat(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName string, boat *string) error {
	query := `
		UPDATE buoy_groups SET boat = $4
		WHERE res_date = $1 AND time_period = $2 AND buoy_name = $3
	`

	result, err := r.q.ExecContext(ctx, query, dateArg(day), period, buoyName, boat)
	if err != nil {
		return fmt.Errorf("set boat: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.Error{Code: domain.CodeNotFound, Message: fmt.Sprintf("no group on buoy %s for this slot", buoyName)}
	}
	return nil
}
