package reservation

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
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
)

const uniqueViolation = "23505"

var ErrDuplicateSlot = &domain.Error{
	Code:    domain.CodeDuplicateReservation,
	Message: "you already have a reservation at this time",
}

type repository struct {
	conn *sqlx.DB
	q    sqlx.ExtContext
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{conn: conn, q: conn}
}

func (r *repository) WithLock(ctx context.Context, keys []string, fn func(Store) error) error {
	return db.WithAdvisoryLock(ctx, r.conn, keys, func(tx *sqlx.Tx) error {
		return fn(&repository{conn: r.conn, q: tx})
	})
}

// mapError turns the (owner, date, slot) unique violation into a typed rejection.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateSlot
	}
	return err
}

const selectReservations = `
	SELECT r.id, r.owner_id, r.res_date, r.kind, r.status, r.price_cents, r.note, r.created_at, r.updated_at,
	       p.start_time AS pool_start, p.end_time AS pool_end, p.lane AS pool_lane, p.subtype AS pool_subtype,
	       p.student_count AS pool_students, p.buddy_group_id AS pool_buddy_group,
	       c.start_time AS class_start, c.end_time AS class_end, c.room AS class_room, c.subtype AS class_subtype,
	       c.student_count AS class_students, c.buddy_group_id AS class_buddy_group,
	       o.time_period AS ow_period, o.depth_m AS ow_depth, o.subtype AS ow_subtype, o.pulley AS ow_pulley,
	       o.bottom_plate AS ow_bottom_plate, o.large_buoy AS ow_large_buoy, o.student_count AS ow_students,
	       o.group_id AS ow_group, o.pinned_buoy AS ow_pinned_buoy, o.buddy_group_id AS ow_buddy_group
	FROM reservations r
	LEFT JOIN pool_details p ON p.reservation_id = r.id
	LEFT JOIN classroom_details c ON c.reservation_id = r.id
	LEFT JOIN open_water_details o ON o.reservation_id = r.id
`

// reservationRow is one parent row joined with whichever detail exists.
type reservationRow struct {
	ID         int           `db:"id"`
	OwnerID    int           `db:"owner_id"`
	Date       time.Time     `db:"res_date"`
	Kind       domain.Kind   `db:"kind"`
	Status     domain.Status `db:"status"`
	PriceCents int64         `db:"price_cents"`
	Note       string        `db:"note"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`

	PoolStart      *domain.ClockTime `db:"pool_start"`
	PoolEnd        *domain.ClockTime `db:"pool_end"`
	PoolLane       *int              `db:"pool_lane"`
	PoolSubtype    *domain.Subtype   `db:"pool_subtype"`
	PoolStudents   *int              `db:"pool_students"`
	PoolBuddyGroup *int              `db:"pool_buddy_group"`

	ClassStart      *domain.ClockTime `db:"class_start"`
	ClassEnd        *domain.ClockTime `db:"class_end"`
	ClassRoom       *int              `db:"class_room"`
	ClassSubtype    *domain.Subtype   `db:"class_subtype"`
	ClassStudents   *int              `db:"class_students"`
	ClassBuddyGroup *int              `db:"class_buddy_group"`

	OWPeriod      *domain.TimePeriod `db:"ow_period"`
	OWDepth       *int               `db:"ow_depth"`
	OWSubtype     *domain.Subtype    `db:"ow_subtype"`
	OWPulley      *bool              `db:"ow_pulley"`
	OWBottomPlate *bool              `db:"ow_bottom_plate"`
	OWLargeBuoy   *bool              `db:"ow_large_buoy"`
	OWStudents    *int               `db:"ow_students"`
	OWGroup       *int               `db:"ow_group"`
	OWPinnedBuoy  *string            `db:"ow_pinned_buoy"`
	OWBuddyGroup  *int               `db:"ow_buddy_group"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (row *reservationRow) toDomain() domain.Reservation {
	r := domain.Reservation{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		Date:       domain.Day(row.Date),
		Kind:       row.Kind,
		Status:     row.Status,
		PriceCents: row.PriceCents,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}

	switch row.Kind {
	case domain.KindPool:
		if row.PoolStart != nil {
			r.Pool = &domain.PoolDetail{
				StartTime:    *row.PoolStart,
				EndTime:      deref(row.PoolEnd),
				Lane:         row.PoolLane,
				Subtype:      deref(row.PoolSubtype),
				StudentCount: deref(row.PoolStudents),
				BuddyGroupID: row.PoolBuddyGroup,
			}
		}
	case domain.KindClassroom:
		if row.ClassStart != nil {
			r.Classroom = &domain.ClassroomDetail{
				StartTime:    *row.ClassStart,
				EndTime:      deref(row.ClassEnd),
				Room:         row.ClassRoom,
				Subtype:      deref(row.ClassSubtype),
				StudentCount: deref(row.ClassStudents),
				BuddyGroupID: row.ClassBuddyGroup,
			}
		}
	case domain.KindOpenWater:
		if row.OWPeriod != nil {
			r.OpenWater = &domain.OpenWaterDetail{
				TimePeriod:  *row.OWPeriod,
				DepthMeters: row.OWDepth,
				Subtype:     deref(row.OWSubtype),
				Equipment: domain.Equipment{
					Pulley:      deref(row.OWPulley),
					BottomPlate: deref(row.OWBottomPlate),
					LargeBuoy:   deref(row.OWLargeBuoy),
				},
				StudentCount: deref(row.OWStudents),
				GroupID:      row.OWGroup,
				PinnedBuoy:   row.OWPinnedBuoy,
				BuddyGroupID: row.OWBuddyGroup,
			}
		}
	}
	return r
}

func (r *repository) list(ctx context.Context, where string, args ...interface{}) ([]domain.Reservation, error) {
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, selectReservations+where, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*domain.Reservation, error) {
	res, err := r.list(ctx, `WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if len(res) == 0 {
		return nil, domain.ErrNotFound
	}
	return &res[0], nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int) ([]domain.Reservation, error) {
	res, err := r.list(ctx, `WHERE r.owner_id = $1 ORDER BY r.res_date DESC, r.slot_time DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner reservations: %w", err)
	}
	return res, nil
}

func statusArgs(statuses []domain.Status) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *repository) ListActiveByDayKind(ctx context.Context, day time.Time, kind domain.Kind) ([]domain.Reservation, error) {
	res, err := r.list(ctx, `WHERE r.res_date = $1 AND r.kind = $2 AND r.status = ANY($3) ORDER BY r.id`,
		day.Format(domain.DateLayout), kind, statusArgs(domain.ActiveStatuses))
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return res, nil
}

func (r *repository) ListOwnerSlot(ctx context.Context, ownerID int, day time.Time, slot domain.ClockTime) ([]domain.Reservation, error) {
	res, err := r.list(ctx, `WHERE r.owner_id = $1 AND r.res_date = $2 AND r.slot_time = $3 ORDER BY r.id`,
		ownerID, day.Format(domain.DateLayout), slot)
	if err != nil {
		return nil, fmt.Errorf("list owner slot: %w", err)
	}
	return res, nil
}

func (r *repository) Insert(ctx context.Context, res *domain.Reservation) error {
	query := `
		INSERT INTO reservations (owner_id, res_date, slot_time, kind, status, price_cents, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	row := r.q.QueryRowxContext(ctx, query,
		res.OwnerID, res.Date.Format(domain.DateLayout), res.SlotTime(), res.Kind, res.Status, res.PriceCents, res.Note)
	if err := row.Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return mapError(fmt.Errorf("insert reservation: %w", err))
	}

	if _, err := r.q.ExecContext(ctx, `SAVEPOINT reservation_detail`); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := r.insertDetail(ctx, res); err != nil {
		if _, rbErr := r.q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT reservation_detail`); rbErr != nil {
			return fmt.Errorf("insert %s detail: %w", res.Kind, err)
		}
		if delErr := r.Delete(ctx, res.ID); delErr != nil {
			logger.Error("failed to remove reservation without detail", "reservation_id", res.ID, "error", delErr)
		}
		res.ID = 0
		return fmt.Errorf("insert %s detail: %w", res.Kind, err)
	}
	return nil
}

func (r *repository) insertDetail(ctx context.Context, res *domain.Reservation) error {
	var err error
	switch {
	case res.Pool != nil:
		d := res.Pool
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO pool_details (reservation_id, start_time, end_time, lane, subtype, student_count, buddy_group_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, res.ID, d.StartTime, d.EndTime, d.Lane, d.Subtype, d.StudentCount, d.BuddyGroupID)
	case res.Classroom != nil:
		d := res.Classroom
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO classroom_details (reservation_id, start_time, end_time, room, subtype, student_count, buddy_group_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, res.ID, d.StartTime, d.EndTime, d.Room, d.Subtype, d.StudentCount, d.BuddyGroupID)
	case res.OpenWater != nil:
		d := res.OpenWater
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO open_water_details (reservation_id, time_period, depth_m, subtype, pulley, bottom_plate,
			                                large_buoy, student_count, group_id, pinned_buoy, buddy_group_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, res.ID, d.TimePeriod, d.DepthMeters, d.Subtype, d.Equipment.Pulley, d.Equipment.BottomPlate,
			d.Equipment.LargeBuoy, d.StudentCount, d.GroupID, d.PinnedBuoy, d.BuddyGroupID)
	default:
		err = fmt.Errorf("reservation %d has no detail", res.ID)
	}
	return err
}

func (r *repository) Update(ctx context.Context, res *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET res_date = $2, slot_time = $3, status = $4, price_cents = $5, note = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	row := r.q.QueryRowxContext(ctx, query,
		res.ID, res.Date.Format(domain.DateLayout), res.SlotTime(), res.Status, res.PriceCents, res.Note)
	if err := row.Scan(&res.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError(fmt.Errorf("update reservation: %w", err))
	}

	var err error
	switch {
	case res.Pool != nil:
		d := res.Pool
		_, err = r.q.ExecContext(ctx, `
			UPDATE pool_details
			SET start_time = $2, end_time = $3, lane = $4, subtype = $5, student_count = $6, buddy_group_id = $7
			WHERE reservation_id = $1
		`, res.ID, d.StartTime, d.EndTime, d.Lane, d.Subtype, d.StudentCount, d.BuddyGroupID)
	case res.Classroom != nil:
		d := res.Classroom
		_, err = r.q.ExecContext(ctx, `
			UPDATE classroom_details
			SET start_time = $2, end_time = $3, room = $4, subtype = $5, student_count = $6, buddy_group_id = $7
			WHERE reservation_id = $1
		`, res.ID, d.StartTime, d.EndTime, d.Room, d.Subtype, d.StudentCount, d.BuddyGroupID)
	case res.OpenWater != nil:
		d := res.OpenWater
		_, err = r.q.ExecContext(ctx, `
			UPDATE open_water_details
			SET time_period = $2, depth_m = $3, subtype = $4, pulley = $5, bottom_plate = $6, large_buoy = $7,
			    student_count = $8, group_id = $9, pinned_buoy = $10, buddy_group_id = $11
			WHERE reservation_id = $1
		`, res.ID, d.TimePeriod, d.DepthMeters, d.Subtype, d.Equipment.Pulley, d.Equipment.BottomPlate,
			d.Equipment.LargeBuoy, d.StudentCount, d.GroupID, d.PinnedBuoy, d.BuddyGroupID)
	}
	if err != nil {
		return fmt.Errorf("update %s detail: %w", res.Kind, err)
	}
	return nil
}

// Delete removes the parent row; detail rows go with it by cascade.
func (r *repository) Delete(ctx context.Context, id int) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *repository) CreateBuddyGroup(ctx context.Context, g *domain.BuddyGroup) error {
	query := `
		INSERT INTO buddy_groups (initiator_reservation_id, res_date, slot_time, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := sqlx.GetContext(ctx, r.q, &g.ID, query,
		g.InitiatorReservationID, g.Date.Format(domain.DateLayout), g.SlotTime, g.Kind)
	if err != nil {
		return fmt.Errorf("insert buddy group: %w", err)
	}

	for i := range g.Members {
		m := &g.Members[i]
		m.BuddyGroupID = g.ID
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO buddy_group_members (buddy_group_id, user_id, reservation_id, status)
			VALUES ($1, $2, $3, $4)
		`, m.BuddyGroupID, m.UserID, m.ReservationID, m.Status); err != nil {
			return fmt.Errorf("insert buddy member: %w", err)
		}
	}
	return nil
}

func (r *repository) GetBuddyGroup(ctx context.Context, id int) (*domain.BuddyGroup, error) {
	var g domain.BuddyGroup
	err := sqlx.GetContext(ctx, r.q, &g, `
		SELECT id, initiator_reservation_id, res_date, slot_time, kind
		FROM buddy_groups
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get buddy group: %w", err)
	}

	err = sqlx.SelectContext(ctx, r.q, &g.Members, `
		SELECT buddy_group_id, user_id, reservation_id, status
		FROM buddy_group_members
		WHERE buddy_group_id = $1
		ORDER BY user_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list buddy members: %w", err)
	}
	return &g, nil
}

func (r *repository) RemoveBuddyMember(ctx context.Context, groupID, userID int) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE buddy_group_members SET status = $3
		WHERE buddy_group_id = $1 AND user_id = $2 AND status = $4
	`, groupID, userID, domain.BuddyRemoved, domain.BuddyAccepted)
	if err != nil {
		return fmt.Errorf("remove buddy: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.InvalidRequest("user %d is not in this buddy group", userID)
	}
	return nil
}
