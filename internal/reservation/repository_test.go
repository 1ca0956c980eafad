package reservation

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

var parentColumns = []string{"id", "owner_id", "res_date", "kind", "status", "price_cents", "note", "created_at", "updated_at"}

func poolReservation() *domain.Reservation {
	return &domain.Reservation{
		OwnerID:    7,
		Date:       day(tomorrow),
		Kind:       domain.KindPool,
		Status:     domain.StatusConfirmed,
		PriceCents: 50000,
		Pool: &domain.PoolDetail{
			StartTime: clock("10:00"),
			EndTime:   clock("11:00"),
			Lane:      domain.IntPtr(3),
			Subtype:   domain.SubtypeAutonomous,
		},
	}
}

func TestInsertWritesParentAndDetail(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(7, tomorrow, "10:00:00", "pool", "confirmed", int64(50000), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT reservation_detail")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pool_details")).
		WithArgs(42, "10:00:00", "11:00:00", 3, "autonomous", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := poolReservation()
	err := repo.Insert(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, 42, res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDetailFailureRemovesParent(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT reservation_detail")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pool_details")).
		WillReturnError(errors.New("check constraint violated"))
	mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT reservation_detail")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = $1")).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := poolReservation()
	err := repo.Insert(context.Background(), res)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert pool detail")
	assert.Zero(t, res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUniqueViolation(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Insert(context.Background(), poolReservation())
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.ErrorIs(t, err, domain.ErrDuplicateReservation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDOpenWater(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()
	columns := append(append([]string{}, parentColumns...),
		"ow_period", "ow_depth", "ow_subtype", "ow_pulley", "ow_bottom_plate", "ow_large_buoy",
		"ow_students", "ow_group", "ow_pinned_buoy", "ow_buddy_group")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN open_water_details o ON o.reservation_id = r.id")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			5, 7, day(dayAfter), "open_water", "pending", 120000, "", now, now,
			"AM", 35, "autonomous_buoy", true, false, false, 0, 12, nil, nil,
		))

	r, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, r.OpenWater)
	assert.Nil(t, r.Pool)
	assert.Equal(t, domain.PeriodAM, r.OpenWater.TimePeriod)
	assert.Equal(t, 35, *r.OpenWater.DepthMeters)
	assert.True(t, r.OpenWater.Equipment.Pulley)
	assert.Equal(t, 12, *r.OpenWater.GroupID)
	assert.Nil(t, r.OpenWater.PinnedBuoy)
	assert.Equal(t, domain.NewClockTime(8, 0), r.SlotTime())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(parentColumns))

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByDayKind(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()
	columns := append(append([]string{}, parentColumns...),
		"pool_start", "pool_end", "pool_lane", "pool_subtype", "pool_students", "pool_buddy_group")
	mock.ExpectQuery(regexp.QuoteMeta("AND r.status = ANY($3)")).
		WithArgs(tomorrow, "pool", pq.StringArray{"pending", "confirmed"}).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 7, day(tomorrow), "pool", "confirmed", 50000, "", now, now,
				"10:00:00", "11:00:00", 1, "course_coaching", 2, nil))

	list, err := repo.ListActiveByDayKind(context.Background(), day(tomorrow), domain.KindPool)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, clock("11:00"), list[0].Pool.EndTime)
	assert.Equal(t, 2, list[0].Pool.StudentCount)
	assert.Equal(t, 1, *list[0].Pool.Lane)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRow(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE reservations")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	res := poolReservation()
	res.ID = 99
	err := repo.Update(context.Background(), res)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWritesDetail(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE reservations")).
		WithArgs(42, tomorrow, "10:00:00", "cancelled", int64(0), "").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pool_details")).
		WithArgs(42, "10:00:00", "11:00:00", nil, "autonomous", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := poolReservation()
	res.ID = 42
	cancel(res)
	require.NoError(t, repo.Update(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBuddyGroup(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO buddy_groups")).
		WithArgs(10, dayAfter, "08:00:00", "open_water").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buddy_group_members")).
		WithArgs(5, 2, 11, "accepted").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO buddy_group_members")).
		WithArgs(5, 3, 12, "accepted").
		WillReturnResult(sqlmock.NewResult(0, 1))

	g := &domain.BuddyGroup{
		InitiatorReservationID: 10,
		Date:                   day(dayAfter),
		SlotTime:               domain.PeriodAM.Anchor(),
		Kind:                   domain.KindOpenWater,
		Members: []domain.BuddyMember{
			{UserID: 2, ReservationID: 11, Status: domain.BuddyAccepted},
			{UserID: 3, ReservationID: 12, Status: domain.BuddyAccepted},
		},
	}
	require.NoError(t, repo.CreateBuddyGroup(context.Background(), g))
	assert.Equal(t, 5, g.ID)
	assert.Equal(t, 5, g.Members[1].BuddyGroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveBuddyMemberUnknownUser(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE buddy_group_members SET status = $3")).
		WithArgs(5, 8, "removed", "accepted").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveBuddyMember(context.Background(), 5, 8)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithLockTakesSortedKeys(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("open_water:2026-10-21").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("open_water:2026-10-21:AM").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	keys := []string{"open_water:2026-10-21:AM", "open_water:2026-10-21"}
	err := repo.WithLock(context.Background(), keys, func(st Store) error {
		return st.Delete(context.Background(), 3)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
