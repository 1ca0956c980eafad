package buoy

import (
	"context"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

// SlotRef locates the open-water slot a reservation belongs to.
type SlotRef struct {
	Date       time.Time         `db:"res_date"`
	TimePeriod domain.TimePeriod `db:"time_period"`
	Status     domain.Status     `db:"status"`
}

type Repository interface {
	// WithSlotLock runs fn in a transaction holding the slot's advisory lock.
	WithSlotLock(ctx context.Context, day time.Time, period domain.TimePeriod, fn func(Repository) error) error

	ListBuoys(ctx context.Context) ([]domain.Buoy, error)
	GetBuoy(ctx context.Context, name string) (*domain.Buoy, error)
	ListSlotDivers(ctx context.Context, day time.Time, period domain.TimePeriod) ([]Diver, error)
	ListSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod) ([]domain.BuoyGroup, error)
	ReplaceSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod, groups []PlannedGroup) ([]domain.BuoyGroup, error)
	FindOrCreateGroup(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName string) (*domain.BuoyGroup, error)
	GetReservationSlot(ctx context.Context, reservationID int) (*SlotRef, error)
	AssignReservation(ctx context.Context, reservationID, groupID int, pinnedBuoy *string) error
	PinSlot(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error)
	UnpinSlot(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error)
	SetBoat(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName string, boat *string) error
}
