package reservation

import (
	"context"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

// Store is the set of reads and writes the lifecycle needs. Writes are
// only issued through a Store handed out by Repository.WithLock.
type Store interface {
	GetByID(ctx context.Context, id int) (*domain.Reservation, error)
	ListByOwner(ctx context.Context, ownerID int) ([]domain.Reservation, error)
	ListActiveByDayKind(ctx context.Context, day time.Time, kind domain.Kind) ([]domain.Reservation, error)
	// ListOwnerSlot returns the owner's reservations of any status at the slot.
	ListOwnerSlot(ctx context.Context, ownerID int, day time.Time, slot domain.ClockTime) ([]domain.Reservation, error)

	// Insert writes the parent row and its detail row. A failed detail
	// write removes the parent again.
	Insert(ctx context.Context, r *domain.Reservation) error
	Update(ctx context.Context, r *domain.Reservation) error
	Delete(ctx context.Context, id int) error

	CreateBuddyGroup(ctx context.Context, g *domain.BuddyGroup) error
	GetBuddyGroup(ctx context.Context, id int) (*domain.BuddyGroup, error)
	RemoveBuddyMember(ctx context.Context, groupID, userID int) error
}

type Repository interface {
	Store
	// WithLock runs fn in one transaction holding an advisory lock per key.
	WithLock(ctx context.Context, keys []string, fn func(Store) error) error
}
