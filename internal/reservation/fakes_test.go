package reservation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// memRepo is an in-memory Repository. WithLock snapshots the data and
// restores it when fn fails, like a rolled back transaction.
type memRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID    int
	nextGroup int
	rows      map[int]*domain.Reservation
	groups    map[int]*domain.BuddyGroup
	lockKeys  [][]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:   make(map[int]*domain.Reservation),
		groups: make(map[int]*domain.BuddyGroup),
	}
}

func (m *memRepo) WithLock(ctx context.Context, keys []string, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.lockKeys = append(m.lockKeys, keys)
	rows, groups := m.snapshot()
	nextID, nextGroup := m.nextID, m.nextGroup
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows, m.groups = rows, groups
		m.nextID, m.nextGroup = nextID, nextGroup
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memRepo) snapshot() (map[int]*domain.Reservation, map[int]*domain.BuddyGroup) {
	rows := make(map[int]*domain.Reservation, len(m.rows))
	for id, r := range m.rows {
		rows[id] = r.Clone()
	}
	groups := make(map[int]*domain.BuddyGroup, len(m.groups))
	for id, g := range m.groups {
		c := *g
		c.Members = append([]domain.BuddyMember(nil), g.Members...)
		groups[id] = &c
	}
	return rows, groups
}

// seed stores r as-is, bypassing the unique check.
func (m *memRepo) seed(r domain.Reservation) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		m.nextID++
		r.ID = m.nextID
	} else if r.ID > m.nextID {
		m.nextID = r.ID
	}
	m.rows[r.ID] = r.Clone()
	return &r
}

func (m *memRepo) get(id int) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil
	}
	return r.Clone()
}

func (m *memRepo) byOwner(ownerID int) []domain.Reservation {
	list, _ := m.ListByOwner(context.Background(), ownerID)
	return list
}

func (m *memRepo) sorted(match func(*domain.Reservation) bool) []domain.Reservation {
	var out []domain.Reservation
	for _, r := range m.rows {
		if match(r) {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepo) GetByID(ctx context.Context, id int) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memRepo) ListByOwner(ctx context.Context, ownerID int) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *domain.Reservation) bool { return r.OwnerID == ownerID }), nil
}

func (m *memRepo) ListActiveByDayKind(ctx context.Context, day time.Time, kind domain.Kind) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *domain.Reservation) bool {
		return r.Kind == kind && r.Date.Equal(day) && r.Status.Active()
	}), nil
}

func (m *memRepo) ListOwnerSlot(ctx context.Context, ownerID int, day time.Time, slot domain.ClockTime) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *domain.Reservation) bool {
		return r.OwnerID == ownerID && r.Date.Equal(day) && r.SlotTime() == slot
	}), nil
}

func (m *memRepo) clashes(r *domain.Reservation) bool {
	for id, o := range m.rows {
		if id != r.ID && o.OwnerID == r.OwnerID && o.Date.Equal(r.Date) && o.SlotTime() == r.SlotTime() {
			return true
		}
	}
	return false
}

func (m *memRepo) Insert(ctx context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clashes(r) {
		return ErrDuplicateSlot
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.rows[r.ID] = r.Clone()
	return nil
}

func (m *memRepo) Update(ctx context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return domain.ErrNotFound
	}
	if m.clashes(r) {
		return ErrDuplicateSlot
	}
	r.UpdatedAt = time.Now()
	m.rows[r.ID] = r.Clone()
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memRepo) CreateBuddyGroup(ctx context.Context, g *domain.BuddyGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGroup++
	g.ID = m.nextGroup
	for i := range g.Members {
		g.Members[i].BuddyGroupID = g.ID
	}
	c := *g
	c.Members = append([]domain.BuddyMember(nil), g.Members...)
	m.groups[g.ID] = &c
	return nil
}

func (m *memRepo) GetBuddyGroup(ctx context.Context, id int) (*domain.BuddyGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("buddy group %d not found", id)
	}
	c := *g
	c.Members = append([]domain.BuddyMember(nil), g.Members...)
	return &c, nil
}

func (m *memRepo) RemoveBuddyMember(ctx context.Context, groupID, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return fmt.Errorf("buddy group %d not found", groupID)
	}
	for i := range g.Members {
		if g.Members[i].UserID == userID && g.Members[i].Status == domain.BuddyAccepted {
			g.Members[i].Status = domain.BuddyRemoved
			return nil
		}
	}
	return domain.InvalidRequest("user %d is not a buddy on this booking", userID)
}

type fakeSettings struct {
	settings domain.Settings
	// closed maps "<kind>:<date>" to the override reason.
	closed map[string]string
}

func newFakeSettings() *fakeSettings {
	s := domain.DefaultSettings()
	s.PoolPriceCents = 50000
	s.ClassroomPriceCents = 30000
	s.OpenWaterPriceCents = 120000
	return &fakeSettings{settings: s, closed: map[string]string{}}
}

func (f *fakeSettings) Effective(ctx context.Context, at time.Time) (domain.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettings) CheckAvailability(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) error {
	if reason, ok := f.closed[string(kind)+":"+day.Format(domain.DateLayout)]; ok {
		return domain.Unavailable(kind, day, reason)
	}
	return nil
}

type slotCall struct {
	Day    string
	Period domain.TimePeriod
}

type fakeTrigger struct {
	mu    sync.Mutex
	calls []slotCall
	err   error
}

func (f *fakeTrigger) Trigger(ctx context.Context, day time.Time, period domain.TimePeriod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, slotCall{Day: day.Format(domain.DateLayout), Period: period})
	return f.err
}
