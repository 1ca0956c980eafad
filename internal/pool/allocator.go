package pool

import (
	"fmt"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

// Candidate is the pool booking being placed.
type Candidate struct {
	Start        domain.ClockTime
	End          domain.ClockTime
	Subtype      domain.Subtype
	StudentCount int
	LaneStart    int
}

func CandidateOf(d *domain.PoolDetail) Candidate {
	c := Candidate{
		Start:        d.StartTime,
		End:          d.EndTime,
		Subtype:      d.Subtype,
		StudentCount: d.StudentCount,
	}
	if d.Lane != nil {
		c.LaneStart = *d.Lane
	}
	return c
}

type Collision struct {
	BlockedLanes []int
	Overflow     bool
}

func (c Collision) Collides() bool {
	return c.Overflow || len(c.BlockedLanes) > 0
}

type Allocator struct {
	TotalLanes int
}

func NewAllocator(totalLanes int) *Allocator {
	if totalLanes <= 0 {
		totalLanes = DefaultLanes
	}
	return &Allocator{TotalLanes: totalLanes}
}

// occupancy builds the day's occupied cells from active pool reservations
// that hold a lane, skipping excludeID. Zero excludes nothing, so unsaved
// bookings still count.
func (a *Allocator) occupancy(existing []domain.Reservation, excludeID int) *Occupancy {
	occ := NewOccupancy(a.TotalLanes)
	for i := range existing {
		r := &existing[i]
		if (excludeID != 0 && r.ID == excludeID) || r.Pool == nil || r.Pool.Lane == nil || !r.Status.Active() {
			continue
		}
		from, to := CellRange(r.Pool.StartTime, r.Pool.EndTime)
		occ.Occupy(*r.Pool.Lane, SpanWidth(r.Pool.Subtype, r.Pool.StudentCount, a.TotalLanes), from, to)
	}
	return occ
}

func (a *Allocator) CheckCollision(c Candidate, existing []domain.Reservation, excludeID int) Collision {
	return a.check(a.occupancy(existing, excludeID), c)
}

func (a *Allocator) check(occ *Occupancy, c Candidate) Collision {
	span := SpanWidth(c.Subtype, c.StudentCount, a.TotalLanes)
	from, to := CellRange(c.Start, c.End)
	return Collision{
		BlockedLanes: occ.Blocked(c.LaneStart, span, from, to),
		Overflow:     c.LaneStart < 1 || c.LaneStart+span-1 > a.TotalLanes,
	}
}

// FirstAvailableLane scans lane starts in increasing order and returns the
// first collision-free block.
func (a *Allocator) FirstAvailableLane(c Candidate, existing []domain.Reservation, excludeID int) (int, bool) {
	return a.firstFit(a.occupancy(existing, excludeID), c)
}

func (a *Allocator) firstFit(occ *Occupancy, c Candidate) (int, bool) {
	span := SpanWidth(c.Subtype, c.StudentCount, a.TotalLanes)
	for lane := 1; lane <= a.TotalLanes-span+1; lane++ {
		c.LaneStart = lane
		if !a.check(occ, c).Collides() {
			return lane, true
		}
	}
	return 0, false
}

// Resolve picks the lane block for a booking. An explicit lane is honored
// only if it is free; otherwise the blocked lanes are reported. A lane the
// booking already holds is kept while it stays free, and a first-fit search
// runs when it does not.
func (a *Allocator) Resolve(c Candidate, existing []domain.Reservation, excludeID int, explicit bool) (int, error) {
	occ := a.occupancy(existing, excludeID)

	if c.LaneStart > 0 {
		col := a.check(occ, c)
		if !col.Collides() {
			return c.LaneStart, nil
		}
		if explicit {
			if col.Overflow && len(col.BlockedLanes) == 0 {
				return 0, domain.CapacityExceeded(
					fmt.Sprintf("lane %d cannot fit a block of %d lanes", c.LaneStart,
						SpanWidth(c.Subtype, c.StudentCount, a.TotalLanes)), nil)
			}
			return 0, domain.CapacityExceeded(
				fmt.Sprintf("lanes %v are already taken for %s-%s", col.BlockedLanes, c.Start, c.End),
				col.BlockedLanes)
		}
	}

	lane, ok := a.firstFit(occ, c)
	if !ok {
		return 0, domain.CapacityExceeded(
			fmt.Sprintf("all pool lanes are taken for %s-%s", c.Start, c.End), nil)
	}
	return lane, nil
}
