// Package pool allocates contiguous lane blocks for pool reservations.
package pool

import "github.com/superhome-100/superhome-scheduler-sub001/internal/domain"

const (
	CellMinutes  = 30
	CellsPerDay  = domain.MinutesPerDay / CellMinutes // 48
	DefaultLanes = 8
)

// CellRange maps [start, end) onto half-open cell indexes. Unaligned
// bounds widen the range: the start is floored and the end is ceiled.
func CellRange(start, end domain.ClockTime) (from, to int) {
	from = int(start) / CellMinutes
	to = (int(end) + CellMinutes - 1) / CellMinutes
	if from < 0 {
		from = 0
	}
	if to > CellsPerDay {
		to = CellsPerDay
	}
	return from, to
}

// SpanWidth is the number of contiguous lanes a booking occupies: one coach
// lane plus one per student for course coaching, a single lane otherwise.
func SpanWidth(subtype domain.Subtype, studentCount, totalLanes int) int {
	if subtype != domain.SubtypeCourseCoaching {
		return 1
	}
	span := 1 + studentCount
	if span < 1 {
		span = 1
	}
	if span > totalLanes {
		span = totalLanes
	}
	return span
}

// Occupancy tracks the occupied cells of every lane for one day.
type Occupancy struct {
	lanes []map[int]struct{}
}

func NewOccupancy(totalLanes int) *Occupancy {
	lanes := make([]map[int]struct{}, totalLanes+1)
	for i := range lanes {
		lanes[i] = make(map[int]struct{})
	}
	return &Occupancy{lanes: lanes}
}

func (o *Occupancy) TotalLanes() int {
	return len(o.lanes) - 1
}

func (o *Occupancy) Occupy(laneStart, span, from, to int) {
	for lane := laneStart; lane < laneStart+span && lane <= o.TotalLanes(); lane++ {
		if lane < 1 {
			continue
		}
		for cell := from; cell < to; cell++ {
			o.lanes[lane][cell] = struct{}{}
		}
	}
}

// Blocked lists the lanes of the block that have at least one occupied cell in [from, to).
func (o *Occupancy) Blocked(laneStart, span, from, to int) []int {
	var blocked []int
	for lane := laneStart; lane < laneStart+span && lane <= o.TotalLanes(); lane++ {
		if lane < 1 {
			continue
		}
		for cell := from; cell < to; cell++ {
			if _, taken := o.lanes[lane][cell]; taken {
				blocked = append(blocked, lane)
				break
			}
		}
	}
	return blocked
}
