// Package classroom checks room capacity and assigns rooms on approval.
package classroom

import (
	"fmt"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

const DefaultRooms = 3

type Checker struct {
	Rooms int
}

func NewChecker(rooms int) *Checker {
	if rooms <= 0 {
		rooms = DefaultRooms
	}
	return &Checker{Rooms: rooms}
}

func overlaps(aStart, aEnd, bStart, bEnd domain.ClockTime) bool {
	return aStart < bEnd && bStart < aEnd
}

// overlapping returns the classroom reservations sharing part of [start, end).
func overlapping(existing []domain.Reservation, start, end domain.ClockTime, excludeID int) []*domain.Reservation {
	var out []*domain.Reservation
	for i := range existing {
		r := &existing[i]
		if (excludeID != 0 && r.ID == excludeID) || r.Classroom == nil || !r.Status.Active() {
			continue
		}
		if overlaps(r.Classroom.StartTime, r.Classroom.EndTime, start, end) {
			out = append(out, r)
		}
	}
	return out
}

// IsCapacityAvailable counts pending and confirmed bookings in any room;
// the candidate fits when fewer than Rooms overlap it.
func (c *Checker) IsCapacityAvailable(existing []domain.Reservation, start, end domain.ClockTime, excludeID int) bool {
	return len(overlapping(existing, start, end, excludeID)) < c.Rooms
}

func (c *Checker) CheckCapacity(existing []domain.Reservation, start, end domain.ClockTime, excludeID int) error {
	if c.IsCapacityAvailable(existing, start, end, excludeID) {
		return nil
	}
	return domain.CapacityExceeded(fmt.Sprintf("all %d classrooms are booked for %s-%s", c.Rooms, start, end), nil)
}

// AssignRoom returns the lowest room not held by a confirmed booking
// overlapping the window.
func (c *Checker) AssignRoom(existing []domain.Reservation, start, end domain.ClockTime, excludeID int) (int, error) {
	taken := make(map[int]bool, c.Rooms)
	for _, r := range overlapping(existing, start, end, excludeID) {
		if r.Status == domain.StatusConfirmed && r.Classroom.Room != nil {
			taken[*r.Classroom.Room] = true
		}
	}
	for room := 1; room <= c.Rooms; room++ {
		if !taken[room] {
			return room, nil
		}
	}
	return 0, domain.CapacityExceeded(fmt.Sprintf("no classroom is free for %s-%s", start, end), nil)
}

// Reassign keeps the current room while it stays free and otherwise
// falls back to AssignRoom.
func (c *Checker) Reassign(existing []domain.Reservation, start, end domain.ClockTime, excludeID int, current *int) (int, error) {
	if current != nil {
		free := true
		for _, r := range overlapping(existing, start, end, excludeID) {
			if r.Status == domain.StatusConfirmed && r.Classroom.Room != nil && *r.Classroom.Room == *current {
				free = false
				break
			}
		}
		if free {
			return *current, nil
		}
	}
	return c.AssignRoom(existing, start, end, excludeID)
}
