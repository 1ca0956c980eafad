package reservation

import (
	"github.com/superhome-100/superhome-scheduler-sub001/internal/cutoff"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

// canTransition is the status machine. Confirmed back to pending only
// happens through cascadeToPending.
func canTransition(from, to domain.Status) bool {
	switch to {
	case domain.StatusConfirmed:
		return from == domain.StatusPending
	case domain.StatusRejected, domain.StatusCancelled:
		return from.Active()
	case domain.StatusPending:
		return from == domain.StatusConfirmed
	}
	return false
}

// edit describes what an update changes, for the phase allow-lists.
type edit struct {
	date         bool
	times        bool
	period       bool
	subtype      bool
	downgrade    bool
	studentsUp   bool
	studentsDown bool
	lane         bool
	depth        bool
	equipment    bool
	note         bool
}

func diff(before, after *domain.Reservation) edit {
	e := edit{
		date:         !before.Date.Equal(after.Date),
		subtype:      before.Subtype() != after.Subtype(),
		studentsUp:   after.StudentCount() > before.StudentCount(),
		studentsDown: after.StudentCount() < before.StudentCount(),
		note:         before.Note != after.Note,
	}
	e.downgrade = e.subtype && before.Subtype() == domain.SubtypeCourseCoaching

	switch {
	case before.Pool != nil:
		e.times = before.Pool.StartTime != after.Pool.StartTime || before.Pool.EndTime != after.Pool.EndTime
		e.lane = !sameInt(before.Pool.Lane, after.Pool.Lane)
	case before.Classroom != nil:
		e.times = before.Classroom.StartTime != after.Classroom.StartTime || before.Classroom.EndTime != after.Classroom.EndTime
	case before.OpenWater != nil:
		e.period = before.OpenWater.TimePeriod != after.OpenWater.TimePeriod
		e.depth = !sameInt(before.OpenWater.DepthMeters, after.OpenWater.DepthMeters)
		e.equipment = before.OpenWater.Equipment != after.OpenWater.Equipment
	}
	return e
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (e edit) any() bool {
	return e.date || e.times || e.period || e.subtype || e.studentsUp || e.studentsDown ||
		e.lane || e.depth || e.equipment || e.note
}

func (e edit) movesSlot() bool {
	return e.date || e.times || e.period
}

// checkPhase enforces the edit allow-list of the current phase. Locked
// allows fewer students, dropping course coaching, notes and equipment.
// Restricted also allows same-day time or period moves and depth.
func checkPhase(phase cutoff.Phase, e edit) error {
	if phase == cutoff.PhaseFlexible {
		return nil
	}

	switch {
	case e.date:
		return domain.InvalidTransition("the date can no longer be changed (%s phase)", phase)
	case e.studentsUp:
		return domain.InvalidTransition("the student count can no longer be increased (%s phase)", phase)
	case e.subtype && !e.downgrade:
		return domain.InvalidTransition("only a downgrade from course coaching is allowed now (%s phase)", phase)
	case e.lane:
		return domain.InvalidTransition("the lane can no longer be changed (%s phase)", phase)
	}

	if phase == cutoff.PhaseLocked {
		switch {
		case e.times, e.period:
			return domain.InvalidTransition("the time can no longer be changed (%s phase)", phase)
		case e.depth:
			return domain.InvalidTransition("the depth can no longer be changed (%s phase)", phase)
		}
	}
	return nil
}

// cascadeToPending reverts a confirmed open-water reservation and every
// given buddy reservation to pending so the whole group is re-approved.
// It returns the reservations whose status changed.
func cascadeToPending(initiator *domain.Reservation, members []*domain.Reservation) []*domain.Reservation {
	if initiator.Kind != domain.KindOpenWater || initiator.Status != domain.StatusConfirmed {
		return nil
	}

	reverted := []*domain.Reservation{initiator}
	initiator.Status = domain.StatusPending
	for _, m := range members {
		if m.Status == domain.StatusConfirmed {
			m.Status = domain.StatusPending
			reverted = append(reverted, m)
		}
	}
	return reverted
}

// propagate copies the shared open-water fields of the initiator onto a
// buddy's reservation.
func propagate(from, to *domain.Reservation) {
	if from.OpenWater == nil || to.OpenWater == nil {
		return
	}
	if !to.Date.Equal(from.Date) || to.OpenWater.TimePeriod != from.OpenWater.TimePeriod {
		to.ClearAssignment()
	}
	to.Date = from.Date
	to.OpenWater.TimePeriod = from.OpenWater.TimePeriod
	to.OpenWater.Equipment = from.OpenWater.Equipment
	if from.OpenWater.DepthMeters != nil {
		depth := *from.OpenWater.DepthMeters
		to.OpenWater.DepthMeters = &depth
	} else {
		to.OpenWater.DepthMeters = nil
	}
	to.Note = from.Note
}
