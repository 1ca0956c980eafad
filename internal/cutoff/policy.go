// Package cutoff decides whether a reservation may still be created,
// modified or cancelled at the current instant.
package cutoff

import (
	"fmt"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type Phase string

const (
	// PhaseFlexible allows any edit and cancellation.
	PhaseFlexible Phase = "flexible"
	// PhaseRestricted is past the cancellation cutoff but before the modification cutoff.
	PhaseRestricted Phase = "restricted"
	// PhaseLocked is past the modification cutoff.
	PhaseLocked Phase = "locked"
)

// Slot identifies the booked window a cutoff is measured against.
type Slot struct {
	Kind  domain.Kind
	Day   time.Time
	Start domain.ClockTime
}

func SlotOf(r *domain.Reservation) Slot {
	return Slot{Kind: r.Kind, Day: r.Date, Start: r.SlotTime()}
}

type Policy struct {
	clock Clock
	loc   *time.Location
}

func NewPolicy(clock Clock, loc *time.Location) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{clock: clock, loc: loc}
}

func (p *Policy) Now() time.Time {
	return p.clock.Now().In(p.loc)
}

func (p *Policy) Location() *time.Location {
	return p.loc
}

// Today is the facility-local calendar day.
func (p *Policy) Today() time.Time {
	return domain.Day(p.Now())
}

func (p *Policy) start(slot Slot) time.Time {
	return slot.Start.On(slot.Day, p.loc)
}

func (p *Policy) CreationCutoff(s domain.Settings, slot Slot) time.Time {
	if slot.Kind == domain.KindOpenWater {
		return s.ReservationCutOffTimeOW.On(slot.Day.AddDate(0, 0, -1), p.loc)
	}
	return p.start(slot).Add(-time.Duration(s.CutOffMinutes(slot.Kind)) * time.Minute)
}

func (p *Policy) ModificationCutoff(s domain.Settings, slot Slot) time.Time {
	return p.CreationCutoff(s, slot)
}

func (p *Policy) CancellationCutoff(s domain.Settings, slot Slot) time.Time {
	return p.start(slot).Add(-time.Duration(s.CancelMinutes(slot.Kind)) * time.Minute)
}

func (p *Policy) IsWithinCreationWindow(s domain.Settings, slot Slot) bool {
	if slot.Kind == domain.KindOpenWater && !slot.Day.After(p.Today()) {
		return false
	}
	return p.Now().Before(p.CreationCutoff(s, slot))
}

func (p *Policy) IsWithinLeadTime(s domain.Settings, day time.Time) bool {
	return !day.After(p.Today().AddDate(0, 0, s.ReservationLeadTimeDays))
}

func (p *Policy) EditPhase(s domain.Settings, slot Slot) Phase {
	now := p.Now()
	switch {
	case !now.Before(p.ModificationCutoff(s, slot)):
		return PhaseLocked
	case !now.Before(p.CancellationCutoff(s, slot)):
		return PhaseRestricted
	default:
		return PhaseFlexible
	}
}

// CheckCreation returns a typed rejection when the slot cannot be booked now.
func (p *Policy) CheckCreation(s domain.Settings, slot Slot) error {
	cutoffAt := p.CreationCutoff(s, slot)
	if slot.Kind == domain.KindOpenWater && !slot.Day.After(p.Today()) {
		return domain.CutoffExpired("Open water must be booked before the day of the dive; booking cutoff", cutoffAt)
	}
	if !p.Now().Before(cutoffAt) {
		return domain.CutoffExpired(creationDescription(s, slot.Kind), cutoffAt)
	}
	if !p.IsWithinLeadTime(s, slot.Day) {
		return domain.OutsideLeadTime(slot.Day, s.ReservationLeadTimeDays)
	}
	return nil
}

func (p *Policy) CheckCancellation(s domain.Settings, slot Slot) error {
	cutoffAt := p.CancellationCutoff(s, slot)
	if !p.Now().Before(cutoffAt) {
		return domain.CutoffExpired(
			fmt.Sprintf("Cancellation cutoff (%d minutes before start)", s.CancelMinutes(slot.Kind)),
			cutoffAt,
		)
	}
	return nil
}

func creationDescription(s domain.Settings, k domain.Kind) string {
	if k == domain.KindOpenWater {
		return fmt.Sprintf("Open water booking cutoff (%s the day before)", s.ReservationCutOffTimeOW)
	}
	return fmt.Sprintf("%s booking cutoff (%d minutes before start)", k.Label(), s.CutOffMinutes(k))
}
