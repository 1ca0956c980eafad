package reservation

import (
	"sort"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

func validateDraft(r *domain.Reservation) error {
	if !r.Kind.Valid() {
		return domain.InvalidRequest("unknown reservation kind %q", r.Kind)
	}

	switch r.Kind {
	case domain.KindPool:
		if r.Pool == nil {
			return domain.InvalidRequest("pool details are required")
		}
		r.Classroom, r.OpenWater = nil, nil
		if err := validateWindow(r.Pool.StartTime, r.Pool.EndTime); err != nil {
			return err
		}
		if r.Pool.Lane != nil && *r.Pool.Lane < 1 {
			return domain.InvalidRequest("lane must be 1 or higher")
		}
	case domain.KindClassroom:
		if r.Classroom == nil {
			return domain.InvalidRequest("classroom details are required")
		}
		r.Pool, r.OpenWater = nil, nil
		if err := validateWindow(r.Classroom.StartTime, r.Classroom.EndTime); err != nil {
			return err
		}
	case domain.KindOpenWater:
		if r.OpenWater == nil {
			return domain.InvalidRequest("open water details are required")
		}
		r.Pool, r.Classroom = nil, nil
		if !r.OpenWater.TimePeriod.Valid() {
			return domain.InvalidRequest("time period must be AM or PM")
		}
		if d := r.OpenWater.DepthMeters; d != nil && *d <= 0 {
			return domain.InvalidRequest("depth must be positive")
		}
	}

	if !r.Subtype().ValidFor(r.Kind) {
		return domain.InvalidRequest("%q is not a %s subtype", r.Subtype(), r.Kind.Label())
	}
	if r.StudentCount() < 0 {
		return domain.InvalidRequest("student count cannot be negative")
	}
	return nil
}

func validateWindow(start, end domain.ClockTime) error {
	if start < 0 || end > domain.MinutesPerDay || start >= end {
		return domain.InvalidRequest("start time %s must be before end time %s", start, end)
	}
	return nil
}

// buddyRules normalizes the buddy list and applies the per-subtype limits.
// Course coaching bookings never carry buddies.
func buddyRules(r *domain.Reservation, ids []int) ([]int, error) {
	if r.Subtype() == domain.SubtypeCourseCoaching {
		return nil, nil
	}

	seen := map[int]bool{r.OwnerID: true}
	var out []int
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)

	switch {
	case r.Kind == domain.KindPool && r.Subtype() == domain.SubtypeAutonomous && len(out) > 1:
		return nil, domain.InvalidRequest("autonomous pool bookings allow at most 1 buddy")
	case r.Kind == domain.KindOpenWater &&
		(r.Subtype() == domain.SubtypeAutonomousPlatform || r.Subtype() == domain.SubtypeAutonomousPlatformCBS) &&
		len(out) < 2:
		return nil, domain.InvalidRequest("%s bookings need at least 2 buddies", r.Subtype())
	}
	return out, nil
}

// applyChanges stages ch on a copy of cur. Fields that do not exist for
// the reservation's kind are rejected.
func applyChanges(cur *domain.Reservation, ch Changes) (*domain.Reservation, error) {
	next := cur.Clone()
	if ch.Date != nil {
		next.Date = domain.Day(*ch.Date)
	}
	if ch.Note != nil {
		next.Note = *ch.Note
	}

	switch {
	case next.Pool != nil:
		if err := notFor(next.Kind, field{ch.TimePeriod != nil, "time_period"}, field{ch.DepthMeters != nil, "depth_m"}, field{ch.Equipment != nil, "equipment"}); err != nil {
			return nil, err
		}
		d := next.Pool
		setClock(&d.StartTime, ch.StartTime)
		setClock(&d.EndTime, ch.EndTime)
		if ch.Subtype != nil {
			d.Subtype = *ch.Subtype
		}
		if ch.StudentCount != nil {
			d.StudentCount = *ch.StudentCount
		}
		if ch.Lane != nil {
			if *ch.Lane < 1 {
				return nil, domain.InvalidRequest("lane must be 1 or higher")
			}
			d.Lane = domain.IntPtr(*ch.Lane)
		}
		if err := validateWindow(d.StartTime, d.EndTime); err != nil {
			return nil, err
		}

	case next.Classroom != nil:
		if err := notFor(next.Kind, field{ch.Lane != nil, "lane"}, field{ch.TimePeriod != nil, "time_period"}, field{ch.DepthMeters != nil, "depth_m"}, field{ch.Equipment != nil, "equipment"}); err != nil {
			return nil, err
		}
		d := next.Classroom
		setClock(&d.StartTime, ch.StartTime)
		setClock(&d.EndTime, ch.EndTime)
		if ch.Subtype != nil {
			d.Subtype = *ch.Subtype
		}
		if ch.StudentCount != nil {
			d.StudentCount = *ch.StudentCount
		}
		if err := validateWindow(d.StartTime, d.EndTime); err != nil {
			return nil, err
		}

	case next.OpenWater != nil:
		if err := notFor(next.Kind, field{ch.StartTime != nil, "start_time"}, field{ch.EndTime != nil, "end_time"}, field{ch.Lane != nil, "lane"}); err != nil {
			return nil, err
		}
		d := next.OpenWater
		if ch.TimePeriod != nil {
			if !ch.TimePeriod.Valid() {
				return nil, domain.InvalidRequest("time period must be AM or PM")
			}
			d.TimePeriod = *ch.TimePeriod
		}
		if ch.DepthMeters != nil {
			if *ch.DepthMeters <= 0 {
				return nil, domain.InvalidRequest("depth must be positive")
			}
			d.DepthMeters = domain.IntPtr(*ch.DepthMeters)
		}
		if ch.Equipment != nil {
			d.Equipment = *ch.Equipment
		}
		if ch.Subtype != nil {
			d.Subtype = *ch.Subtype
		}
		if ch.StudentCount != nil {
			d.StudentCount = *ch.StudentCount
		}
	}

	if !next.Subtype().ValidFor(next.Kind) {
		return nil, domain.InvalidRequest("%q is not a %s subtype", next.Subtype(), next.Kind.Label())
	}
	if next.StudentCount() < 0 {
		return nil, domain.InvalidRequest("student count cannot be negative")
	}
	return next, nil
}

func setClock(dst *domain.ClockTime, v *domain.ClockTime) {
	if v != nil {
		*dst = *v
	}
}

type field struct {
	set  bool
	name string
}

// notFor rejects the first set field that the kind does not have.
func notFor(k domain.Kind, fields ...field) error {
	for _, f := range fields {
		if f.set {
			return domain.InvalidRequest("%s cannot be set on a %s reservation", f.name, k.Label())
		}
	}
	return nil
}
