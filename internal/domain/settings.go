package domain

import "time"

// Settings is one effective-dated row of facility rules. The latest row
// at or before a reference instant applies.
type Settings struct {
	ID            int       `db:"id" json:"id"`
	EffectiveFrom time.Time `db:"effective_from" json:"effective_from"`

	ReservationCutOffTimeOW       ClockTime `db:"ow_cutoff_time" json:"ow_cutoff_time"`
	ReservationCutOffMinutesPool  int       `db:"pool_cutoff_minutes" json:"pool_cutoff_minutes"`
	ReservationCutOffMinutesClass int       `db:"classroom_cutoff_minutes" json:"classroom_cutoff_minutes"`
	CancelationCutOffMinutesPool  int       `db:"pool_cancel_minutes" json:"pool_cancel_minutes"`
	CancelationCutOffMinutesClass int       `db:"classroom_cancel_minutes" json:"classroom_cancel_minutes"`
	CancelationCutOffMinutesOW    int       `db:"ow_cancel_minutes" json:"ow_cancel_minutes"`
	ReservationLeadTimeDays       int       `db:"lead_time_days" json:"lead_time_days"`
	PoolPriceCents                int64     `db:"pool_price_cents" json:"pool_price_cents"`
	ClassroomPriceCents           int64     `db:"classroom_price_cents" json:"classroom_price_cents"`
	OpenWaterPriceCents           int64     `db:"ow_price_cents" json:"ow_price_cents"`
}

func DefaultSettings() Settings {
	return Settings{
		ReservationCutOffTimeOW:       NewClockTime(18, 0),
		ReservationCutOffMinutesPool:  30,
		ReservationCutOffMinutesClass: 30,
		CancelationCutOffMinutesPool:  60,
		CancelationCutOffMinutesClass: 60,
		CancelationCutOffMinutesOW:    60,
		ReservationLeadTimeDays:       30,
	}
}

func (s Settings) CutOffMinutes(k Kind) int {
	if k == KindClassroom {
		return s.ReservationCutOffMinutesClass
	}
	return s.ReservationCutOffMinutesPool
}

func (s Settings) CancelMinutes(k Kind) int {
	switch k {
	case KindClassroom:
		return s.CancelationCutOffMinutesClass
	case KindOpenWater:
		return s.CancelationCutOffMinutesOW
	}
	return s.CancelationCutOffMinutesPool
}

func (s Settings) PriceCents(k Kind) int64 {
	switch k {
	case KindClassroom:
		return s.ClassroomPriceCents
	case KindOpenWater:
		return s.OpenWaterPriceCents
	}
	return s.PoolPriceCents
}

// AvailabilityOverride blocks or opens a date for a kind, optionally a single subtype.
type AvailabilityOverride struct {
	ID        int       `db:"id" json:"id"`
	Date      time.Time `db:"res_date" json:"date"`
	Category  Kind      `db:"category" json:"category"`
	Subtype   *Subtype  `db:"subtype" json:"subtype,omitempty"`
	Available bool      `db:"available" json:"available"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
}
