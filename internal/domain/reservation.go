package domain

import "time"

type Kind string

const (
	KindPool      Kind = "pool"
	KindClassroom Kind = "classroom"
	KindOpenWater Kind = "open_water"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPool, KindClassroom, KindOpenWater:
		return true
	}
	return false
}

func (k Kind) Label() string {
	switch k {
	case KindPool:
		return "pool"
	case KindClassroom:
		return "classroom"
	case KindOpenWater:
		return "open water"
	}
	return string(k)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses hold a resource and count against capacity.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Subtype string

const (
	SubtypeAutonomous            Subtype = "autonomous"
	SubtypeCourseCoaching        Subtype = "course_coaching"
	SubtypeAutonomousBuoy        Subtype = "autonomous_buoy"
	SubtypeAutonomousPlatform    Subtype = "autonomous_platform"
	SubtypeAutonomousPlatformCBS Subtype = "autonomous_platform_cbs"
)

// ValidFor reports whether the subtype exists for the given kind.
func (s Subtype) ValidFor(k Kind) bool {
	switch k {
	case KindPool, KindClassroom:
		return s == SubtypeAutonomous || s == SubtypeCourseCoaching
	case KindOpenWater:
		switch s {
		case SubtypeCourseCoaching, SubtypeAutonomousBuoy, SubtypeAutonomousPlatform, SubtypeAutonomousPlatformCBS:
			return true
		}
	}
	return false
}

type TimePeriod string

const (
	PeriodAM TimePeriod = "AM"
	PeriodPM TimePeriod = "PM"
)

func (p TimePeriod) Valid() bool {
	return p == PeriodAM || p == PeriodPM
}

// Anchor is the fixed clock time an open-water period starts at.
func (p TimePeriod) Anchor() ClockTime {
	if p == PeriodPM {
		return NewClockTime(13, 0)
	}
	return NewClockTime(8, 0)
}

type Equipment struct {
	Pulley      bool `db:"pulley" json:"pulley"`
	BottomPlate bool `db:"bottom_plate" json:"bottom_plate"`
	LargeBuoy   bool `db:"large_buoy" json:"large_buoy"`
}

type PoolDetail struct {
	StartTime    ClockTime `json:"start_time"`
	EndTime      ClockTime `json:"end_time"`
	Lane         *int      `json:"lane,omitempty"`
	Subtype      Subtype   `json:"subtype"`
	StudentCount int       `json:"student_count"`
	BuddyGroupID *int      `json:"buddy_group_id,omitempty"`
}

type ClassroomDetail struct {
	StartTime    ClockTime `json:"start_time"`
	EndTime      ClockTime `json:"end_time"`
	Room         *int      `json:"room,omitempty"`
	Subtype      Subtype   `json:"subtype"`
	StudentCount int       `json:"student_count"`
	BuddyGroupID *int      `json:"buddy_group_id,omitempty"`
}

type OpenWaterDetail struct {
	TimePeriod   TimePeriod `json:"time_period"`
	DepthMeters  *int       `json:"depth_m,omitempty"`
	Subtype      Subtype    `json:"subtype"`
	Equipment    Equipment  `json:"equipment"`
	StudentCount int        `json:"student_count"`
	GroupID      *int       `json:"group_id,omitempty"`
	PinnedBuoy   *string    `json:"pinned_buoy,omitempty"`
	BuddyGroupID *int       `json:"buddy_group_id,omitempty"`
}

type Reservation struct {
	ID         int       `json:"id"`
	OwnerID    int       `json:"owner_id"`
	Date       time.Time `json:"date"`
	Kind       Kind      `json:"kind"`
	Status     Status    `json:"status"`
	PriceCents int64     `json:"price_cents"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Pool      *PoolDetail      `json:"pool,omitempty"`
	Classroom *ClassroomDetail `json:"classroom,omitempty"`
	OpenWater *OpenWaterDetail `json:"open_water,omitempty"`
}

// SlotTime is the computed start used for duplicate and conflict detection.
func (r *Reservation) SlotTime() ClockTime {
	switch {
	case r.Pool != nil:
		return r.Pool.StartTime
	case r.Classroom != nil:
		return r.Classroom.StartTime
	case r.OpenWater != nil:
		return r.OpenWater.TimePeriod.Anchor()
	}
	return 0
}

func (r *Reservation) Subtype() Subtype {
	switch {
	case r.Pool != nil:
		return r.Pool.Subtype
	case r.Classroom != nil:
		return r.Classroom.Subtype
	case r.OpenWater != nil:
		return r.OpenWater.Subtype
	}
	return ""
}

func (r *Reservation) StudentCount() int {
	switch {
	case r.Pool != nil:
		return r.Pool.StudentCount
	case r.Classroom != nil:
		return r.Classroom.StudentCount
	case r.OpenWater != nil:
		return r.OpenWater.StudentCount
	}
	return 0
}

func (r *Reservation) BuddyGroupID() *int {
	switch {
	case r.Pool != nil:
		return r.Pool.BuddyGroupID
	case r.Classroom != nil:
		return r.Classroom.BuddyGroupID
	case r.OpenWater != nil:
		return r.OpenWater.BuddyGroupID
	}
	return nil
}

func (r *Reservation) SetBuddyGroupID(id *int) {
	switch {
	case r.Pool != nil:
		r.Pool.BuddyGroupID = id
	case r.Classroom != nil:
		r.Classroom.BuddyGroupID = id
	case r.OpenWater != nil:
		r.OpenWater.BuddyGroupID = id
	}
}

// ClearAssignment releases the lane, room or buoy held by the reservation.
func (r *Reservation) ClearAssignment() {
	switch {
	case r.Pool != nil:
		r.Pool.Lane = nil
	case r.Classroom != nil:
		r.Classroom.Room = nil
	case r.OpenWater != nil:
		r.OpenWater.GroupID = nil
		r.OpenWater.PinnedBuoy = nil
	}
}

// Clone returns a deep copy so callers can stage edits.
func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.Pool != nil {
		p := *r.Pool
		p.Lane = cloneInt(r.Pool.Lane)
		p.BuddyGroupID = cloneInt(r.Pool.BuddyGroupID)
		c.Pool = &p
	}
	if r.Classroom != nil {
		cl := *r.Classroom
		cl.Room = cloneInt(r.Classroom.Room)
		cl.BuddyGroupID = cloneInt(r.Classroom.BuddyGroupID)
		c.Classroom = &cl
	}
	if r.OpenWater != nil {
		ow := *r.OpenWater
		ow.DepthMeters = cloneInt(r.OpenWater.DepthMeters)
		ow.GroupID = cloneInt(r.OpenWater.GroupID)
		ow.BuddyGroupID = cloneInt(r.OpenWater.BuddyGroupID)
		if r.OpenWater.PinnedBuoy != nil {
			name := *r.OpenWater.PinnedBuoy
			ow.PinnedBuoy = &name
		}
		c.OpenWater = &ow
	}
	return &c
}

// Describe renders the booking for user-facing conflict messages.
func (r *Reservation) Describe() string {
	desc := r.Kind.Label() + " reservation on " + r.Date.Format(DateLayout)
	switch {
	case r.Pool != nil:
		desc += " " + r.Pool.StartTime.String() + "-" + r.Pool.EndTime.String()
	case r.Classroom != nil:
		desc += " " + r.Classroom.StartTime.String() + "-" + r.Classroom.EndTime.String()
	case r.OpenWater != nil:
		desc += " " + string(r.OpenWater.TimePeriod)
	}
	return desc
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func IntPtr(v int) *int { return &v }

type BuddyMemberStatus string

const (
	BuddyAccepted BuddyMemberStatus = "accepted"
	BuddyRemoved  BuddyMemberStatus = "removed"
)

type BuddyGroup struct {
	ID                     int           `db:"id" json:"id"`
	InitiatorReservationID int           `db:"initiator_reservation_id" json:"initiator_reservation_id"`
	Date                   time.Time     `db:"res_date" json:"date"`
	SlotTime               ClockTime     `db:"slot_time" json:"slot_time"`
	Kind                   Kind          `db:"kind" json:"kind"`
	Members                []BuddyMember `db:"-" json:"members"`
}

type BuddyMember struct {
	BuddyGroupID  int               `db:"buddy_group_id" json:"buddy_group_id"`
	UserID        int               `db:"user_id" json:"user_id"`
	ReservationID int               `db:"reservation_id" json:"reservation_id"`
	Status        BuddyMemberStatus `db:"status" json:"status"`
}
