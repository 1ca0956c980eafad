package reservation

import (
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

// Actor is the authenticated caller, trusted as-is.
type Actor struct {
	UserID  int
	IsAdmin bool
}

// Changes lists the fields an update touches; nil means unchanged.
type Changes struct {
	Date          *time.Time
	StartTime     *domain.ClockTime
	EndTime       *domain.ClockTime
	TimePeriod    *domain.TimePeriod
	Subtype       *domain.Subtype
	StudentCount  *int
	Lane          *int
	DepthMeters   *int
	Equipment     *domain.Equipment
	Note          *string
	Status        *domain.Status
	RemoveBuddies []int
}

type CreateResult struct {
	Reservation *domain.Reservation  `json:"reservation"`
	Buddies     []domain.Reservation `json:"buddies,omitempty"`
}

type CancelResult struct {
	Cancelled        bool  `json:"cancelled" example:"true"`
	SlotNowAvailable bool  `json:"slot_now_available" example:"true"`
	BuddiesCancelled []int `json:"buddies_cancelled,omitempty"`
}

type PoolRequest struct {
	StartTime    string `json:"start_time" validate:"required" example:"10:00"`
	EndTime      string `json:"end_time" validate:"required" example:"11:00"`
	Lane         *int   `json:"lane,omitempty" validate:"omitempty,min=1"`
	Subtype      string `json:"subtype" validate:"required,oneof=autonomous course_coaching"`
	StudentCount int    `json:"student_count" validate:"gte=0"`
}

type ClassroomRequest struct {
	StartTime    string `json:"start_time" validate:"required" example:"13:00"`
	EndTime      string `json:"end_time" validate:"required" example:"14:00"`
	Subtype      string `json:"subtype" validate:"required,oneof=autonomous course_coaching"`
	StudentCount int    `json:"student_count" validate:"gte=0"`
}

type OpenWaterRequest struct {
	TimePeriod   string           `json:"time_period" validate:"required,oneof=AM PM" example:"AM"`
	DepthMeters  *int             `json:"depth_m,omitempty" validate:"omitempty,gt=0" example:"30"`
	Subtype      string           `json:"subtype" validate:"required,oneof=course_coaching autonomous_buoy autonomous_platform autonomous_platform_cbs"`
	Equipment    domain.Equipment `json:"equipment"`
	StudentCount int              `json:"student_count" validate:"gte=0"`
}

type CreateRequest struct {
	Kind      string            `json:"kind" validate:"required,oneof=pool classroom open_water" example:"pool"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02" example:"2026-10-20"`
	Note      string            `json:"note,omitempty" validate:"max=500"`
	Buddies   []int             `json:"buddies,omitempty" validate:"dive,gt=0"`
	Pool      *PoolRequest      `json:"pool,omitempty"`
	Classroom *ClassroomRequest `json:"classroom,omitempty"`
	OpenWater *OpenWaterRequest `json:"open_water,omitempty"`
}

type UpdateRequest struct {
	Date          *string           `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string           `json:"start_time,omitempty"`
	EndTime       *string           `json:"end_time,omitempty"`
	TimePeriod    *string           `json:"time_period,omitempty" validate:"omitempty,oneof=AM PM"`
	Subtype       *string           `json:"subtype,omitempty"`
	StudentCount  *int              `json:"student_count,omitempty" validate:"omitempty,gte=0"`
	Lane          *int              `json:"lane,omitempty" validate:"omitempty,min=1"`
	DepthMeters   *int              `json:"depth_m,omitempty" validate:"omitempty,gt=0"`
	Equipment     *domain.Equipment `json:"equipment,omitempty"`
	Note          *string           `json:"note,omitempty" validate:"omitempty,max=500"`
	RemoveBuddies []int             `json:"remove_buddies,omitempty" validate:"dive,gt=0"`
}

type CancelRequest struct {
	Buddies []int `json:"buddies,omitempty" validate:"dive,gt=0"`
}
