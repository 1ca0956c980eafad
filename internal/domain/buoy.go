package domain

import "time"

type Buoy struct {
	Name        string `db:"name" json:"name"`
	MaxDepth    int    `db:"max_depth" json:"max_depth"`
	Pulley      bool   `db:"pulley" json:"pulley"`
	BottomPlate bool   `db:"bottom_plate" json:"bottom_plate"`
	LargeBuoy   bool   `db:"large_buoy" json:"large_buoy"`
}

type BuoyGroup struct {
	ID             int        `db:"id" json:"id"`
	Date           time.Time  `db:"res_date" json:"date"`
	TimePeriod     TimePeriod `db:"time_period" json:"time_period"`
	BuoyName       string     `db:"buoy_name" json:"buoy_name"`
	Boat           *string    `db:"boat" json:"boat,omitempty"`
	Subtype        *Subtype   `db:"subtype" json:"subtype,omitempty"`
	ReservationIDs []int      `db:"-" json:"reservation_ids"`
}
