package buoy

type SlotRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02" example:"2026-10-20"`
	TimePeriod string `json:"time_period" validate:"required,oneof=AM PM" example:"AM"`
}

type BoatRequest struct {
	SlotRequest
	BuoyName string `json:"buoy_name" validate:"required" example:"B3"`
	Boat     string `json:"boat" example:"Banca 1"`
}

type MoveRequest struct {
	BuoyName string `json:"buoy_name" validate:"required" example:"B3"`
}

type MoveResponse struct {
	GroupID int `json:"group_id" example:"42"`
}

type LockResponse struct {
	Pinned int64 `json:"pinned" example:"6"`
}
