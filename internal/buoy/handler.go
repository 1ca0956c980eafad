package buoy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/api"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseSlot(date, period string) (time.Time, domain.TimePeriod, error) {
	day, err := api.ParseDate(date)
	if err != nil {
		return time.Time{}, "", err
	}
	p, err := api.ParsePeriod(period)
	if err != nil {
		return time.Time{}, "", err
	}
	return day, p, nil
}

// @Summary      List buoy groups of a slot
// @Tags         admin,buoys
// @Produce      json
// @Security     BearerAuth
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Param        time_period query string true "AM or PM"
// @Success      200 {array} domain.BuoyGroup
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/buoy-groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	day, period, err := parseSlot(c.Query("date"), c.Query("time_period"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	groups, err := h.service.ListSlotGroups(c.Request.Context(), day, period)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if groups == nil {
		groups = []domain.BuoyGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary      Recompute buoy groups
// @Description  Admin-only: rebuild the groups of one open-water slot now
// @Tags         admin,buoys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body buoy.SlotRequest true "Slot"
// @Success      200 {object} buoy.RecomputeResult
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/buoy-groups/recompute [post]
func (h *Handler) Recompute(c *gin.Context) {
	var req SlotRequest
	if !api.BindJSON(c, &req) {
		return
	}
	day, period, err := parseSlot(req.Date, req.TimePeriod)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.Recompute(c.Request.Context(), day, period)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Lock slot assignments
// @Description  Admin-only: pin every grouped diver to their current buoy
// @Tags         admin,buoys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body buoy.SlotRequest true "Slot"
// @Success      200 {object} buoy.LockResponse
// @Router       /admin/buoy-groups/lock [post]
func (h *Handler) Lock(c *gin.Context) {
	var req SlotRequest
	if !api.BindJSON(c, &req) {
		return
	}
	day, period, err := parseSlot(req.Date, req.TimePeriod)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	pinned, err := h.service.Lock(c.Request.Context(), day, period)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LockResponse{Pinned: pinned})
}

// @Summary      Unlock slot assignments
// @Description  Admin-only: clear pins and regroup the slot
// @Tags         admin,buoys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body buoy.SlotRequest true "Slot"
// @Success      200 {object} buoy.RecomputeResult
// @Router       /admin/buoy-groups/unlock [post]
func (h *Handler) Unlock(c *gin.Context) {
	var req SlotRequest
	if !api.BindJSON(c, &req) {
		return
	}
	day, period, err := parseSlot(req.Date, req.TimePeriod)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.Unlock(c.Request.Context(), day, period)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Assign a boat to a buoy group
// @Tags         admin,buoys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body buoy.BoatRequest true "Boat assignment"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/buoy-groups/boat [post]
func (h *Handler) AssignBoat(c *gin.Context) {
	var req BoatRequest
	if !api.BindJSON(c, &req) {
		return
	}
	day, period, err := parseSlot(req.Date, req.TimePeriod)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	if err := h.service.AssignBoat(c.Request.Context(), day, period, req.BuoyName, req.Boat); err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Boat assigned"})
}

// @Summary      Move a reservation to a buoy
// @Description  Admin-only: place one open-water reservation on a buoy and pin it there
// @Tags         admin,buoys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Param        request body buoy.MoveRequest true "Target buoy"
// @Success      200 {object} buoy.MoveResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/reservations/{id}/buoy [post]
func (h *Handler) MoveToBuoy(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	var req MoveRequest
	if !api.BindJSON(c, &req) {
		return
	}

	groupID, err := h.service.MoveToBuoy(c.Request.Context(), id, req.BuoyName)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MoveResponse{GroupID: groupID})
}
