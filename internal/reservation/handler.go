package reservation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/api"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/auth"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) (Actor, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return Actor{}, false
	}
	return Actor{UserID: userID, IsAdmin: auth.IsAdmin(c)}, true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid reservation id"})
		return 0, false
	}
	return id, true
}

func parseClock(field, s string) (domain.ClockTime, error) {
	ct, err := domain.ParseClockTime(s)
	if err != nil {
		return 0, domain.InvalidRequest("%s: %v", field, err)
	}
	return ct, nil
}

// toDraft converts the request into an unsaved reservation.
func toDraft(req CreateRequest) (domain.Reservation, error) {
	day, err := api.ParseDate(req.Date)
	if err != nil {
		return domain.Reservation{}, err
	}
	r := domain.Reservation{Kind: domain.Kind(req.Kind), Date: day, Note: req.Note}

	switch r.Kind {
	case domain.KindPool:
		if req.Pool == nil {
			return r, domain.InvalidRequest("pool details are required")
		}
		start, err := parseClock("start_time", req.Pool.StartTime)
		if err != nil {
			return r, err
		}
		end, err := parseClock("end_time", req.Pool.EndTime)
		if err != nil {
			return r, err
		}
		r.Pool = &domain.PoolDetail{
			StartTime:    start,
			EndTime:      end,
			Lane:         req.Pool.Lane,
			Subtype:      domain.Subtype(req.Pool.Subtype),
			StudentCount: req.Pool.StudentCount,
		}
	case domain.KindClassroom:
		if req.Classroom == nil {
			return r, domain.InvalidRequest("classroom details are required")
		}
		start, err := parseClock("start_time", req.Classroom.StartTime)
		if err != nil {
			return r, err
		}
		end, err := parseClock("end_time", req.Classroom.EndTime)
		if err != nil {
			return r, err
		}
		r.Classroom = &domain.ClassroomDetail{
			StartTime:    start,
			EndTime:      end,
			Subtype:      domain.Subtype(req.Classroom.Subtype),
			StudentCount: req.Classroom.StudentCount,
		}
	case domain.KindOpenWater:
		if req.OpenWater == nil {
			return r, domain.InvalidRequest("open water details are required")
		}
		r.OpenWater = &domain.OpenWaterDetail{
			TimePeriod:   domain.TimePeriod(req.OpenWater.TimePeriod),
			DepthMeters:  req.OpenWater.DepthMeters,
			Subtype:      domain.Subtype(req.OpenWater.Subtype),
			Equipment:    req.OpenWater.Equipment,
			StudentCount: req.OpenWater.StudentCount,
		}
	}
	return r, nil
}

func toChanges(req UpdateRequest) (Changes, error) {
	ch := Changes{
		StudentCount:  req.StudentCount,
		Lane:          req.Lane,
		DepthMeters:   req.DepthMeters,
		Equipment:     req.Equipment,
		Note:          req.Note,
		RemoveBuddies: req.RemoveBuddies,
	}
	if req.Date != nil {
		day, err := api.ParseDate(*req.Date)
		if err != nil {
			return ch, err
		}
		ch.Date = &day
	}
	if req.StartTime != nil {
		ct, err := parseClock("start_time", *req.StartTime)
		if err != nil {
			return ch, err
		}
		ch.StartTime = &ct
	}
	if req.EndTime != nil {
		ct, err := parseClock("end_time", *req.EndTime)
		if err != nil {
			return ch, err
		}
		ch.EndTime = &ct
	}
	if req.TimePeriod != nil {
		p, err := api.ParsePeriod(*req.TimePeriod)
		if err != nil {
			return ch, err
		}
		ch.TimePeriod = &p
	}
	if req.Subtype != nil {
		st := domain.Subtype(*req.Subtype)
		ch.Subtype = &st
	}
	return ch, nil
}

// @Summary      Create a reservation
// @Description  Book a pool lane, classroom or open-water slot, optionally with buddies
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reservation.CreateRequest true "Reservation"
// @Success      201 {object} reservation.CreateResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} domain.Error
// @Failure      422 {object} domain.Error
// @Router       /reservations [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req CreateRequest
	if !api.BindJSON(c, &req) {
		return
	}
	draft, err := toDraft(req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), actor, draft, req.Buddies)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary      List my reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} domain.Reservation
// @Router       /reservations [get]
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Success      200 {object} domain.Reservation
// @Failure      403 {object} domain.Error
// @Failure      404 {object} domain.Error
// @Router       /reservations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Update a reservation
// @Description  Allowed fields depend on how close the booking is
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Param        request body reservation.UpdateRequest true "Changes"
// @Success      200 {object} domain.Reservation
// @Failure      409 {object} domain.Error
// @Failure      422 {object} domain.Error
// @Router       /reservations/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if !api.BindJSON(c, &req) {
		return
	}
	ch, err := toChanges(req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), actor, id, ch)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Cancel a reservation
// @Description  Optionally cancels the listed buddies' bookings too
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Param        request body reservation.CancelRequest false "Buddies to cancel"
// @Success      200 {object} reservation.CancelResult
// @Failure      422 {object} domain.Error
// @Router       /reservations/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), actor, id, req.Buddies)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Approve a reservation
// @Tags         admin,reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Success      200 {object} domain.Reservation
// @Failure      409 {object} domain.Error
// @Failure      422 {object} domain.Error
// @Router       /admin/reservations/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	r, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Reject a reservation
// @Tags         admin,reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Reservation ID"
// @Success      200 {object} domain.Reservation
// @Failure      422 {object} domain.Error
// @Router       /admin/reservations/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	r, err := h.service.Reject(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
