package buoy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type MockService struct{ mock.Mock }

func (m *MockService) Recompute(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error) {
	args := m.Called(ctx, day, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecomputeResult), args.Error(1)
}

func (m *MockService) MoveToBuoy(ctx context.Context, reservationID int, buoyName string) (int, error) {
	args := m.Called(ctx, reservationID, buoyName)
	return args.Int(0), args.Error(1)
}

func (m *MockService) Lock(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error) {
	args := m.Called(ctx, day, period)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Unlock(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error) {
	args := m.Called(ctx, day, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecomputeResult), args.Error(1)
}

func (m *MockService) ListSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod) ([]domain.BuoyGroup, error) {
	args := m.Called(ctx, day, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BuoyGroup), args.Error(1)
}

func (m *MockService) AssignBoat(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName, boat string) error {
	return m.Called(ctx, day, period, buoyName, boat).Error(0)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.GET("/admin/buoy-groups", h.ListGroups)
	r.POST("/admin/buoy-groups/recompute", h.Recompute)
	r.POST("/admin/buoy-groups/lock", h.Lock)
	r.POST("/admin/buoy-groups/unlock", h.Unlock)
	r.POST("/admin/buoy-groups/boat", h.AssignBoat)
	r.POST("/admin/reservations/:id/buoy", h.MoveToBuoy)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecomputeHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Recompute", mock.Anything, slotDay, domain.PeriodAM).Return(&RecomputeResult{
		GroupsCreated: 2,
		Skipped:       []Skipped{{ReservationIDs: []int{9}, MaxDepth: 80, Reason: ReasonNoBuoy}},
	}, nil)

	w := doJSON(setupRouter(svc), http.MethodPost, "/admin/buoy-groups/recompute", `{"date":"2026-10-20","time_period":"AM"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body RecomputeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.GroupsCreated)
	assert.Equal(t, ReasonNoBuoy, body.Skipped[0].Reason)
}

func TestRecomputeHandlerValidation(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/admin/buoy-groups/recompute", `{"date":"20-10-2026","time_period":"AM"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/buoy-groups/recompute", `{"date":"2026-10-20","time_period":"NOON"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything, mock.Anything)
}

func TestListGroupsHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("ListSlotGroups", mock.Anything, slotDay, domain.PeriodPM).Return(nil, nil)

	w := doJSON(setupRouter(svc), http.MethodGet, "/admin/buoy-groups?date=2026-10-20&time_period=PM", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLockHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Lock", mock.Anything, slotDay, domain.PeriodAM).Return(int64(6), nil)

	w := doJSON(setupRouter(svc), http.MethodPost, "/admin/buoy-groups/lock", `{"date":"2026-10-20","time_period":"AM"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pinned":6}`, w.Body.String())
}

func TestAssignBoatHandlerNotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("AssignBoat", mock.Anything, slotDay, domain.PeriodAM, "B9", "Banca 2").
		Return(&domain.Error{Code: domain.CodeNotFound, Message: "no group on buoy B9 for this slot"})

	w := doJSON(setupRouter(svc), http.MethodPost, "/admin/buoy-groups/boat",
		`{"date":"2026-10-20","time_period":"AM","buoy_name":"B9","boat":"Banca 2"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no group on buoy B9")
}

func TestMoveToBuoyHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("MoveToBuoy", mock.Anything, 5, "B2").Return(9, nil)
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/admin/reservations/5/buoy", `{"buoy_name":"B2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"group_id":9}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/admin/reservations/abc/buoy", `{"buoy_name":"B2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/reservations/5/buoy", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
