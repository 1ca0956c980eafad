package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
)

func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidRequest:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeCapacityExceeded, domain.CodeDuplicateReservation, domain.CodeConflictingReservation:
		return http.StatusConflict
	case domain.CodeCutoffExpired, domain.CodeOutsideLeadTime, domain.CodeUnavailable, domain.CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes typed rejections as-is and hides everything else
// behind a 500.
func RespondError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.JSON(StatusFor(de.Code), de)
		return
	}

	logger.Error("request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.InvalidRequest("date must look like 2006-01-02, got %q", s)
	}
	return t, nil
}

func ParsePeriod(s string) (domain.TimePeriod, error) {
	p := domain.TimePeriod(s)
	if !p.Valid() {
		return "", domain.InvalidRequest("time period must be AM or PM, got %q", s)
	}
	return p, nil
}
