package settings

import (
	"context"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type Repository interface {
	// Effective returns the settings row in force at the instant, or nil if none exists.
	Effective(ctx context.Context, at time.Time) (*domain.Settings, error)
	// Override returns the most specific availability override for the day, or nil.
	Override(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) (*domain.AvailabilityOverride, error)
}
