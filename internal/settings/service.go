// Package settings resolves the facility rules and availability overrides
// that apply to a booking.
package settings

import (
	"context"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type Service interface {
	Effective(ctx context.Context, at time.Time) (domain.Settings, error)
	CheckAvailability(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Effective falls back to the built-in defaults when no row has been published yet.
func (s *service) Effective(ctx context.Context, at time.Time) (domain.Settings, error) {
	row, err := s.repo.Effective(ctx, at)
	if err != nil {
		return domain.Settings{}, err
	}
	if row == nil {
		return domain.DefaultSettings(), nil
	}
	return *row, nil
}

// CheckAvailability returns an Unavailable error when an override closes the day.
// Days without an override are open.
func (s *service) CheckAvailability(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) error {
	o, err := s.repo.Override(ctx, day, kind, subtype)
	if err != nil {
		return err
	}
	if o == nil || o.Available {
		return nil
	}

	reason := ""
	if o.Reason != nil {
		reason = *o.Reason
	}
	return domain.Unavailable(kind, day, reason)
}
