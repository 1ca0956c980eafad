package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Effective(ctx context.Context, at time.Time) (*domain.Settings, error) {
	query := `
		SELECT id, effective_from, ow_cutoff_time, pool_cutoff_minutes, classroom_cutoff_minutes,
		       pool_cancel_minutes, classroom_cancel_minutes, ow_cancel_minutes, lead_time_days,
		       pool_price_cents, classroom_price_cents, ow_price_cents
		FROM settings
		WHERE effective_from <= $1
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var s domain.Settings
	err := r.db.GetContext(ctx, &s, query, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get effective settings: %w", err)
	}

	return &s, nil
}

// Override prefers a subtype-specific row over a kind-wide one.
func (r *repository) Override(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) (*domain.AvailabilityOverride, error) {
	query := `
		SELECT id, res_date, category, subtype, available, reason
		FROM availability_overrides
		WHERE res_date = $1 AND category = $2 AND (subtype = $3 OR subtype IS NULL)
		ORDER BY subtype NULLS LAST, id DESC
		LIMIT 1
	`

	var o domain.AvailabilityOverride
	err := r.db.GetContext(ctx, &o, query, day.Format(domain.DateLayout), kind, subtype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get availability override: %w", err)
	}

	return &o, nil
}
