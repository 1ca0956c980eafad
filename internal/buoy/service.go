package buoy

import (
	"context"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/metrics"
)

type RecomputeResult struct {
	GroupsCreated int                `json:"groups_created"`
	Groups        []domain.BuoyGroup `json:"groups"`
	Skipped       []Skipped          `json:"skipped"`
}

type Service interface {
	Recompute(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error)
	MoveToBuoy(ctx context.Context, reservationID int, buoyName string) (int, error)
	Lock(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error)
	Unlock(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error)
	ListSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod) ([]domain.BuoyGroup, error)
	AssignBoat(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName, boat string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Recompute rebuilds every group of the slot in one transaction.
func (s *service) Recompute(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error) {
	var result *RecomputeResult
	err := s.repo.WithSlotLock(ctx, day, period, func(repo Repository) error {
		var err error
		result, err = recompute(ctx, repo, day, period)
		return err
	})
	if err != nil {
		metrics.RecordRecompute("error", 0)
		return nil, err
	}

	metrics.RecordRecompute("success", len(result.Skipped))
	for _, sk := range result.Skipped {
		logger.Warn("buoy group skipped",
			"date", day.Format(domain.DateLayout),
			"period", period,
			"reservation_ids", sk.ReservationIDs,
			"max_depth", sk.MaxDepth,
			"reason", sk.Reason,
		)
	}
	return result, nil
}

func recompute(ctx context.Context, repo Repository, day time.Time, period domain.TimePeriod) (*RecomputeResult, error) {
	buoys, err := repo.ListBuoys(ctx)
	if err != nil {
		return nil, err
	}
	divers, err := repo.ListSlotDivers(ctx, day, period)
	if err != nil {
		return nil, err
	}

	plan := Build(divers, buoys)
	groups, err := repo.ReplaceSlotGroups(ctx, day, period, plan.Groups)
	if err != nil {
		return nil, err
	}

	skipped := plan.Skipped
	if skipped == nil {
		skipped = []Skipped{}
	}
	return &RecomputeResult{GroupsCreated: len(groups), Groups: groups, Skipped: skipped}, nil
}

// MoveToBuoy places one reservation on a buoy without reclustering and
// pins it there so the next recompute keeps it.
func (s *service) MoveToBuoy(ctx context.Context, reservationID int, buoyName string) (int, error) {
	ref, err := s.repo.GetReservationSlot(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	if !ref.Status.Active() {
		return 0, domain.InvalidTransition("a %s reservation cannot be placed on a buoy", ref.Status)
	}

	b, err := s.repo.GetBuoy(ctx, buoyName)
	if err != nil {
		return 0, err
	}
	if b == nil {
		return 0, domain.InvalidRequest("unknown buoy %q", buoyName)
	}

	var groupID int
	err = s.repo.WithSlotLock(ctx, ref.Date, ref.TimePeriod, func(repo Repository) error {
		g, err := repo.FindOrCreateGroup(ctx, ref.Date, ref.TimePeriod, b.Name)
		if err != nil {
			return err
		}
		name := b.Name
		if err := repo.AssignReservation(ctx, reservationID, g.ID, &name); err != nil {
			return err
		}
		groupID = g.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("reservation moved to buoy", "reservation_id", reservationID, "buoy", b.Name, "group_id", groupID)
	return groupID, nil
}

// Lock pins every grouped reservation of the slot to its current buoy.
func (s *service) Lock(ctx context.Context, day time.Time, period domain.TimePeriod) (int64, error) {
	var pinned int64
	err := s.repo.WithSlotLock(ctx, day, period, func(repo Repository) error {
		var err error
		pinned, err = repo.PinSlot(ctx, day, period)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Info("slot assignments locked", "date", day.Format(domain.DateLayout), "period", period, "pinned", pinned)
	return pinned, nil
}

// Unlock clears the slot's pins and reclusters it.
func (s *service) Unlock(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error) {
	var result *RecomputeResult
	err := s.repo.WithSlotLock(ctx, day, period, func(repo Repository) error {
		if _, err := repo.UnpinSlot(ctx, day, period); err != nil {
			return err
		}
		var err error
		result, err = recompute(ctx, repo, day, period)
		return err
	})
	if err != nil {
		metrics.RecordRecompute("error", 0)
		return nil, err
	}
	metrics.RecordRecompute("success", len(result.Skipped))
	return result, nil
}

func (s *service) ListSlotGroups(ctx context.Context, day time.Time, period domain.TimePeriod) ([]domain.BuoyGroup, error) {
	return s.repo.ListSlotGroups(ctx, day, period)
}

// AssignBoat sets the boat of the group on buoyName. An empty boat clears it.
func (s *service) AssignBoat(ctx context.Context, day time.Time, period domain.TimePeriod, buoyName, boat string) error {
	var value *string
	if boat != "" {
		value = &boat
	}
	return s.repo.SetBoat(ctx, day, period, buoyName, value)
}
