package buoy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/metrics"
)

const (
	queueKey   = "buoy:recompute:queue"
	pendingKey = "buoy:recompute:pending"
	touchedKey = "buoy:recompute:touched"

	popTimeout = 2 * time.Second
)

type Recomputer interface {
	Recompute(ctx context.Context, day time.Time, period domain.TimePeriod) (*RecomputeResult, error)
}

// Queue serializes recompute requests through redis. A slot that is
// already waiting is not queued twice, so a burst of edits collapses into
// one pass.
type Queue struct {
	redis    *redis.Client
	svc      Recomputer
	interval time.Duration
	window   time.Duration
	now      func() time.Time
}

func NewQueue(client *redis.Client, svc Recomputer, interval, window time.Duration) *Queue {
	return &Queue{
		redis:    client,
		svc:      svc,
		interval: interval,
		window:   window,
		now:      time.Now,
	}
}

func slotKey(day time.Time, period domain.TimePeriod) string {
	return day.Format(domain.DateLayout) + ":" + string(period)
}

func parseSlotKey(key string) (time.Time, domain.TimePeriod, error) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return time.Time{}, "", fmt.Errorf("malformed slot key %q", key)
	}
	day, err := time.Parse(domain.DateLayout, key[:i])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed slot key %q: %w", key, err)
	}
	period := domain.TimePeriod(key[i+1:])
	if !period.Valid() {
		return time.Time{}, "", fmt.Errorf("malformed slot key %q", key)
	}
	return day, period, nil
}

// Trigger asks for the slot to be regrouped and records it for the
// periodic sweep.
func (q *Queue) Trigger(ctx context.Context, day time.Time, period domain.TimePeriod) error {
	key := slotKey(day, period)

	touched := redis.Z{Score: float64(q.now().Unix()), Member: key}
	if err := q.redis.ZAdd(ctx, touchedKey, touched).Err(); err != nil {
		return fmt.Errorf("record touched slot: %w", err)
	}
	return q.enqueue(ctx, key)
}

func (q *Queue) enqueue(ctx context.Context, key string) error {
	added, err := q.redis.SAdd(ctx, pendingKey, key).Result()
	if err != nil {
		return fmt.Errorf("mark slot pending: %w", err)
	}
	if added == 0 {
		return nil
	}

	if err := q.redis.LPush(ctx, queueKey, key).Err(); err != nil {
		q.redis.SRem(ctx, pendingKey, key)
		return fmt.Errorf("queue slot: %w", err)
	}
	logger.Debug("buoy recompute queued", "slot", key)
	return nil
}

func (q *Queue) Start(ctx context.Context) {
	logger.Info("Buoy recompute worker started")

	go q.sweepLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Buoy recompute worker stopped")
			return
		default:
		}

		if _, err := q.processNext(ctx, popTimeout); err != nil && ctx.Err() == nil {
			logger.Error("recompute queue read failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// processNext pops one slot and regroups it. The pending marker is removed
// before the run so edits landing mid-run queue a fresh pass.
func (q *Queue) processNext(ctx context.Context, timeout time.Duration) (bool, error) {
	result, err := q.redis.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	key := result[1]
	if err := q.redis.SRem(ctx, pendingKey, key).Err(); err != nil {
		logger.Warn("failed to clear pending slot marker", "slot", key, "error", err)
	}

	day, period, err := parseSlotKey(key)
	if err != nil {
		logger.Error("dropping recompute request", "error", err)
		return true, nil
	}

	res, err := q.svc.Recompute(ctx, day, period)
	if err != nil {
		logger.Error("buoy recompute failed", "slot", key, "error", err)
		return true, nil
	}
	logger.Info("buoy groups recomputed", "slot", key, "groups", res.GroupsCreated, "skipped", len(res.Skipped))
	return true, nil
}

func (q *Queue) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := q.Sweep(ctx); err != nil && ctx.Err() == nil {
				logger.Error("recompute sweep failed", "error", err)
			}
		}
	}
}

// Sweep re-queues slots touched within the window and forgets older ones.
func (q *Queue) Sweep(ctx context.Context) error {
	since := strconv.FormatInt(q.now().Add(-q.window).Unix(), 10)

	if err := q.redis.ZRemRangeByScore(ctx, touchedKey, "-inf", "("+since).Err(); err != nil {
		return fmt.Errorf("trim touched slots: %w", err)
	}

	keys, err := q.redis.ZRangeByScore(ctx, touchedKey, &redis.ZRangeBy{Min: since, Max: "+inf"}).Result()
	if err != nil {
		return fmt.Errorf("read touched slots: %w", err)
	}
	for _, key := range keys {
		if err := q.enqueue(ctx, key); err != nil {
			return err
		}
	}

	metrics.SetRecomputeQueueLength(q.QueueLength(ctx))
	return nil
}

func (q *Queue) QueueLength(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, queueKey).Result()
	return length
}
