package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/buoy"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/classroom"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/cutoff"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/db"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/metrics"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/pool"
)

// maxLinkedBuddies caps how many buddies an open-water booking links into
// its buddy group. Extra buddies still get their own reservation.
const maxLinkedBuddies = 2

// SettingsSource reads the effective settings and per-day overrides.
type SettingsSource interface {
	Effective(ctx context.Context, at time.Time) (domain.Settings, error)
	CheckAvailability(ctx context.Context, day time.Time, kind domain.Kind, subtype domain.Subtype) error
}

// GroupingTrigger schedules a buoy-group recompute for an open-water slot.
type GroupingTrigger interface {
	Trigger(ctx context.Context, day time.Time, period domain.TimePeriod) error
}

type Service interface {
	Create(ctx context.Context, actor Actor, draft domain.Reservation, buddyIDs []int) (*CreateResult, error)
	Update(ctx context.Context, actor Actor, id int, ch Changes) (*domain.Reservation, error)
	Approve(ctx context.Context, id int) (*domain.Reservation, error)
	Reject(ctx context.Context, id int) (*domain.Reservation, error)
	Cancel(ctx context.Context, actor Actor, id int, buddies []int) (*CancelResult, error)
	Get(ctx context.Context, actor Actor, id int) (*domain.Reservation, error)
	ListMine(ctx context.Context, actor Actor) ([]domain.Reservation, error)
}

type service struct {
	repo     Repository
	settings SettingsSource
	policy   *cutoff.Policy
	lanes    *pool.Allocator
	rooms    *classroom.Checker
	grouping GroupingTrigger
}

// NewService wires the lifecycle. grouping may be nil, in which case
// open-water groups are only rebuilt on demand.
func NewService(repo Repository, settings SettingsSource, policy *cutoff.Policy, lanes *pool.Allocator, rooms *classroom.Checker, grouping GroupingTrigger) Service {
	return &service{
		repo:     repo,
		settings: settings,
		policy:   policy,
		lanes:    lanes,
		rooms:    rooms,
		grouping: grouping,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, draft domain.Reservation, buddyIDs []int) (*CreateResult, error) {
	r := draft.Clone()
	r.ID = 0
	r.OwnerID = actor.UserID
	r.Date = domain.Day(r.Date)
	if err := validateDraft(r); err != nil {
		return nil, err
	}
	explicitLane := r.Pool != nil && r.Pool.Lane != nil
	if r.Classroom != nil {
		r.Classroom.Room = nil
	}
	if r.OpenWater != nil {
		r.OpenWater.GroupID = nil
		r.OpenWater.PinnedBuoy = nil
	}
	r.SetBuddyGroupID(nil)

	settings, err := s.settings.Effective(ctx, s.policy.Now())
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckCreation(settings, cutoff.SlotOf(r)); err != nil {
		return nil, err
	}
	if err := s.settings.CheckAvailability(ctx, r.Date, r.Kind, r.Subtype()); err != nil {
		return nil, err
	}
	buddies, err := buddyRules(r, buddyIDs)
	if err != nil {
		return nil, err
	}
	r.PriceCents = settings.PriceCents(r.Kind)

	keys := lockKeys(r)
	for _, uid := range buddies {
		keys = append(keys, memberSlotKey(uid, r.Date, r.SlotTime()))
	}

	result := &CreateResult{Reservation: r}
	err = s.repo.WithLock(ctx, keys, func(st Store) error {
		existing, err := st.ListActiveByDayKind(ctx, r.Date, r.Kind)
		if err != nil {
			return err
		}
		if err := s.allocate(r, existing, 0, explicitLane); err != nil {
			return err
		}
		if err := checkOwnerSlot(ctx, st, r, 0); err != nil {
			return err
		}
		plans, err := s.planBuddies(ctx, st, r, buddies, append(existing, *r))
		if err != nil {
			return err
		}

		if err := sweep(ctx, st, r.OwnerID, r.Date, r.SlotTime(), 0); err != nil {
			return err
		}
		if err := st.Insert(ctx, r); err != nil {
			return err
		}
		result.Buddies, err = writeBuddies(ctx, st, r, plans)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			metrics.RecordCapacityRejection(string(r.Kind))
		}
		return nil, err
	}

	metrics.RecordReservation(string(r.Kind), string(r.Status))
	logger.Info("reservation created",
		"reservation_id", r.ID,
		"owner_id", r.OwnerID,
		"kind", r.Kind,
		"date", r.Date.Format(domain.DateLayout),
		"status", r.Status,
		"buddies", len(result.Buddies),
	)
	s.triggerGrouping(ctx, r)
	return result, nil
}

// allocate places a pool or classroom booking and sets its initial status.
// Pool bookings confirm on placement. Classroom bookings confirm only when
// a room is free and otherwise wait for an admin.
func (s *service) allocate(r *domain.Reservation, existing []domain.Reservation, excludeID int, explicit bool) error {
	switch r.Kind {
	case domain.KindPool:
		lane, err := s.lanes.Resolve(pool.CandidateOf(r.Pool), existing, excludeID, explicit)
		if err != nil {
			return err
		}
		r.Pool.Lane = &lane
		r.Status = domain.StatusConfirmed
	case domain.KindClassroom:
		if err := s.rooms.CheckCapacity(existing, r.Classroom.StartTime, r.Classroom.EndTime, excludeID); err != nil {
			return err
		}
		r.Status = domain.StatusPending
		if room, err := s.rooms.AssignRoom(existing, r.Classroom.StartTime, r.Classroom.EndTime, excludeID); err == nil {
			r.Classroom.Room = &room
			r.Status = domain.StatusConfirmed
		}
	default:
		r.Status = domain.StatusPending
	}
	return nil
}

type buddyPlan struct {
	userID int
	// reuse is the buddy's own active booking at the slot, if any.
	reuse *domain.Reservation
	draft *domain.Reservation
	link  bool
}

// planBuddies validates every buddy booking before anything is written.
func (s *service) planBuddies(ctx context.Context, st Store, owner *domain.Reservation, ids []int, occupied []domain.Reservation) ([]buddyPlan, error) {
	plans := make([]buddyPlan, 0, len(ids))
	for i, uid := range ids {
		p := buddyPlan{
			userID: uid,
			link:   owner.Kind != domain.KindOpenWater || i < maxLinkedBuddies,
		}

		slot, err := st.ListOwnerSlot(ctx, uid, owner.Date, owner.SlotTime())
		if err != nil {
			return nil, err
		}
		for j := range slot {
			other := slot[j]
			if !other.Status.Active() {
				continue
			}
			if other.Kind != owner.Kind {
				return nil, domain.InvalidRequest("buddy %d already has a %s", uid, other.Describe())
			}
			p.reuse = &other
		}

		if p.reuse == nil {
			d := owner.Clone()
			d.OwnerID = uid
			d.ClearAssignment()
			d.SetBuddyGroupID(nil)
			if err := s.allocate(d, occupied, 0, false); err != nil {
				var de *domain.Error
				if errors.As(err, &de) {
					return nil, domain.CapacityExceeded("no room left for buddy: "+de.Message, de.BlockedLanes)
				}
				return nil, err
			}
			occupied = append(occupied, *d)
			p.draft = d
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// writeBuddies inserts the planned buddy bookings and links them to the
// initiator through a buddy group.
func writeBuddies(ctx context.Context, st Store, owner *domain.Reservation, plans []buddyPlan) ([]domain.Reservation, error) {
	if len(plans) == 0 {
		return nil, nil
	}

	all := make([]*domain.Reservation, 0, len(plans))
	var linked []*domain.Reservation
	for _, p := range plans {
		res := p.reuse
		if res == nil {
			if err := sweep(ctx, st, p.userID, owner.Date, owner.SlotTime(), 0); err != nil {
				return nil, err
			}
			if err := st.Insert(ctx, p.draft); err != nil {
				return nil, err
			}
			res = p.draft
		}
		all = append(all, res)
		if p.link {
			linked = append(linked, res)
		}
	}

	if len(linked) > 0 {
		g := &domain.BuddyGroup{
			InitiatorReservationID: owner.ID,
			Date:                   owner.Date,
			SlotTime:               owner.SlotTime(),
			Kind:                   owner.Kind,
		}
		for _, res := range linked {
			g.Members = append(g.Members, domain.BuddyMember{
				UserID:        res.OwnerID,
				ReservationID: res.ID,
				Status:        domain.BuddyAccepted,
			})
		}
		if err := st.CreateBuddyGroup(ctx, g); err != nil {
			return nil, err
		}

		owner.SetBuddyGroupID(domain.IntPtr(g.ID))
		if err := st.Update(ctx, owner); err != nil {
			return nil, err
		}
		for _, res := range linked {
			res.SetBuddyGroupID(domain.IntPtr(g.ID))
			if err := st.Update(ctx, res); err != nil {
				return nil, err
			}
		}
	}

	out := make([]domain.Reservation, 0, len(all))
	for _, res := range all {
		out = append(out, *res)
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id int, ch Changes) (*domain.Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current); err != nil {
		return nil, err
	}
	target, err := applyChanges(current, ch)
	if err != nil {
		return nil, err
	}

	var updated *domain.Reservation
	var before *domain.Reservation
	err = s.repo.WithLock(ctx, mergeKeys(lockKeys(current), lockKeys(target)), func(st Store) error {
		cur, err := st.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyChanges(cur, ch)
		if err != nil {
			return err
		}
		before = cur
		updated, err = s.update(ctx, st, actor, cur, next, ch)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			metrics.RecordCapacityRejection(string(current.Kind))
		}
		return nil, err
	}

	logger.Info("reservation updated",
		"reservation_id", updated.ID,
		"kind", updated.Kind,
		"status", updated.Status,
		"admin", actor.IsAdmin,
	)
	if updated.Status != before.Status {
		metrics.RecordReservation(string(updated.Kind), string(updated.Status))
	}
	s.triggerGrouping(ctx, before)
	if !before.Date.Equal(updated.Date) || before.SlotTime() != updated.SlotTime() {
		s.triggerGrouping(ctx, updated)
	}
	return updated, nil
}

func (s *service) update(ctx context.Context, st Store, actor Actor, cur, next *domain.Reservation, ch Changes) (*domain.Reservation, error) {
	if !cur.Status.Active() {
		return nil, domain.InvalidTransition("a %s reservation cannot be changed", cur.Status)
	}

	approving := false
	if ch.Status != nil {
		if !actor.IsAdmin {
			return nil, domain.ErrForbidden
		}
		if *ch.Status != domain.StatusConfirmed {
			return nil, domain.InvalidTransition("status can only be set to %s here", domain.StatusConfirmed)
		}
		if !canTransition(cur.Status, domain.StatusConfirmed) {
			return nil, domain.InvalidTransition("a %s reservation cannot be approved", cur.Status)
		}
		approving = true
	}

	e := diff(cur, next)
	if !actor.IsAdmin {
		settings, err := s.settings.Effective(ctx, s.policy.Now())
		if err != nil {
			return nil, err
		}
		if err := checkPhase(s.policy.EditPhase(settings, cutoff.SlotOf(cur)), e); err != nil {
			return nil, err
		}
		if e.movesSlot() {
			if err := s.policy.CheckCreation(settings, cutoff.SlotOf(next)); err != nil {
				return nil, err
			}
		}
	}
	if e.date || e.subtype {
		if err := s.settings.CheckAvailability(ctx, next.Date, next.Kind, next.Subtype()); err != nil {
			return nil, err
		}
	}

	if e.movesSlot() {
		if err := checkOwnerSlot(ctx, st, next, cur.ID); err != nil {
			return nil, err
		}
		if err := sweep(ctx, st, next.OwnerID, next.Date, next.SlotTime(), cur.ID); err != nil {
			return nil, err
		}
	}

	if err := s.reallocate(ctx, st, cur, next, e, approving); err != nil {
		return nil, err
	}
	if approving {
		next.Status = domain.StatusConfirmed
	}

	if len(ch.RemoveBuddies) > 0 {
		if err := removeBuddies(ctx, st, next, ch.RemoveBuddies); err != nil {
			return nil, err
		}
	}

	members, err := s.groupMembers(ctx, st, cur, e)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		propagate(next, m)
	}
	if !actor.IsAdmin && e.any() {
		cascadeToPending(next, members)
	}

	if err := st.Update(ctx, next); err != nil {
		return nil, err
	}
	for _, m := range members {
		if e.movesSlot() {
			if err := clearBuddySlot(ctx, st, m); err != nil {
				return nil, err
			}
		}
		if err := st.Update(ctx, m); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// clearBuddySlot readies the slot a buddy is moved into with the initiator.
// Another active booking of the buddy there blocks the move; cancelled and
// rejected rows are swept.
func clearBuddySlot(ctx context.Context, st Store, m *domain.Reservation) error {
	rows, err := st.ListOwnerSlot(ctx, m.OwnerID, m.Date, m.SlotTime())
	if err != nil {
		return err
	}
	for i := range rows {
		o := &rows[i]
		if o.ID == m.ID || !o.Status.Active() {
			continue
		}
		code := domain.CodeConflictingReservation
		if o.Kind == m.Kind {
			code = domain.CodeDuplicateReservation
		}
		return &domain.Error{Code: code, Message: fmt.Sprintf("buddy %d already has a %s", m.OwnerID, o.Describe())}
	}
	return sweep(ctx, st, m.OwnerID, m.Date, m.SlotTime(), m.ID)
}

// reallocate keeps the lane or room valid after an edit, and assigns one
// on approval when the booking has none yet.
func (s *service) reallocate(ctx context.Context, st Store, cur, next *domain.Reservation, e edit, approving bool) error {
	switch next.Kind {
	case domain.KindPool:
		reshaped := e.date || e.times || e.subtype || e.studentsUp || e.studentsDown || e.lane
		if !(reshaped || (approving && next.Pool.Lane == nil)) {
			return nil
		}
		existing, err := st.ListActiveByDayKind(ctx, next.Date, domain.KindPool)
		if err != nil {
			return err
		}
		lane, err := s.lanes.Resolve(pool.CandidateOf(next.Pool), existing, cur.ID, e.lane)
		if err != nil {
			return err
		}
		next.Pool.Lane = &lane

	case domain.KindClassroom:
		moved := e.date || e.times
		if !moved && !(approving && next.Classroom.Room == nil) {
			return nil
		}
		existing, err := st.ListActiveByDayKind(ctx, next.Date, domain.KindClassroom)
		if err != nil {
			return err
		}
		if moved {
			if err := s.rooms.CheckCapacity(existing, next.Classroom.StartTime, next.Classroom.EndTime, cur.ID); err != nil {
				return err
			}
		}
		if next.Status == domain.StatusConfirmed || approving {
			room, err := s.rooms.Reassign(existing, next.Classroom.StartTime, next.Classroom.EndTime, cur.ID, next.Classroom.Room)
			if err != nil {
				return err
			}
			next.Classroom.Room = &room
		} else {
			next.Classroom.Room = nil
		}

	case domain.KindOpenWater:
		if e.date || e.period {
			next.ClearAssignment()
		}
	}
	return nil
}

// groupMembers loads the accepted buddies of an open-water booking when
// its initiator edits shared fields.
func (s *service) groupMembers(ctx context.Context, st Store, cur *domain.Reservation, e edit) ([]*domain.Reservation, error) {
	if cur.Kind != domain.KindOpenWater || cur.BuddyGroupID() == nil || !e.any() {
		return nil, nil
	}
	g, err := st.GetBuddyGroup(ctx, *cur.BuddyGroupID())
	if err != nil {
		return nil, err
	}
	if g.InitiatorReservationID != cur.ID {
		return nil, nil
	}

	var members []*domain.Reservation
	for _, m := range g.Members {
		if m.Status != domain.BuddyAccepted || m.ReservationID == cur.ID {
			continue
		}
		res, err := st.GetByID(ctx, m.ReservationID)
		if err != nil {
			return nil, err
		}
		if res.Status.Active() {
			members = append(members, res)
		}
	}
	return members, nil
}

func removeBuddies(ctx context.Context, st Store, r *domain.Reservation, userIDs []int) error {
	gid := r.BuddyGroupID()
	if gid == nil {
		return domain.InvalidRequest("reservation %d has no buddies", r.ID)
	}
	g, err := st.GetBuddyGroup(ctx, *gid)
	if err != nil {
		return err
	}
	if g.InitiatorReservationID != r.ID {
		return domain.InvalidRequest("only the booking that added the buddies can remove them")
	}

	byUser := make(map[int]domain.BuddyMember, len(g.Members))
	for _, m := range g.Members {
		byUser[m.UserID] = m
	}
	for _, uid := range userIDs {
		if err := st.RemoveBuddyMember(ctx, g.ID, uid); err != nil {
			return err
		}
		m, ok := byUser[uid]
		if !ok {
			continue
		}
		res, err := st.GetByID(ctx, m.ReservationID)
		if err != nil {
			return err
		}
		res.SetBuddyGroupID(nil)
		if err := st.Update(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Approve(ctx context.Context, id int) (*domain.Reservation, error) {
	confirmed := domain.StatusConfirmed
	return s.Update(ctx, Actor{IsAdmin: true}, id, Changes{Status: &confirmed})
}

func (s *service) Reject(ctx context.Context, id int) (*domain.Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var rejected *domain.Reservation
	err = s.repo.WithLock(ctx, lockKeys(current), func(st Store) error {
		r, err := st.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canTransition(r.Status, domain.StatusRejected) {
			return domain.InvalidTransition("a %s reservation cannot be rejected", r.Status)
		}
		r.ClearAssignment()
		r.Status = domain.StatusRejected
		rejected = r
		return st.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReservation(string(rejected.Kind), string(rejected.Status))
	logger.Info("reservation rejected", "reservation_id", rejected.ID, "kind", rejected.Kind)
	s.triggerGrouping(ctx, rejected)
	return rejected, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id int, buddies []int) (*CancelResult, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current); err != nil {
		return nil, err
	}
	if !canTransition(current.Status, domain.StatusCancelled) {
		return nil, domain.InvalidTransition("reservation is already %s", current.Status)
	}
	if !actor.IsAdmin {
		settings, err := s.settings.Effective(ctx, s.policy.Now())
		if err != nil {
			return nil, err
		}
		if err := s.policy.CheckCancellation(settings, cutoff.SlotOf(current)); err != nil {
			return nil, err
		}
	}

	result := &CancelResult{}
	err = s.repo.WithLock(ctx, lockKeys(current), func(st Store) error {
		r, err := st.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canTransition(r.Status, domain.StatusCancelled) {
			return domain.InvalidTransition("reservation is already %s", r.Status)
		}
		cancel(r)
		if err := st.Update(ctx, r); err != nil {
			return err
		}
		result.Cancelled = true

		result.BuddiesCancelled, err = cancelBuddies(ctx, st, r, buddies)
		if err != nil {
			return err
		}

		slot, err := st.ListOwnerSlot(ctx, r.OwnerID, r.Date, r.SlotTime())
		if err != nil {
			return err
		}
		result.SlotNowAvailable = true
		for _, o := range slot {
			if o.Status.Active() {
				result.SlotNowAvailable = false
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCancellation(string(current.Kind))
	logger.Info("reservation cancelled",
		"reservation_id", id,
		"kind", current.Kind,
		"admin", actor.IsAdmin,
		"buddies_cancelled", result.BuddiesCancelled,
	)
	s.triggerGrouping(ctx, current)
	return result, nil
}

func cancel(r *domain.Reservation) {
	r.ClearAssignment()
	r.Status = domain.StatusCancelled
	r.PriceCents = 0
}

// cancelBuddies cancels the selected accepted members of the reservation's
// buddy group. Unknown users are skipped.
func cancelBuddies(ctx context.Context, st Store, r *domain.Reservation, userIDs []int) ([]int, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	gid := r.BuddyGroupID()
	if gid == nil {
		logger.Warn("cancel requested buddies but reservation has no buddy group", "reservation_id", r.ID)
		return nil, nil
	}
	g, err := st.GetBuddyGroup(ctx, *gid)
	if err != nil {
		return nil, err
	}

	members := make(map[int]domain.BuddyMember, len(g.Members))
	for _, m := range g.Members {
		if m.Status == domain.BuddyAccepted && m.ReservationID != r.ID {
			members[m.UserID] = m
		}
	}

	var cancelled []int
	for _, uid := range userIDs {
		m, ok := members[uid]
		if !ok {
			logger.Warn("buddy is not part of the group", "reservation_id", r.ID, "user_id", uid)
			continue
		}
		res, err := st.GetByID(ctx, m.ReservationID)
		if err != nil {
			return nil, err
		}
		if !res.Status.Active() {
			continue
		}
		if res.Pool != nil {
			res.Pool.Lane = nil
		}
		res.Status = domain.StatusCancelled
		res.PriceCents = 0
		if err := st.Update(ctx, res); err != nil {
			return nil, err
		}
		cancelled = append(cancelled, uid)
	}
	return cancelled, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id int) (*domain.Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListMine(ctx context.Context, actor Actor) ([]domain.Reservation, error) {
	return s.repo.ListByOwner(ctx, actor.UserID)
}

func (s *service) triggerGrouping(ctx context.Context, r *domain.Reservation) {
	if s.grouping == nil || r.OpenWater == nil {
		return
	}
	if err := s.grouping.Trigger(ctx, r.Date, r.OpenWater.TimePeriod); err != nil {
		logger.Warn("failed to schedule buoy grouping",
			"date", r.Date.Format(domain.DateLayout),
			"period", r.OpenWater.TimePeriod,
			"error", err,
		)
	}
}

func authorize(actor Actor, r *domain.Reservation) error {
	if actor.IsAdmin || r.OwnerID == actor.UserID {
		return nil
	}
	return domain.ErrForbidden
}

// lockKeys serializes writers of the same kind and day, the open-water slot
// shared with the grouping worker, and the owner's slot across kinds.
func lockKeys(r *domain.Reservation) []string {
	keys := []string{db.LockKey(string(r.Kind), r.Date.Format(domain.DateLayout))}
	if r.OpenWater != nil {
		keys = append(keys, buoy.SlotLockKey(r.Date, r.OpenWater.TimePeriod))
	}
	return append(keys, memberSlotKey(r.OwnerID, r.Date, r.SlotTime()))
}

// memberSlotKey lets the cross-kind conflict check see a concurrent create
// of another kind by the same member.
func memberSlotKey(ownerID int, day time.Time, slot domain.ClockTime) string {
	return db.LockKey("member", strconv.Itoa(ownerID), day.Format(domain.DateLayout), slot.String())
}

func mergeKeys(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, k := range append(append([]string{}, a...), b...) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// checkOwnerSlot rejects a second active booking by the same owner at the
// same date and slot time.
func checkOwnerSlot(ctx context.Context, st Store, r *domain.Reservation, excludeID int) error {
	slot, err := st.ListOwnerSlot(ctx, r.OwnerID, r.Date, r.SlotTime())
	if err != nil {
		return err
	}

	var conflict *domain.Reservation
	for i := range slot {
		o := &slot[i]
		if o.ID == excludeID || !o.Status.Active() {
			continue
		}
		if o.Kind == r.Kind {
			return domain.DuplicateReservation(o)
		}
		if conflict == nil {
			conflict = o
		}
	}
	if conflict != nil {
		return domain.ConflictingReservation(conflict)
	}
	return nil
}

// sweep deletes the owner's cancelled or rejected rows at the slot so the
// unique (owner, date, slot) key is free for the new booking.
func sweep(ctx context.Context, st Store, ownerID int, day time.Time, slot domain.ClockTime, excludeID int) error {
	rows, err := st.ListOwnerSlot(ctx, ownerID, day, slot)
	if err != nil {
		return err
	}
	for _, o := range rows {
		if o.ID == excludeID || o.Status.Active() {
			continue
		}
		if err := st.Delete(ctx, o.ID); err != nil {
			return err
		}
	}
	return nil
}
