package classroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

func classRes(id int, status domain.Status, start, end domain.ClockTime, room *int) domain.Reservation {
	return domain.Reservation{
		ID:     id,
		Kind:   domain.KindClassroom,
		Status: status,
		Classroom: &domain.ClassroomDetail{
			StartTime: start,
			EndTime:   end,
			Room:      room,
			Subtype:   domain.SubtypeAutonomous,
		},
	}
}

var (
	nine   = domain.NewClockTime(9, 0)
	ten    = domain.NewClockTime(10, 0)
	eleven = domain.NewClockTime(11, 0)
)

func TestCapacityFourthOverlapRejected(t *testing.T) {
	c := NewChecker(3)
	existing := []domain.Reservation{
		classRes(1, domain.StatusConfirmed, ten, eleven, domain.IntPtr(1)),
		classRes(2, domain.StatusPending, ten, eleven, nil),
		classRes(3, domain.StatusConfirmed, ten, eleven, domain.IntPtr(2)),
	}

	err := c.CheckCapacity(existing, ten, eleven, 0)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	existing[1].Status = domain.StatusCancelled
	assert.NoError(t, c.CheckCapacity(existing, ten, eleven, 0))
}

func TestCapacityIgnoresAdjacentAndSelf(t *testing.T) {
	c := NewChecker(1)
	existing := []domain.Reservation{
		classRes(1, domain.StatusConfirmed, nine, ten, domain.IntPtr(1)),
		classRes(2, domain.StatusConfirmed, ten, eleven, domain.IntPtr(1)),
	}

	assert.True(t, c.IsCapacityAvailable(existing[:1], ten, eleven, 0), "touching windows do not overlap")
	assert.True(t, c.IsCapacityAvailable(existing, ten, eleven, 2))
	assert.False(t, c.IsCapacityAvailable(existing, ten, eleven, 0))
}

func TestAssignRoom(t *testing.T) {
	c := NewChecker(3)
	existing := []domain.Reservation{
		classRes(1, domain.StatusConfirmed, ten, eleven, domain.IntPtr(1)),
		classRes(2, domain.StatusPending, ten, eleven, domain.IntPtr(2)),
		classRes(3, domain.StatusConfirmed, nine, ten, domain.IntPtr(3)),
	}

	room, err := c.AssignRoom(existing, ten, eleven, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, room, "pending bookings do not hold a room")

	existing[1].Status = domain.StatusConfirmed
	existing = append(existing, classRes(4, domain.StatusConfirmed, ten, eleven, domain.IntPtr(3)))
	_, err = c.AssignRoom(existing, ten, eleven, 0)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestReassignKeepsFreeRoom(t *testing.T) {
	c := NewChecker(3)
	existing := []domain.Reservation{
		classRes(1, domain.StatusConfirmed, nine, ten, domain.IntPtr(3)),
		classRes(2, domain.StatusConfirmed, ten, eleven, domain.IntPtr(1)),
	}

	room, err := c.Reassign(existing, ten, eleven, 9, domain.IntPtr(3))
	require.NoError(t, err)
	assert.Equal(t, 3, room)

	room, err = c.Reassign(existing, nine, eleven, 9, domain.IntPtr(3))
	require.NoError(t, err)
	assert.Equal(t, 2, room, "room 3 is taken at 09:00 so the lowest free room is used")
}
