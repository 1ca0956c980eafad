package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(570), ct)

	ct, err = ParseClockTime("13:00:00")
	require.NoError(t, err)
	assert.Equal(t, "13:00", ct.String())

	ct, err = ParseClockTime("24:00")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(MinutesPerDay), ct)

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)
}

func TestClockTimeScan(t *testing.T) {
	var ct ClockTime
	require.NoError(t, ct.Scan(time.Date(0, 1, 1, 7, 45, 0, 0, time.UTC)))
	assert.Equal(t, "07:45", ct.String())

	require.NoError(t, ct.Scan([]byte("18:00:00")))
	assert.Equal(t, NewClockTime(18, 0), ct)

	assert.Error(t, ct.Scan(nil))
}

func TestClockTimeJSON(t *testing.T) {
	var body struct {
		Start ClockTime `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"10:30"}`), &body))
	assert.Equal(t, NewClockTime(10, 30), body.Start)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"10:30"}`, string(out))
}

func TestSlotTime(t *testing.T) {
	ow := &Reservation{OpenWater: &OpenWaterDetail{TimePeriod: PeriodPM}}
	assert.Equal(t, NewClockTime(13, 0), ow.SlotTime())

	pool := &Reservation{Pool: &PoolDetail{StartTime: NewClockTime(10, 0)}}
	assert.Equal(t, NewClockTime(10, 0), pool.SlotTime())
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Reservation{Pool: &PoolDetail{Lane: IntPtr(3)}}
	c := orig.Clone()
	*c.Pool.Lane = 5

	assert.Equal(t, 3, *orig.Pool.Lane)
}
