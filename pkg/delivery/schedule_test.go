package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 8, Minute: 30}, c)
	assert.Equal(t, "08:30", c.String())

	for _, bad := range []string{"8", "24:00", "10:60", "aa:bb", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d)

	d, err = ParseWeekday("sat")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, d)

	_, err = ParseWeekday("funday")
	assert.Error(t, err)
}

func TestNewScheduleRejectsUnorderedRule(t *testing.T) {
	bad := DefaultRule()
	bad.DeliveryEndAt = ClockTime{Hour: 9}

	_, err := NewSchedule(time.UTC, map[time.Weekday]Rule{time.Saturday: bad})
	assert.Error(t, err)

	_, err = NewSchedule(time.UTC, nil)
	assert.Error(t, err)
}

func TestScheduleDays(t *testing.T) {
	s, err := NewSchedule(nil, map[time.Weekday]Rule{
		time.Saturday:  DefaultRule(),
		time.Wednesday: DefaultRule(),
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Weekday{time.Wednesday, time.Saturday}, s.Days())
	assert.Equal(t, time.UTC, s.Location())
	assert.True(t, s.IsDeliveryDay(time.Saturday))
	assert.False(t, s.IsDeliveryDay(time.Monday))
}
