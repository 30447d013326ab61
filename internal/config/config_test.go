package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OperationsDefaults(t *testing.T) {
	cfg := Load()
	ops := cfg.Operations

	assert.Equal(t, "Asia/Singapore", ops.Timezone)
	assert.Equal(t, 24*time.Hour, ops.UndoWindow)
	assert.Equal(t, 30*time.Second, ops.StatusCacheTTL)

	schedule, err := ops.DeliverySchedule()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Wednesday, time.Saturday}, schedule.Days())
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("DELIVERY_DAYS", "mon, fri")
	t.Setenv("UNDO_WINDOW", "0")
	t.Setenv("CUTOFF_TIME", "18:30")

	ops := Load().Operations
	assert.Equal(t, time.Duration(0), ops.UndoWindow)

	schedule, err := ops.DeliverySchedule()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, schedule.Days())

	rule, err := ops.Rule()
	require.NoError(t, err)
	assert.Equal(t, 18, rule.CutoffAt.Hour)
	assert.Equal(t, 30, rule.CutoffAt.Minute)
}

func TestDeliverySchedule_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		ops  OperationsConfig
	}{
		{"bad timezone", OperationsConfig{Timezone: "Mars/Olympus", DeliveryDays: "wednesday", CutoffTime: "08:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00"}},
		{"bad weekday", OperationsConfig{Timezone: "UTC", DeliveryDays: "someday", CutoffTime: "08:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00"}},
		{"bad clock", OperationsConfig{Timezone: "UTC", DeliveryDays: "wednesday", CutoffTime: "25:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00"}},
		{"no days", OperationsConfig{Timezone: "UTC", DeliveryDays: " ", CutoffTime: "08:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00"}},
		{"bad day rule", OperationsConfig{Timezone: "UTC", DeliveryDays: "wednesday", CutoffTime: "08:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00", DayRules: map[time.Weekday]string{time.Wednesday: "2@08:00,10:00-15:00"}}},
		{"day rule window reversed", OperationsConfig{Timezone: "UTC", DeliveryDays: "wednesday", CutoffTime: "08:00", CookingTime: "08:00", DeliveryStartTime: "10:00", DeliveryEndTime: "15:00", DayRules: map[time.Weekday]string{time.Wednesday: "2@08:00,1@08:00,15:00-10:00"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ops.DeliverySchedule()
			assert.Error(t, err)
		})
	}
}

func TestDeliverySchedule_PerDayOverride(t *testing.T) {
	t.Setenv("OPERATIONAL_TIMEZONE", "UTC")
	t.Setenv("DELIVERY_DAYS", "wednesday,saturday")
	t.Setenv("DELIVERY_RULE_SATURDAY", "3@12:00, 1@18:00, 09:00-13:00")
	t.Setenv("DELIVERY_RULE_MONDAY", "1@08:00,1@08:00,10:00-15:00")

	schedule, err := Load().Operations.DeliverySchedule()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Wednesday, time.Saturday}, schedule.Days())

	sat, ok := schedule.Windows(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), sat.Cutoff.UTC())
	assert.Equal(t, time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC), sat.CookingStart.UTC())
	assert.Equal(t, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), sat.DeliveryStart.UTC())
	assert.Equal(t, time.Date(2025, 3, 15, 13, 0, 0, 0, time.UTC), sat.DeliveryEnd.UTC())

	wed, ok := schedule.Windows(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), wed.Cutoff.UTC())
	assert.Equal(t, time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC), wed.DeliveryEnd.UTC())
}
