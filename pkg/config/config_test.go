package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DefaultTimetableSlots, cfg.Timetable.Slots)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TimetableTTL)
	assert.Equal(t, "erp:events", cfg.Realtime.Channel)
	assert.Equal(t, 1, cfg.Realtime.Workers)
}

func TestLoadTimetableSlotsFallback(t *testing.T) {
	t.Setenv("TIMETABLE_SLOTS", "8:00-8:45,8:45-9:30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Timetable.Slots, 8)
	assert.Equal(t, "9:00-9:45", cfg.Timetable.Slots[0])
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
}
