package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

var testSlots = []string{"9:00-9:45", "9:45-10:30", "10:45-11:30", "11:30-12:15", "1:00-1:45", "1:45-2:30", "2:30-3:15", "3:15-4:00"}

type timetableRepoStub struct {
	periods   map[string]models.Period
	listCalls int
}

func (r *timetableRepoStub) Upsert(ctx context.Context, period *models.Period) (*models.Period, error) {
	key := strings.Join([]string{period.ClassName, period.Section, period.Day, string(rune('0' + period.PeriodNumber))}, "|")
	period.ID = key
	r.periods[key] = *period
	out := *period
	return &out, nil
}

func (r *timetableRepoStub) FindByID(ctx context.Context, id string) (*models.Period, error) {
	p, ok := r.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *timetableRepoStub) ListByClass(ctx context.Context, className, section string) ([]models.Period, error) {
	r.listCalls++
	var out []models.Period
	for _, p := range r.periods {
		if p.ClassName == className && p.Section == section {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *timetableRepoStub) ListByTeacher(ctx context.Context, teacher string) ([]models.Period, error) {
	var out []models.Period
	for _, p := range r.periods {
		if p.Teacher == teacher {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *timetableRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.periods, id)
	return nil
}

type memoryCache struct {
	items map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

// DeleteByPattern follows redis MATCH semantics closely enough for key names
// without '/'.
func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestBuildGridIsDense(t *testing.T) {
	periods := []models.Period{{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "Maths", Teacher: "Mr. Rao"}}
	grid := BuildGrid("10", "A", periods, testSlots)

	require.Len(t, grid.Days, 5)
	cells := 0
	for _, day := range grid.Days {
		require.Len(t, day.Periods, 8)
		cells += len(day.Periods)
	}
	assert.Equal(t, 40, cells)
	assert.Equal(t, "Monday", grid.Days[0].Day)
	assert.Equal(t, "Maths", grid.Days[0].Periods[0].Subject)
	assert.Equal(t, "9:00-9:45", grid.Days[0].Periods[0].Time)
	assert.Equal(t, "", grid.Days[4].Periods[7].Subject)
	assert.Equal(t, "3:15-4:00", grid.Days[4].Periods[7].Time)
}

func TestTimetableGridCachedAndInvalidated(t *testing.T) {
	repo := &timetableRepoStub{periods: map[string]models.Period{}}
	cache := NewCacheService(&memoryCache{items: map[string][]byte{}}, NewMetricsService(), time.Minute, nil, true)
	events := &recordingEvents{}
	svc := NewTimetableService(repo, cache, testSlots, time.Minute, events, nil, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Tuesday", PeriodNumber: 3, Subject: "Physics", Teacher: "Ms. Iyer"})
	require.NoError(t, err)

	grid, hit, err := svc.Grid(ctx, "10", "A")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Physics", grid.Days[1].Periods[2].Subject)
	_, hit, err = svc.Grid(ctx, "10", "A")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Tuesday", PeriodNumber: 3, Subject: "Chemistry", Teacher: "Ms. Iyer"})
	require.NoError(t, err)
	grid, hit, err = svc.Grid(ctx, "10", "A")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Chemistry", grid.Days[1].Periods[2].Subject)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, []string{"timetableUpdate", "timetableUpdate"}, events.names())
}

func TestTimetableUpsertValidation(t *testing.T) {
	svc := NewTimetableService(&timetableRepoStub{periods: map[string]models.Period{}}, nil, testSlots, 0, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Saturday", PeriodNumber: 1, Subject: "PE", Teacher: "Coach"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 9, Subject: "PE", Teacher: "Coach"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = svc.Upsert(ctx, studentActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "PE", Teacher: "Coach"})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestTeacherScheduleOrdering(t *testing.T) {
	repo := &timetableRepoStub{periods: map[string]models.Period{}}
	svc := NewTimetableService(repo, nil, testSlots, 0, nil, nil, nil)
	ctx := context.Background()
	for _, req := range []dto.PeriodRequest{
		{ClassName: "9", Section: "B", Day: "Friday", PeriodNumber: 1, Subject: "Maths", Teacher: "Mr. Rao"},
		{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 4, Subject: "Maths", Teacher: "Mr. Rao"},
		{ClassName: "10", Section: "B", Day: "Monday", PeriodNumber: 2, Subject: "Maths", Teacher: "Mr. Rao"},
	} {
		_, err := svc.Upsert(ctx, staffActor, req)
		require.NoError(t, err)
	}

	periods, err := svc.TeacherSchedule(ctx, "Mr. Rao")
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, 2, periods[0].PeriodNumber)
	assert.Equal(t, 4, periods[1].PeriodNumber)
	assert.Equal(t, "Friday", periods[2].Day)
}

func TestTeacherScheduleCacheFollowsReassignment(t *testing.T) {
	repo := &timetableRepoStub{periods: map[string]models.Period{}}
	cache := NewCacheService(&memoryCache{items: map[string][]byte{}}, nil, time.Minute, nil, true)
	svc := NewTimetableService(repo, cache, testSlots, time.Minute, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "Maths", Teacher: "Mr. Rao"})
	require.NoError(t, err)
	periods, err := svc.TeacherSchedule(ctx, "Mr. Rao")
	require.NoError(t, err)
	require.Len(t, periods, 1)

	_, err = svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "Maths", Teacher: "Ms. Iyer"})
	require.NoError(t, err)
	periods, err = svc.TeacherSchedule(ctx, "Mr. Rao")
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestTimetableInvalidationTreatsClassNameLiterally(t *testing.T) {
	repo := &timetableRepoStub{periods: map[string]models.Period{}}
	cache := NewCacheService(&memoryCache{items: map[string][]byte{}}, nil, time.Minute, nil, true)
	svc := NewTimetableService(repo, cache, testSlots, time.Minute, nil, nil, nil)
	ctx := context.Background()

	for _, class := range []string{"10*", "10x"} {
		_, err := svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: class, Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "Maths", Teacher: "Mr. Rao"})
		require.NoError(t, err)
		_, hit, err := svc.Grid(ctx, class, "A")
		require.NoError(t, err)
		assert.False(t, hit)
	}

	_, err := svc.Upsert(ctx, staffActor, dto.PeriodRequest{ClassName: "10*", Section: "A", Day: "Monday", PeriodNumber: 1, Subject: "Physics", Teacher: "Mr. Rao"})
	require.NoError(t, err)

	_, hit, err := svc.Grid(ctx, "10x", "A")
	require.NoError(t, err)
	assert.True(t, hit)
	grid, hit, err := svc.Grid(ctx, "10*", "A")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Physics", grid.Days[0].Periods[0].Subject)
}
