package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type attendanceRepoStub struct {
	records    map[string]*models.AttendanceRecord
	seq        int
	failUser   string
	lastFilter models.AttendanceFilter
	listCalls  int
	counts     map[models.AttendanceStatus]int
}

func newAttendanceRepoStub() *attendanceRepoStub {
	return &attendanceRepoStub{records: map[string]*models.AttendanceRecord{}}
}

func (r *attendanceRepoStub) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.UserID == r.failUser {
		return nil, errors.New("deadlock detected")
	}
	key := record.UserID + "|" + dayKey(record.Date)
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
	} else {
		r.seq++
		record.ID = fmt.Sprintf("att-%d", r.seq)
	}
	stored := *record
	r.records[key] = &stored
	out := stored
	return &out, nil
}

func (r *attendanceRepoStub) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			out := *rec
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *attendanceRepoStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	r.lastFilter = filter
	r.listCalls++
	var out []models.AttendanceRecord
	for _, rec := range r.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *attendanceRepoStub) CountByStatus(ctx context.Context, userID string, from, to *time.Time) (map[models.AttendanceStatus]int, error) {
	return r.counts, nil
}

func (r *attendanceRepoStub) Delete(ctx context.Context, id string) error {
	for key, rec := range r.records {
		if rec.ID == id {
			delete(r.records, key)
			return nil
		}
	}
	return sql.ErrNoRows
}

type rosterStub struct {
	students []models.Student
	calls    int
}

func (r *rosterStub) ListRoster(ctx context.Context, className, section string) ([]models.Student, error) {
	r.calls++
	return r.students, nil
}

func newAttendanceServiceForTest(repo *attendanceRepoStub, roster *rosterStub, events realtime.Sink) *AttendanceService {
	return NewAttendanceService(repo, roster, nil, &auditStub{}, events, nil, nil, nil)
}

func TestAttendanceMarkTwiceUpdatesSameRecord(t *testing.T) {
	repo := newAttendanceRepoStub()
	events := &recordingEvents{}
	svc := newAttendanceServiceForTest(repo, &rosterStub{}, events)
	ctx := context.Background()

	first, err := svc.Mark(ctx, staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "2024-06-03", Status: "present"})
	require.NoError(t, err)
	second, err := svc.Mark(ctx, staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "2024-06-03", Status: "late"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.Len(t, repo.records, 1)
	assert.Equal(t, models.AttendanceStatusLate, repo.records["s1|2024-06-03"].Status)
	assert.Equal(t, "staff-1", *repo.records["s1|2024-06-03"].MarkedBy)
	assert.Equal(t, []string{realtime.EventAttendanceUpdate, realtime.EventAttendanceUpdate}, events.names())
	assert.Equal(t, second, events.events[1].Payload)
}

func TestAttendanceMarkValidation(t *testing.T) {
	svc := newAttendanceServiceForTest(newAttendanceRepoStub(), &rosterStub{}, nil)
	_, err := svc.Mark(context.Background(), staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "03/06/2024", Status: "present"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = svc.Mark(context.Background(), staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "2024-06-03", Status: "holiday"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestAttendanceBulkMarkReportsEveryItem(t *testing.T) {
	repo := newAttendanceRepoStub()
	repo.failUser = "s3"
	events := &recordingEvents{}
	svc := newAttendanceServiceForTest(repo, &rosterStub{}, events)

	result, err := svc.BulkMark(context.Background(), staffActor, dto.BulkAttendanceRequest{
		Date: "2024-06-03",
		Items: []dto.BulkAttendanceItem{
			{UserID: "s1", Status: "present"},
			{UserID: "s2", Status: "sleeping"},
			{UserID: "s3", Status: "absent"},
			{UserID: "s4", UserType: "staff", Status: "late"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 4)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Contains(t, result.Results[1].Error, "invalid item")
	assert.False(t, result.Results[2].Success)
	assert.Contains(t, result.Results[2].Error, "deadlock")
	assert.True(t, result.Results[3].Success)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, models.AttendeeStaff, repo.records["s4|2024-06-03"].UserType)
	assert.Equal(t, models.AttendeeStudent, repo.records["s1|2024-06-03"].UserType)
	require.Len(t, events.events, 1)
	assert.Same(t, result, events.events[0].Payload)
}

func TestAttendanceListReconcilesOnlyWithFullFilter(t *testing.T) {
	repo := newAttendanceRepoStub()
	roster := &rosterStub{students: []models.Student{{ID: "s1", FullName: "Asha"}, {ID: "s2", FullName: "Bela"}}}
	svc := newAttendanceServiceForTest(repo, roster, nil)
	ctx := context.Background()
	_, err := svc.Mark(ctx, staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "2024-06-03", Status: "present"})
	require.NoError(t, err)

	partial, err := svc.List(ctx, staffActor, dto.AttendanceQuery{ClassName: "10", Section: "A", StartDate: "2024-06-03"})
	require.NoError(t, err)
	assert.Len(t, partial, 1)
	assert.Equal(t, 0, roster.calls)

	full, err := svc.List(ctx, staffActor, dto.AttendanceQuery{ClassName: "10", Section: "A", StartDate: "2024-06-03", EndDate: "2024-06-04"})
	require.NoError(t, err)
	require.Len(t, full, 4)
	virtual := 0
	for _, r := range full {
		if r.IsVirtual {
			virtual++
			assert.Equal(t, models.AttendanceStatusAbsent, r.Status)
		}
	}
	assert.Equal(t, 3, virtual)

	absent, err := svc.List(ctx, staffActor, dto.AttendanceQuery{ClassName: "10", Section: "A", StartDate: "2024-06-03", EndDate: "2024-06-04", Status: "absent"})
	require.NoError(t, err)
	assert.Len(t, absent, 3)
}

func TestAttendanceListScopesStudents(t *testing.T) {
	repo := newAttendanceRepoStub()
	svc := newAttendanceServiceForTest(repo, &rosterStub{}, nil)
	_, err := svc.List(context.Background(), studentActor, dto.AttendanceQuery{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "stu-1", repo.lastFilter.UserID)

	_, err = svc.List(context.Background(), staffActor, dto.AttendanceQuery{StartDate: "2024-06-05", EndDate: "2024-06-01"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestAttendanceSummary(t *testing.T) {
	repo := newAttendanceRepoStub()
	repo.counts = map[models.AttendanceStatus]int{models.AttendanceStatusPresent: 6, models.AttendanceStatusLate: 1, models.AttendanceStatusAbsent: 2}
	svc := newAttendanceServiceForTest(repo, &rosterStub{}, nil)

	summary, err := svc.Summary(context.Background(), staffActor, "s1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 77.78, summary.Percent)

	_, err = svc.Summary(context.Background(), studentActor, "s1", "", "")
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestAttendanceDeleteRequiresAdmin(t *testing.T) {
	repo := newAttendanceRepoStub()
	events := &recordingEvents{}
	svc := newAttendanceServiceForTest(repo, &rosterStub{}, events)
	rec, err := svc.Mark(context.Background(), staffActor, dto.MarkAttendanceRequest{UserID: "s1", UserType: "student", Date: "2024-06-03", Status: "present"})
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), staffActor, rec.ID)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	deleted, err := svc.Delete(context.Background(), adminActor, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, deleted.ID)
	assert.Empty(t, repo.records)
	assert.Equal(t, realtime.EventAttendanceDeleted, events.events[len(events.events)-1].Name)

	_, err = svc.Delete(context.Background(), adminActor, "missing")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestAttendanceDownloadRejectsFormat(t *testing.T) {
	svc := newAttendanceServiceForTest(newAttendanceRepoStub(), &rosterStub{}, nil)
	_, err := svc.Download(context.Background(), staffActor, dto.AttendanceQuery{Format: "xlsx"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestAttendanceListRejectsLongRangeBeforeQuerying(t *testing.T) {
	repo := newAttendanceRepoStub()
	roster := &rosterStub{students: []models.Student{{ID: "stu-1", FullName: "Asha"}}}
	svc := newAttendanceServiceForTest(repo, roster, nil)

	_, err := svc.List(context.Background(), staffActor, dto.AttendanceQuery{ClassName: "10", Section: "A", StartDate: "2023-01-01", EndDate: "2024-06-30"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Equal(t, 0, repo.listCalls)
	assert.Equal(t, 0, roster.calls)

	_, err = svc.List(context.Background(), staffActor, dto.AttendanceQuery{ClassName: "10", Section: "A", StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}
