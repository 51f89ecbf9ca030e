package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
)

type attendanceStore struct {
	records  map[string]models.AttendanceRecord
	seq      int
	failUser string
}

func (s *attendanceStore) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.UserID == s.failUser {
		return nil, errors.New("deadlock detected")
	}
	key := record.UserID + "|" + record.Date.Format("2006-01-02")
	if existing, ok := s.records[key]; ok {
		record.ID = existing.ID
	} else {
		s.seq++
		record.ID = fmt.Sprintf("att-%d", s.seq)
	}
	s.records[key] = *record
	out := *record
	return &out, nil
}

func (s *attendanceStore) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceStore) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *attendanceStore) CountByStatus(ctx context.Context, userID string, from, to *time.Time) (map[models.AttendanceStatus]int, error) {
	return map[models.AttendanceStatus]int{}, nil
}

func (s *attendanceStore) Delete(ctx context.Context, id string) error {
	return nil
}

type classRoster struct {
	students []models.Student
}

func (r classRoster) ListRoster(ctx context.Context, className, section string) ([]models.Student, error) {
	return r.students, nil
}

func newAttendanceHandlerFixture() (*AttendanceHandler, *attendanceStore) {
	store := &attendanceStore{records: map[string]models.AttendanceRecord{}}
	roster := classRoster{students: []models.Student{
		{ID: "stu-1", FullName: "Asha Rao", ClassName: "10", Section: "A"},
		{ID: "stu-2", FullName: "Vikram Iyer", ClassName: "10", Section: "A"},
	}}
	docs := service.NewDocumentService(nil, nil, service.DocumentConfig{}, nil, nil, nil)
	svc := service.NewAttendanceService(store, roster, docs, nil, nil, nil, nil, nil)
	return NewAttendanceHandler(svc), store
}

func TestAttendanceHandlerDownloadServesCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAttendanceHandlerFixture()
	store.records["stu-1|2024-06-03"] = models.AttendanceRecord{
		ID: "att-1", UserID: "stu-1", UserType: models.AttendeeStudent, Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Status: models.AttendanceStatusPresent, StudentName: "Asha Rao", ClassName: "10", Section: "A",
	}

	c, w := apiContext(http.MethodGet, "/attendance/download?className=10&section=A&startDate=2024-06-03&endDate=2024-06-03&format=csv", "", models.RoleStaff)
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="attendance_`))
	assert.True(t, strings.HasSuffix(disposition, `.csv"`))
	assert.Contains(t, w.Body.String(), "Asha Rao")
	assert.Contains(t, w.Body.String(), "Vikram Iyer")
}

func TestAttendanceHandlerDownloadRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newAttendanceHandlerFixture()

	c, w := apiContext(http.MethodGet, "/attendance/download?format=xlsx", "", models.RoleStaff)
	handler.Download(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestAttendanceHandlerBulkReportsEachItem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newAttendanceHandlerFixture()
	store.failUser = "stu-3"

	body := `{"date":"2024-06-03","items":[
		{"userId":"stu-1","status":"present"},
		{"userId":"stu-2","status":"sleeping"},
		{"userId":"stu-3","status":"absent"}
	]}`
	c, w := apiContext(http.MethodPost, "/attendance/bulk", body, models.RoleStaff)
	handler.BulkMark(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.BulkAttendanceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "2024-06-03", envelope.Data.Date)
	require.Len(t, envelope.Data.Results, 3)
	assert.True(t, envelope.Data.Results[0].Success)
	assert.Equal(t, "stu-1", envelope.Data.Results[0].UserID)
	assert.False(t, envelope.Data.Results[1].Success)
	assert.Contains(t, envelope.Data.Results[1].Error, "invalid item")
	assert.False(t, envelope.Data.Results[2].Success)
	assert.Contains(t, envelope.Data.Results[2].Error, "deadlock detected")
	assert.Len(t, envelope.Data.Records, 1)
	assert.Len(t, store.records, 1)
}
