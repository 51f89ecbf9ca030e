package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

var examRowColumns = []string{"id", "exam_name", "exam_type", "subject", "class_name", "date", "start_time", "end_time", "duration", "hall", "invigilators", "total_marks", "status", "created_by", "created_at", "updated_at"}

func TestExamListActiveOnDateExcludesCancelled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	date := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE date = $1 AND status <> $2")).
		WithArgs(date, models.ExamStatusCancelled).
		WillReturnRows(sqlmock.NewRows(examRowColumns).
			AddRow("e1", "Midterm", "Written", "Maths", "10", date, "10:00", "11:00", 60, "Hall A", "{t1,t2}", 100, "Scheduled", "admin", now, now))

	exams, err := repo.ListActiveOnDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, pq.StringArray{"t1", "t2"}, exams[0].Invigilators)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec("INSERT INTO exams").WillReturnResult(sqlmock.NewResult(1, 1))

	exam := &models.Exam{ExamName: "Final", ClassName: "10", StartTime: "09:00", EndTime: "12:00", Invigilators: pq.StringArray{"t1"}}
	require.NoError(t, repo.Create(context.Background(), exam))
	assert.NotEmpty(t, exam.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
