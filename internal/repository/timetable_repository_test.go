package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

var periodRowColumns = []string{"id", "class_name", "section", "day", "period_number", "subject", "teacher", "created_at", "updated_at"}

func TestTimetableUpsertTargetsSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (class_name, section, day, period_number)")).
		WillReturnRows(sqlmock.NewRows(periodRowColumns).AddRow("p1", "10", "A", "Monday", 3, "Physics", "Mr Rao", now, now))

	stored, err := repo.Upsert(context.Background(), &models.Period{ClassName: "10", Section: "A", Day: "Monday", PeriodNumber: 3, Subject: "Physics", Teacher: "Mr Rao"})
	require.NoError(t, err)
	assert.Equal(t, "p1", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableListByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_periods WHERE class_name = $1 AND section = $2")).
		WithArgs("10", "A").
		WillReturnRows(sqlmock.NewRows(periodRowColumns))

	periods, err := repo.ListByClass(context.Background(), "10", "A")
	require.NoError(t, err)
	assert.Empty(t, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}
