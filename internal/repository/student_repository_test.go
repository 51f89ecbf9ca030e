package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestStudentRepositoryListRoster(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "class_name", "section", "roll_number", "active"}).
		AddRow("s1", "Asha", "10", "A", "01", true).
		AddRow("s2", "Ben", "10", "A", "02", true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE class_name = $1 AND section = $2 AND active = TRUE")).
		WithArgs("10", "A").
		WillReturnRows(rows)

	students, err := repo.ListRoster(context.Background(), "10", "A")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ben", students[1].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE active = TRUE AND class_name = $1 AND section = $2 ORDER BY class_name ASC, section ASC, full_name ASC LIMIT 50 OFFSET 0")).
		WithArgs("9", "B").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "class_name", "section", "roll_number", "active"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE active = TRUE AND class_name = $1 AND section = $2")).
		WithArgs("9", "B").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	students, total, err := repo.List(context.Background(), models.StudentFilter{ClassName: "9", Section: "B"})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
