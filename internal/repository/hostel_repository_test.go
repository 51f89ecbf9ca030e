package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestHostelAllocateRejectsWhenFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHostelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM hostels WHERE id = \\$1 FOR UPDATE").WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery("FROM hostel_allocations WHERE student_id").WithArgs("s9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM hostel_allocations WHERE hostel_id").WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Allocate(context.Background(), &models.HostelAllocation{HostelID: "h1", StudentID: "s9", RoomNumber: "12"})
	assert.ErrorIs(t, err, ErrCapacityReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHostelAllocateInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHostelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery("WHERE student_id").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("WHERE hostel_id").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO hostel_allocations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	alloc := &models.HostelAllocation{HostelID: "h1", StudentID: "s9", RoomNumber: "12"}
	require.NoError(t, repo.Allocate(context.Background(), alloc))
	assert.True(t, alloc.Active)
	assert.NotEmpty(t, alloc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
