package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestLeaveReviewOnlyFromPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec("UPDATE leave_requests SET status = .+ WHERE id = .+ AND status = 'pending'").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Review(context.Background(), &models.LeaveRequest{ID: "l1", Status: models.LeaveApproved})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveListUnread(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	unread := true
	mock.ExpectQuery("FROM leave_requests WHERE 1=1 AND user_id = \\$1 AND is_read = \\$2").
		WithArgs("u1", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT COUNT").WithArgs("u1", false).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.LeaveFilter{UserID: "u1", Unread: &unread})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
