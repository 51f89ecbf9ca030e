package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestTransportAssignRejectsSecondRoute(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTransportRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT capacity FROM transport_routes").WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("FROM transport_assignments WHERE student_id").WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Assign(context.Background(), &models.TransportAssignment{RouteID: "r1", StudentID: "s1", Stop: "Market"})
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
