package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

type studentRepoStub struct {
	students []models.Student
	listErr  error
	filter   models.StudentFilter
}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for _, st := range s.students {
		if st.ID == id {
			out := st
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) ListRoster(ctx context.Context, className, section string) ([]models.Student, error) {
	var out []models.Student
	for _, st := range s.students {
		if st.ClassName == className && st.Section == section {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	s.filter = filter
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.students, len(s.students), nil
}

func TestStudentServiceList(t *testing.T) {
	repo := &studentRepoStub{students: []models.Student{{ID: "stu-1", FullName: "Asha", ClassName: "10", Section: "A"}}}
	svc := NewStudentService(repo, nil)

	items, pagination, err := svc.List(context.Background(), staffActor, dto.StudentQuery{ClassName: " 10 ", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "10", repo.filter.ClassName)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = svc.List(context.Background(), studentActor, dto.StudentQuery{})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	repo.listErr = errors.New("db down")
	_, _, err = svc.List(context.Background(), adminActor, dto.StudentQuery{})
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestStudentServiceGet(t *testing.T) {
	repo := &studentRepoStub{students: []models.Student{{ID: "stu-1", FullName: "Asha"}, {ID: "stu-2", FullName: "Ravi"}}}
	svc := NewStudentService(repo, nil)

	student, err := svc.Get(context.Background(), studentActor, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", student.FullName)

	_, err = svc.Get(context.Background(), studentActor, "stu-2")
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	_, err = svc.Get(context.Background(), staffActor, "stu-9")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestStudentServiceRoster(t *testing.T) {
	repo := &studentRepoStub{students: []models.Student{
		{ID: "stu-1", ClassName: "10", Section: "A"},
		{ID: "stu-2", ClassName: "10", Section: "B"},
	}}
	svc := NewStudentService(repo, nil)

	roster, err := svc.Roster(context.Background(), staffActor, "10", "A")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "stu-1", roster[0].ID)

	_, err = svc.Roster(context.Background(), staffActor, "10", "")
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}
