package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

type leaveRepoStub struct {
	items map[string]models.LeaveRequest
	seq   int
	last  models.LeaveFilter
}

func newLeaveRepoStub() *leaveRepoStub {
	return &leaveRepoStub{items: map[string]models.LeaveRequest{}}
}

func (r *leaveRepoStub) Create(ctx context.Context, req *models.LeaveRequest) error {
	r.seq++
	req.ID = fmt.Sprintf("leave-%d", r.seq)
	r.items[req.ID] = *req
	return nil
}

func (r *leaveRepoStub) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *leaveRepoStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error) {
	r.last = filter
	var out []models.LeaveRequest
	for _, item := range r.items {
		if filter.UserID == "" || item.UserID == filter.UserID {
			out = append(out, item)
		}
	}
	return out, len(out), nil
}

func (r *leaveRepoStub) Review(ctx context.Context, req *models.LeaveRequest) error {
	if r.items[req.ID].Status != models.LeavePending {
		return sql.ErrNoRows
	}
	r.items[req.ID] = *req
	return nil
}

func (r *leaveRepoStub) MarkRead(ctx context.Context, id string) error {
	item, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.IsRead = true
	r.items[id] = item
	return nil
}

func (r *leaveRepoStub) Delete(ctx context.Context, id string) error {
	if r.items[id].Status != models.LeavePending {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func sickLeave() dto.CreateLeaveRequest {
	return dto.CreateLeaveRequest{LeaveType: "sick", StartDate: "2024-06-10", EndDate: "2024-06-12", Reason: "fever"}
}

func TestLeaveCreateAndReview(t *testing.T) {
	repo := newLeaveRepoStub()
	events := &recordingEvents{}
	svc := NewLeaveService(repo, events, nil, nil)
	ctx := context.Background()

	leave, err := svc.Create(ctx, studentActor, sickLeave())
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, leave.Status)
	assert.Equal(t, models.AttendeeStudent, leave.UserType)

	reviewed, err := svc.Review(ctx, staffActor, leave.ID, dto.ReviewLeaveRequest{Status: "approved", Note: "get well"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "staff-1", *reviewed.ReviewedBy)

	_, err = svc.Review(ctx, adminActor, leave.ID, dto.ReviewLeaveRequest{Status: "rejected"})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	read, err := svc.MarkRead(ctx, studentActor, leave.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, []string{"leaveRequestCreated", "leaveRequestUpdated", "leaveRequestUpdated"}, events.names())
}

func TestLeaveCreateRejectsInvertedRange(t *testing.T) {
	svc := NewLeaveService(newLeaveRepoStub(), nil, nil, nil)
	req := sickLeave()
	req.EndDate = "2024-06-09"
	_, err := svc.Create(context.Background(), staffActor, req)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestLeaveReviewGuards(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, nil, nil, nil)
	ctx := context.Background()

	leave, err := svc.Create(ctx, staffActor, sickLeave())
	require.NoError(t, err)

	_, err = svc.Review(ctx, studentActor, leave.ID, dto.ReviewLeaveRequest{Status: "approved"})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	_, err = svc.Review(ctx, staffActor, leave.ID, dto.ReviewLeaveRequest{Status: "approved"})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	_, err = svc.Review(ctx, adminActor, leave.ID, dto.ReviewLeaveRequest{Status: "maybe"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestLeaveCancelOwnerPendingOnly(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, nil, nil, nil)
	ctx := context.Background()

	leave, err := svc.Create(ctx, studentActor, sickLeave())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, staffActor, leave.ID)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	_, err = svc.Cancel(ctx, studentActor, leave.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.items)

	other, err := svc.Create(ctx, studentActor, sickLeave())
	require.NoError(t, err)
	_, err = svc.Review(ctx, staffActor, other.ID, dto.ReviewLeaveRequest{Status: "rejected"})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, studentActor, other.ID)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestLeaveListScopesStudents(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, nil, nil, nil)

	_, _, err := svc.List(context.Background(), studentActor, dto.LeaveQuery{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "stu-1", repo.last.UserID)

	_, _, err = svc.List(context.Background(), staffActor, dto.LeaveQuery{Status: "unknown"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}
