package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type leaveRepository interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error)
	Review(ctx context.Context, req *models.LeaveRequest) error
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// LeaveService runs the leave request review workflow.
type LeaveService struct {
	repo      leaveRepository
	events    realtime.Sink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(repo leaveRepository, events realtime.Sink, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &LeaveService{repo: repo, events: events, validator: validate, logger: logger}
}

// Create opens a pending request owned by the caller.
func (s *LeaveService) Create(ctx context.Context, actor models.Actor, req dto.CreateLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid leave request")
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	leave := &models.LeaveRequest{
		UserID:    actor.UserID,
		UserType:  attendeeTypeFor(actor),
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    models.LeavePending,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, internalError(err, "failed to create leave request")
	}
	publish(ctx, s.events, s.logger, realtime.EventLeaveRequestCreated, leave)
	return leave, nil
}

// List returns requests. Students only ever see their own.
func (s *LeaveService) List(ctx context.Context, actor models.Actor, query dto.LeaveQuery) ([]models.LeaveRequest, *models.Pagination, error) {
	filter := models.LeaveFilter{
		UserID:   query.UserID,
		UserType: models.AttendeeType(query.UserType),
		Status:   models.LeaveStatus(query.Status),
		Unread:   query.Unread,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	switch filter.Status {
	case "", models.LeavePending, models.LeaveApproved, models.LeaveRejected:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown leave status")
	}
	if !actor.IsStaff() {
		filter.UserID = actor.UserID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list leave requests")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single request visible to the caller.
func (s *LeaveService) Get(ctx context.Context, actor models.Actor, id string) (*models.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "leave request not found", "failed to load leave request")
	}
	if !actor.IsStaff() && leave.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	}
	return leave, nil
}

// Review approves or rejects a pending request. Decided requests are final.
func (s *LeaveService) Review(ctx context.Context, actor models.Actor, id string, req dto.ReviewLeaveRequest) (*models.LeaveRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid review payload")
	}
	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "leave request not found", "failed to load leave request")
	}
	if leave.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "leave request has already been "+string(leave.Status))
	}
	if leave.UserID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot review your own leave request")
	}
	now := time.Now().UTC()
	reviewer := actor.UserID
	leave.Status = models.LeaveStatus(req.Status)
	leave.ReviewedBy = &reviewer
	leave.ReviewNote = req.Note
	leave.ReviewedAt = &now
	leave.IsRead = false
	if err := s.repo.Review(ctx, leave); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "leave request is no longer pending")
		}
		return nil, internalError(err, "failed to review leave request")
	}
	publish(ctx, s.events, s.logger, realtime.EventLeaveRequestUpdated, leave)
	return leave, nil
}

// MarkRead flags a request as seen by its owner.
func (s *LeaveService) MarkRead(ctx context.Context, actor models.Actor, id string) (*models.LeaveRequest, error) {
	leave, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, lookupError(err, "leave request not found", "failed to update leave request")
	}
	leave.IsRead = true
	publish(ctx, s.events, s.logger, realtime.EventLeaveRequestUpdated, leave)
	return leave, nil
}

// Cancel withdraws a pending request. Only its owner may cancel it.
func (s *LeaveService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "leave request not found", "failed to load leave request")
	}
	if leave.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester may cancel a leave request")
	}
	if leave.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending leave requests can be cancelled")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "leave request is no longer pending")
		}
		return nil, internalError(err, "failed to cancel leave request")
	}
	publish(ctx, s.events, s.logger, realtime.EventLeaveRequestUpdated, leave)
	return leave, nil
}

func attendeeTypeFor(actor models.Actor) models.AttendeeType {
	if actor.Role == models.RoleStudent {
		return models.AttendeeStudent
	}
	return models.AttendeeStaff
}
