package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type scholarshipRepository interface {
	Create(ctx context.Context, s *models.Scholarship) error
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
	List(ctx context.Context, filter models.ScholarshipFilter) ([]models.Scholarship, int, error)
	Transition(ctx context.Context, s *models.Scholarship, entry *models.ScholarshipAudit) error
	TransitionTx(ctx context.Context, tx sqlx.ExtContext, s *models.Scholarship, entry *models.ScholarshipAudit) error
	AppendAudit(ctx context.Context, entry *models.ScholarshipAudit) error
	ListAudit(ctx context.Context, scholarshipID string) ([]models.ScholarshipAudit, error)
}

type scholarshipLedger interface {
	ApplyScholarship(ctx context.Context, actor models.Actor, sch *models.Scholarship, hook LedgerHook) (*models.Finance, error)
	RevokeScholarship(ctx context.Context, actor models.Actor, sch *models.Scholarship, hook LedgerHook) (*models.Finance, error)
}

// Audit actions recorded on scholarship transitions.
const (
	ScholarshipActionApply   = "APPLY"
	ScholarshipActionVerify  = "VERIFY"
	ScholarshipActionApprove = "APPROVE"
	ScholarshipActionReject  = "REJECT"
	ScholarshipActionRevoke  = "REVOKE"
)

var scholarshipTransitions = map[models.ScholarshipStatus][]models.ScholarshipStatus{
	models.ScholarshipPending:  {models.ScholarshipVerified, models.ScholarshipRejected},
	models.ScholarshipVerified: {models.ScholarshipApproved, models.ScholarshipRejected},
	models.ScholarshipApproved: {models.ScholarshipRejected},
}

// CanTransition reports whether a scholarship may move from one status to another.
func CanTransition(from, to models.ScholarshipStatus) bool {
	for _, allowed := range scholarshipTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ScholarshipService drives the scholarship approval workflow.
type ScholarshipService struct {
	repo      scholarshipRepository
	ledger    scholarshipLedger
	events    realtime.Sink
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScholarshipService constructs a ScholarshipService.
func NewScholarshipService(repo scholarshipRepository, ledger scholarshipLedger, events realtime.Sink, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScholarshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &ScholarshipService{repo: repo, ledger: ledger, events: events, metrics: metrics, validator: validate, logger: logger}
}

// Apply opens a Pending application.
func (s *ScholarshipService) Apply(ctx context.Context, actor models.Actor, req dto.ApplyScholarshipRequest) (*models.Scholarship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid scholarship payload")
	}
	if models.AmountType(req.AmountType) == models.AmountPercentage && req.Amount > 100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "percentage scholarships cannot exceed 100")
	}
	if actor.Role == models.RoleStudent && actor.UserID != req.StudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only apply for themselves")
	}

	sch := &models.Scholarship{
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		Type:         req.Type,
		Status:       models.ScholarshipPending,
		Amount:       req.Amount,
		AmountType:   models.AmountType(req.AmountType),
		Reason:       req.Reason,
	}
	if err := s.repo.Create(ctx, sch); err != nil {
		return nil, internalError(err, "failed to create scholarship")
	}
	entry := models.ScholarshipAudit{
		ScholarshipID: sch.ID,
		Action:        ScholarshipActionApply,
		ToStatus:      models.ScholarshipPending,
		PerformedBy:   actor.UserID,
	}
	if err := s.repo.AppendAudit(ctx, &entry); err != nil {
		s.logger.Warn("failed to append scholarship audit", zap.String("scholarship_id", sch.ID), zap.Error(err))
	} else {
		sch.AuditLog = []models.ScholarshipAudit{entry}
	}
	publish(ctx, s.events, s.logger, realtime.EventScholarshipUpdate, sch)
	return sch, nil
}

// Get returns a scholarship with its audit trail.
func (s *ScholarshipService) Get(ctx context.Context, actor models.Actor, id string) (*models.Scholarship, error) {
	sch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "scholarship not found", "failed to load scholarship")
	}
	if actor.Role == models.RoleStudent && actor.UserID != sch.StudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own scholarships")
	}
	audit, err := s.repo.ListAudit(ctx, sch.ID)
	if err != nil {
		return nil, internalError(err, "failed to load scholarship audit log")
	}
	sch.AuditLog = audit
	return sch, nil
}

// List returns scholarships matching the filter.
func (s *ScholarshipService) List(ctx context.Context, actor models.Actor, filter models.ScholarshipFilter) ([]models.Scholarship, *models.Pagination, error) {
	if actor.Role == models.RoleStudent {
		filter.StudentID = actor.UserID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list scholarships")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Verify moves a Pending application to Verified.
func (s *ScholarshipService) Verify(ctx context.Context, actor models.Actor, id, note string) (*models.Scholarship, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.ScholarshipVerified, ScholarshipActionVerify, note)
}

// Approve moves a Verified application to Approved and applies its discount to
// the student's ledger in the same transaction.
func (s *ScholarshipService) Approve(ctx context.Context, actor models.Actor, id, note string) (*models.Scholarship, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.ScholarshipApproved, ScholarshipActionApprove, note)
}

// Reject closes a Pending or Verified application. Rejecting an Approved
// scholarship is a revocation and requires an admin.
func (s *ScholarshipService) Reject(ctx context.Context, actor models.Actor, id, note string) (*models.Scholarship, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.ScholarshipRejected, ScholarshipActionReject, note)
}

// Revoke rejects an Approved scholarship and reverses its ledger discount.
func (s *ScholarshipService) Revoke(ctx context.Context, actor models.Actor, id, note string) (*models.Scholarship, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.ScholarshipRejected, ScholarshipActionRevoke, note)
}

// BulkVerify verifies each id independently and reports per-item outcomes.
func (s *ScholarshipService) BulkVerify(ctx context.Context, actor models.Actor, req dto.BulkVerifyRequest) ([]models.BulkItemResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk verify payload")
	}
	results := make([]models.BulkItemResult, 0, len(req.IDs))
	for i, id := range req.IDs {
		result := models.BulkItemResult{Index: i, ID: id}
		if _, err := s.transition(ctx, actor, id, models.ScholarshipVerified, ScholarshipActionVerify, req.Note); err != nil {
			result.Error = errorMessage(err)
			s.logger.Warn("bulk verify skipped scholarship", zap.String("scholarship_id", id), zap.Error(err))
		} else {
			result.Success = true
		}
		s.metrics.RecordBulkItem("scholarship_verify", result.Success)
		results = append(results, result)
	}
	return results, nil
}

func (s *ScholarshipService) transition(ctx context.Context, actor models.Actor, id string, to models.ScholarshipStatus, action, note string) (*models.Scholarship, error) {
	sch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "scholarship not found", "failed to load scholarship")
	}
	from := sch.Status
	if !CanTransition(from, to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("scholarship cannot move from %s to %s", from, to))
	}
	revoking := from == models.ScholarshipApproved
	if revoking && !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only an admin can revoke an approved scholarship")
	}
	if revoking {
		action = ScholarshipActionRevoke
	}
	if action == ScholarshipActionRevoke && !revoking {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("scholarship in status %s is not approved", from))
	}

	entry := &models.ScholarshipAudit{
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		PerformedBy: actor.UserID,
		Note:        note,
	}
	sch.Status = to
	hook := func(ctx context.Context, tx sqlx.ExtContext) error {
		if err := s.repo.TransitionTx(ctx, tx, sch, entry); err != nil {
			return transitionError(err, from)
		}
		return nil
	}

	switch {
	case to == models.ScholarshipApproved:
		if _, err := s.ledger.ApplyScholarship(ctx, actor, sch, hook); err != nil {
			return nil, err
		}
	case revoking:
		if _, err := s.ledger.RevokeScholarship(ctx, actor, sch, hook); err != nil {
			return nil, err
		}
	default:
		if err := s.repo.Transition(ctx, sch, entry); err != nil {
			return nil, transitionError(err, from)
		}
	}

	audit, err := s.repo.ListAudit(ctx, sch.ID)
	if err != nil {
		s.logger.Warn("failed to load scholarship audit log", zap.String("scholarship_id", sch.ID), zap.Error(err))
		audit = []models.ScholarshipAudit{*entry}
	}
	sch.AuditLog = audit
	publish(ctx, s.events, s.logger, realtime.EventScholarshipUpdate, sch)
	return sch, nil
}

// transitionError reports a lost race on the status guard as an invalid transition.
func transitionError(err error, from models.ScholarshipStatus) error {
	if isNoRows(err) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("scholarship is no longer %s", from))
	}
	return internalError(err, "failed to update scholarship")
}
