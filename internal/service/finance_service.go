package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/repository"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type financeRepository interface {
	Mutate(ctx context.Context, studentID, academicYear string, create bool, fn repository.LedgerMutation) (*models.Finance, error)
	Get(ctx context.Context, studentID, academicYear string) (*models.Finance, error)
	List(ctx context.Context, filter models.FinanceFilter) ([]models.Finance, int, error)
	ListTransactions(ctx context.Context, financeID string) ([]models.FinanceTransaction, error)
}

type ledgerScholarships interface {
	ListApproved(ctx context.Context, studentID, academicYear string) ([]models.Scholarship, error)
	UpdateAppliedAmountTx(ctx context.Context, tx sqlx.ExtContext, id string, amount int64) error
}

// LedgerHook runs inside the ledger transaction after the ledger row changed.
type LedgerHook func(ctx context.Context, tx sqlx.ExtContext) error

// FinanceService maintains per-student fee ledgers.
type FinanceService struct {
	repo         financeRepository
	scholarships ledgerScholarships
	audit        auditWriter
	events       realtime.Sink
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(repo financeRepository, scholarships ledgerScholarships, audit auditWriter, events realtime.Sink, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &FinanceService{repo: repo, scholarships: scholarships, audit: audit, events: events, metrics: metrics, validator: validate, logger: logger}
}

// AssignFee creates the ledger for a student and year or replaces its total fee.
// The discount of every approved scholarship is derived again from the new total.
func (s *FinanceService) AssignFee(ctx context.Context, actor models.Actor, req dto.AssignFeeRequest) (*models.Finance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid fee payload")
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Fee assigned for %s", req.AcademicYear)
	}
	return s.mutate(ctx, actor, req.StudentID, req.AcademicYear, true, models.TransactionFeeAssigned, func(ctx context.Context, tx sqlx.ExtContext, f *models.Finance) ([]models.FinanceTransaction, error) {
		f.TotalFee = req.TotalFee
		if err := s.rederiveDiscount(ctx, tx, f); err != nil {
			return nil, err
		}
		return []models.FinanceTransaction{{
			Type:        models.TransactionFeeAssigned,
			Amount:      req.TotalFee,
			Description: description,
			CreatedBy:   actor.UserID,
		}}, nil
	})
}

// RecordPayment adds a payment to an existing ledger. Payments above the
// pending amount are rejected.
func (s *FinanceService) RecordPayment(ctx context.Context, actor models.Actor, req dto.PaymentRequest) (*models.Finance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	description := req.Description
	if description == "" {
		description = "Fee payment"
	}
	return s.mutate(ctx, actor, req.StudentID, req.AcademicYear, false, models.TransactionPayment, func(ctx context.Context, _ sqlx.ExtContext, f *models.Finance) ([]models.FinanceTransaction, error) {
		if req.Amount > f.PendingAmount {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("payment of %d exceeds pending amount %d", req.Amount, f.PendingAmount))
		}
		f.PaidAmount += req.Amount
		return []models.FinanceTransaction{{
			Type:        models.TransactionPayment,
			Amount:      req.Amount,
			Description: description,
			Reference:   req.Reference,
			CreatedBy:   actor.UserID,
		}}, nil
	})
}

// ApplyScholarship adds the scholarship's discount to its ledger and records the
// applied amount on sch. hook runs in the same transaction, after the amount is
// known.
func (s *FinanceService) ApplyScholarship(ctx context.Context, actor models.Actor, sch *models.Scholarship, hook LedgerHook) (*models.Finance, error) {
	return s.mutate(ctx, actor, sch.StudentID, sch.AcademicYear, false, models.TransactionScholarshipApplied, func(ctx context.Context, tx sqlx.ExtContext, f *models.Finance) ([]models.FinanceTransaction, error) {
		discount := ScholarshipDiscount(*sch, f.TotalFee)
		f.ScholarshipDiscount += discount
		sch.AppliedAmount = discount
		if hook != nil {
			if err := hook(ctx, tx); err != nil {
				return nil, err
			}
		}
		return []models.FinanceTransaction{{
			Type:        models.TransactionScholarshipApplied,
			Amount:      discount,
			Description: fmt.Sprintf("%s scholarship approved", sch.Type),
			Reference:   sch.ID,
			CreatedBy:   actor.UserID,
		}}, nil
	})
}

// RevokeScholarship reverses the amount sch currently contributes to the ledger.
// The original ledger entry is kept; a reversing entry is appended.
func (s *FinanceService) RevokeScholarship(ctx context.Context, actor models.Actor, sch *models.Scholarship, hook LedgerHook) (*models.Finance, error) {
	return s.mutate(ctx, actor, sch.StudentID, sch.AcademicYear, false, models.TransactionScholarshipRevoked, func(ctx context.Context, tx sqlx.ExtContext, f *models.Finance) ([]models.FinanceTransaction, error) {
		// AssignFee keeps applied amounts in step with the locked total.
		sch.AppliedAmount = ScholarshipDiscount(*sch, f.TotalFee)
		f.ScholarshipDiscount -= sch.AppliedAmount
		if hook != nil {
			if err := hook(ctx, tx); err != nil {
				return nil, err
			}
		}
		return []models.FinanceTransaction{{
			Type:        models.TransactionScholarshipRevoked,
			Amount:      sch.AppliedAmount,
			Description: fmt.Sprintf("%s scholarship revoked", sch.Type),
			Reference:   sch.ID,
			CreatedBy:   actor.UserID,
		}}, nil
	})
}

// rederiveDiscount rebuilds the ledger discount from the approved scholarships
// against f.TotalFee and stores each scholarship's refreshed applied amount in tx.
func (s *FinanceService) rederiveDiscount(ctx context.Context, tx sqlx.ExtContext, f *models.Finance) error {
	if s.scholarships == nil {
		return nil
	}
	approved, err := s.scholarships.ListApproved(ctx, f.StudentID, f.AcademicYear)
	if err != nil {
		return internalError(err, "failed to load scholarships")
	}
	var discount int64
	for _, sch := range approved {
		amount := ScholarshipDiscount(sch, f.TotalFee)
		if amount != sch.AppliedAmount {
			if err := s.scholarships.UpdateAppliedAmountTx(ctx, tx, sch.ID, amount); err != nil {
				return internalError(err, "failed to update scholarship amount")
			}
		}
		discount += amount
	}
	f.ScholarshipDiscount = discount
	return nil
}

// Get returns a ledger with its transactions and approved scholarships.
func (s *FinanceService) Get(ctx context.Context, actor models.Actor, studentID, academicYear string) (*models.Finance, error) {
	if actor.Role == models.RoleStudent && actor.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own fees")
	}
	ledger, err := s.repo.Get(ctx, studentID, academicYear)
	if err != nil {
		return nil, lookupError(err, "finance record not found", "failed to load finance record")
	}
	if err := s.hydrate(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// List returns ledgers matching the filter.
func (s *FinanceService) List(ctx context.Context, actor models.Actor, filter models.FinanceFilter) ([]models.Finance, *models.Pagination, error) {
	if actor.Role == models.RoleStudent {
		filter.StudentID = actor.UserID
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list finance records")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *FinanceService) mutate(ctx context.Context, actor models.Actor, studentID, academicYear string, create bool, kind models.TransactionType, fn repository.LedgerMutation) (*models.Finance, error) {
	var before models.Finance
	ledger, err := s.repo.Mutate(ctx, studentID, academicYear, create, func(ctx context.Context, tx sqlx.ExtContext, f *models.Finance) ([]models.FinanceTransaction, error) {
		before = *f
		entries, err := fn(ctx, tx, f)
		if err != nil {
			return nil, err
		}
		Recompute(f)
		return entries, nil
	})
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "finance record not found; assign a fee first")
		}
		return nil, passThrough(err, "failed to update finance record")
	}
	s.metrics.RecordLedgerOperation(string(kind))

	if err := s.hydrate(ctx, ledger); err != nil {
		s.logger.Warn("failed to load ledger details", zap.String("finance_id", ledger.ID), zap.Error(err))
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.AuditResourceFinance, ledger.ID, ledgerTotals(before), ledgerTotals(*ledger))
	publish(ctx, s.events, s.logger, realtime.EventFinanceUpdate, ledger)
	return ledger, nil
}

func (s *FinanceService) hydrate(ctx context.Context, ledger *models.Finance) error {
	transactions, err := s.repo.ListTransactions(ctx, ledger.ID)
	if err != nil {
		return internalError(err, "failed to load finance transactions")
	}
	ledger.Transactions = transactions
	if s.scholarships != nil {
		scholarships, err := s.scholarships.ListApproved(ctx, ledger.StudentID, ledger.AcademicYear)
		if err != nil {
			return internalError(err, "failed to load scholarships")
		}
		ledger.Scholarships = scholarships
	}
	if ledger.Transactions == nil {
		ledger.Transactions = []models.FinanceTransaction{}
	}
	if ledger.Scholarships == nil {
		ledger.Scholarships = []models.Scholarship{}
	}
	return nil
}

func ledgerTotals(f models.Finance) map[string]int64 {
	return map[string]int64{
		"totalFee":            f.TotalFee,
		"scholarshipDiscount": f.ScholarshipDiscount,
		"finalPayableFee":     f.FinalPayableFee,
		"paidAmount":          f.PaidAmount,
		"pendingAmount":       f.PendingAmount,
	}
}
