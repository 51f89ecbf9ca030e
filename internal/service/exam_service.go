package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListActiveOnDate(ctx context.Context, date time.Time) ([]models.Exam, error)
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type hallTicketIssuer interface {
	HallTicket(ctx context.Context, exam *models.Exam, student *models.Student) (*models.HallTicket, error)
}

// ExamService schedules exams without class or invigilator clashes.
type ExamService struct {
	repo      examRepository
	students  studentLookup
	tickets   hallTicketIssuer
	audit     auditWriter
	events    realtime.Sink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, students studentLookup, tickets hallTicketIssuer, audit auditWriter, events realtime.Sink, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &ExamService{repo: repo, students: students, tickets: tickets, audit: audit, events: events, validator: validate, logger: logger}
}

// Create schedules a new exam.
func (s *ExamService) Create(ctx context.Context, actor models.Actor, req dto.ExamRequest) (*models.Exam, error) {
	exam, err := s.buildExam(req)
	if err != nil {
		return nil, err
	}
	exam.Status = models.ExamStatusScheduled
	exam.CreatedBy = actor.UserID
	if err := s.ensureNoConflict(ctx, exam); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, internalError(err, "failed to create exam")
	}
	publish(ctx, s.events, s.logger, realtime.EventExamCreated, exam)
	return exam, nil
}

// Update replaces the schedule details of an exam. The exam's own previous slot
// never counts as a conflict.
func (s *ExamService) Update(ctx context.Context, actor models.Actor, id string, req dto.ExamRequest) (*models.Exam, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	exam, err := s.buildExam(req)
	if err != nil {
		return nil, err
	}
	exam.ID = current.ID
	exam.Status = current.Status
	exam.CreatedBy = current.CreatedBy
	exam.CreatedAt = current.CreatedAt
	if err := s.ensureNoConflict(ctx, exam); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, lookupError(err, "exam not found", "failed to update exam")
	}
	publish(ctx, s.events, s.logger, realtime.EventExamUpdated, exam)
	return exam, nil
}

// UpdateStatus moves an exam through its lifecycle. Reactivating a cancelled
// exam re-runs the conflict check.
func (s *ExamService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.ExamStatusRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam status")
	}
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	next := models.ExamStatus(req.Status)
	if exam.Status == models.ExamStatusCancelled && next != models.ExamStatusCancelled {
		candidate := *exam
		candidate.Status = next
		if err := s.ensureNoConflict(ctx, &candidate); err != nil {
			return nil, err
		}
	}
	exam.Status = next
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, lookupError(err, "exam not found", "failed to update exam")
	}
	publish(ctx, s.events, s.logger, realtime.EventExamUpdated, exam)
	return exam, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	return exam, nil
}

// List returns exams matching the query.
func (s *ExamService) List(ctx context.Context, query dto.ExamQuery) ([]models.Exam, *models.Pagination, error) {
	filter := models.ExamFilter{
		ClassName: query.ClassName,
		Subject:   query.Subject,
		Status:    models.ExamStatus(query.Status),
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam status")
	}
	var err error
	if filter.DateFrom, err = parseOptionalDate("dateFrom", query.DateFrom); err != nil {
		return nil, nil, err
	}
	if filter.DateTo, err = parseOptionalDate("dateTo", query.DateTo); err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list exams")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete removes an exam. Only admins may delete exams.
func (s *ExamService) Delete(ctx context.Context, actor models.Actor, id string) (*models.Exam, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, lookupError(err, "exam not found", "failed to delete exam")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.AuditResourceExam, id, exam, nil)
	publish(ctx, s.events, s.logger, realtime.EventExamDeleted, exam)
	return exam, nil
}

// HallTicket issues the admission document of a student for an exam of their class.
func (s *ExamService) HallTicket(ctx context.Context, actor models.Actor, examID, studentID string) (*models.HallTicket, error) {
	if actor.Role == models.RoleStudent && actor.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only download their own hall ticket")
	}
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if exam.Status == models.ExamStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam is cancelled")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	if student.ClassName != exam.ClassName {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the exam's class")
	}
	ticket, err := s.tickets.HallTicket(ctx, exam, student)
	if err != nil {
		return nil, internalError(err, "failed to generate hall ticket")
	}
	return ticket, nil
}

func (s *ExamService) buildExam(req dto.ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, validationError(err, "startTime must use HH:MM 24-hour format")
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return nil, validationError(err, "endTime must use HH:MM 24-hour format")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	duration := req.Duration
	if duration == 0 {
		duration = end - start
	}
	invigilators := pq.StringArray(req.Invigilators)
	if invigilators == nil {
		invigilators = pq.StringArray{}
	}
	return &models.Exam{
		ExamName:     req.ExamName,
		ExamType:     req.ExamType,
		Subject:      req.Subject,
		ClassName:    req.ClassName,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Duration:     duration,
		Hall:         req.Hall,
		Invigilators: invigilators,
		TotalMarks:   req.TotalMarks,
	}, nil
}

func (s *ExamService) ensureNoConflict(ctx context.Context, exam *models.Exam) error {
	existing, err := s.repo.ListActiveOnDate(ctx, exam.Date)
	if err != nil {
		return internalError(err, "failed to check exam conflicts")
	}
	if conflict := FindExamConflict(*exam, existing); conflict != nil {
		return wrapExamConflict(conflict)
	}
	return nil
}

func wrapExamConflict(conflict *models.ExamConflictError) error {
	return appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Error())
}

// AsExamConflict extracts the conflict detail from an error returned by ExamService.
func AsExamConflict(err error) (*models.ExamConflictError, bool) {
	var conflict *models.ExamConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
