package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type markRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) (*models.Mark, error)
	ListByExam(ctx context.Context, examID string) ([]models.Mark, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Mark, error)
}

type examLookup interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

// GradeFor maps a percentage score to a letter grade.
func GradeFor(percent float64) string {
	switch {
	case percent >= 90:
		return "A+"
	case percent >= 80:
		return "A"
	case percent >= 70:
		return "B"
	case percent >= 60:
		return "C"
	case percent >= 50:
		return "D"
	default:
		return "F"
	}
}

// MarkService records exam scores.
type MarkService struct {
	repo      markRepository
	exams     examLookup
	events    realtime.Sink
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarkService constructs a MarkService.
func NewMarkService(repo markRepository, exams examLookup, events realtime.Sink, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &MarkService{repo: repo, exams: exams, events: events, metrics: metrics, validator: validate, logger: logger}
}

// Record stores one score. Re-recording replaces the previous score.
func (s *MarkService) Record(ctx context.Context, actor models.Actor, req dto.MarkRequest) (*models.Mark, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid mark payload")
	}
	exam, err := s.loadExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}
	mark, err := s.store(ctx, actor, exam, req.StudentID, req.MarksObtained, req.Remarks)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, realtime.EventMarksUpdate, mark)
	return mark, nil
}

// BulkRecord stores scores for one exam item by item. A failing item does not
// stop the rest.
func (s *MarkService) BulkRecord(ctx context.Context, actor models.Actor, req dto.BulkMarkRequest) ([]models.BulkItemResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(struct {
		ExamID string `validate:"required"`
		Count  int    `validate:"gt=0"`
	}{req.ExamID, len(req.Items)}); err != nil {
		return nil, validationError(err, "examId and at least one item are required")
	}
	exam, err := s.loadExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	results := make([]models.BulkItemResult, 0, len(req.Items))
	stored := make([]models.Mark, 0, len(req.Items))
	for i, item := range req.Items {
		result := models.BulkItemResult{Index: i, UserID: item.StudentID}
		if err := s.validator.Struct(item); err != nil {
			result.Error = errorMessage(validationError(err, "invalid mark item"))
		} else if mark, err := s.store(ctx, actor, exam, item.StudentID, item.MarksObtained, item.Remarks); err != nil {
			result.Error = errorMessage(err)
		} else {
			result.Success = true
			result.ID = mark.ID
			stored = append(stored, *mark)
		}
		s.metrics.RecordBulkItem("marks", result.Success)
		results = append(results, result)
	}
	if len(stored) > 0 {
		publish(ctx, s.events, s.logger, realtime.EventMarksUpdate, stored)
	}
	return results, nil
}

// ListByExam returns every score of an exam.
func (s *MarkService) ListByExam(ctx context.Context, actor models.Actor, examID string) ([]models.Mark, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	marks, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return nil, internalError(err, "failed to list marks")
	}
	return marks, nil
}

// ListByStudent returns a student's scores. Students only see their own.
func (s *MarkService) ListByStudent(ctx context.Context, actor models.Actor, studentID string) ([]models.Mark, error) {
	if actor.Role == models.RoleStudent && actor.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own marks")
	}
	marks, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, internalError(err, "failed to list marks")
	}
	return marks, nil
}

func (s *MarkService) loadExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if exam.Status == models.ExamStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam is cancelled")
	}
	return exam, nil
}

func (s *MarkService) store(ctx context.Context, actor models.Actor, exam *models.Exam, studentID string, obtained float64, remarks string) (*models.Mark, error) {
	if obtained < 0 || obtained > float64(exam.TotalMarks) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marksObtained must be between 0 and the exam's total marks")
	}
	percent := 0.0
	if exam.TotalMarks > 0 {
		percent = math.Round(obtained/float64(exam.TotalMarks)*10000) / 100
	}
	mark, err := s.repo.Upsert(ctx, &models.Mark{
		ExamID:        exam.ID,
		StudentID:     studentID,
		MarksObtained: obtained,
		Grade:         GradeFor(percent),
		Remarks:       remarks,
		EnteredBy:     actor.UserID,
	})
	if err != nil {
		return nil, internalError(err, "failed to record mark")
	}
	return mark, nil
}
