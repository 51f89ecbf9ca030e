package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	CountByStatus(ctx context.Context, userID string, from, to *time.Time) (map[models.AttendanceStatus]int, error)
	Delete(ctx context.Context, id string) error
}

type rosterRepository interface {
	ListRoster(ctx context.Context, className, section string) ([]models.Student, error)
}

type attendanceSheetRenderer interface {
	AttendanceSheet(records []models.AttendanceRecord, format string) (*Download, error)
}

// AttendanceService records daily attendance and reconciles class rosters.
type AttendanceService struct {
	repo      attendanceRepository
	roster    rosterRepository
	documents attendanceSheetRenderer
	audit     auditWriter
	events    realtime.Sink
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, roster rosterRepository, documents attendanceSheetRenderer, audit auditWriter, events realtime.Sink, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &AttendanceService{repo: repo, roster: roster, documents: documents, audit: audit, events: events, metrics: metrics, validator: validate, logger: logger}
}

// Mark stores the attendance of one user for one date. Marking the same user
// and date again updates the existing record.
func (s *AttendanceService) Mark(ctx context.Context, actor models.Actor, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Upsert(ctx, s.buildRecord(actor, req.UserID, req.UserType, date, req.Status, req.Subject, req.Remarks))
	if err != nil {
		return nil, internalError(err, "failed to mark attendance")
	}
	publish(ctx, s.events, s.logger, realtime.EventAttendanceUpdate, record)
	return record, nil
}

// BulkMark marks each item for the request date. Invalid or failing items are
// skipped and reported; earlier items stay committed.
func (s *AttendanceService) BulkMark(ctx context.Context, actor models.Actor, req dto.BulkAttendanceRequest) (*models.BulkAttendanceResult, error) {
	if strings.TrimSpace(req.Date) == "" || len(req.Items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date and at least one item are required")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	result := &models.BulkAttendanceResult{
		Date:    dayKey(date),
		Results: make([]models.BulkItemResult, 0, len(req.Items)),
		Records: make([]models.AttendanceRecord, 0, len(req.Items)),
	}
	for i, item := range req.Items {
		outcome := models.BulkItemResult{Index: i, UserID: item.UserID}
		if err := s.validator.Struct(item); err != nil {
			outcome.Error = "invalid item: " + err.Error()
			s.logger.Warn("bulk attendance skipped item", zap.Int("index", i), zap.String("user_id", item.UserID), zap.Error(err))
		} else {
			userType := item.UserType
			if userType == "" {
				userType = string(models.AttendeeStudent)
			}
			record, err := s.repo.Upsert(ctx, s.buildRecord(actor, item.UserID, userType, date, item.Status, item.Subject, item.Remarks))
			if err != nil {
				outcome.Error = "failed to mark attendance: " + err.Error()
				s.logger.Warn("bulk attendance item failed", zap.Int("index", i), zap.String("user_id", item.UserID), zap.Error(err))
			} else {
				outcome.ID = record.ID
				outcome.Success = true
				result.Records = append(result.Records, *record)
			}
		}
		s.metrics.RecordBulkItem("attendance", outcome.Success)
		result.Results = append(result.Results, outcome)
	}

	if len(result.Records) > 0 {
		publish(ctx, s.events, s.logger, realtime.EventAttendanceUpdate, result)
	}
	return result, nil
}

// List returns attendance for the query. With class, section and a full date
// range the roster is reconciled so every student has one row per day.
func (s *AttendanceService) List(ctx context.Context, actor models.Actor, query dto.AttendanceQuery) ([]models.AttendanceRecord, error) {
	filter, err := s.buildFilter(actor, query)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list attendance")
	}
	if !filter.Reconcilable() {
		if stored == nil {
			stored = []models.AttendanceRecord{}
		}
		return stored, nil
	}

	dates := DateRange(*filter.StartDate, *filter.EndDate)
	students, err := s.roster.ListRoster(ctx, filter.ClassName, filter.Section)
	if err != nil {
		return nil, internalError(err, "failed to load class roster")
	}
	if filter.UserID != "" {
		students = onlyStudent(students, filter.UserID)
	}

	// Stored rows are already status-filtered; the full set is needed to tell
	// real entries from gaps.
	if filter.Status != "" {
		unfiltered := filter
		unfiltered.Status = ""
		if stored, err = s.repo.List(ctx, unfiltered); err != nil {
			return nil, internalError(err, "failed to list attendance")
		}
	}
	records := ReconcileAttendance(students, dates, stored)
	if filter.Status != "" {
		records = filterByStatus(records, filter.Status)
	}
	return records, nil
}

// Summary counts a user's attendance over an optional period. Late arrivals
// count as attended.
func (s *AttendanceService) Summary(ctx context.Context, actor models.Actor, userID, from, to string) (*models.AttendanceSummary, error) {
	if actor.Role == models.RoleStudent && actor.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own attendance")
	}
	start, err := parseOptionalDate("startDate", from)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate("endDate", to)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, userID, start, end)
	if err != nil {
		return nil, internalError(err, "failed to summarise attendance")
	}
	summary := &models.AttendanceSummary{
		UserID:  userID,
		Present: counts[models.AttendanceStatusPresent],
		Absent:  counts[models.AttendanceStatusAbsent],
		Late:    counts[models.AttendanceStatusLate],
	}
	summary.Total = summary.Present + summary.Absent + summary.Late
	if summary.Total > 0 {
		ratio := float64(summary.Present+summary.Late) / float64(summary.Total) * 100
		summary.Percent = math.Round(ratio*100) / 100
	}
	return summary, nil
}

// Download renders the listed records as a CSV or PDF file.
func (s *AttendanceService) Download(ctx context.Context, actor models.Actor, query dto.AttendanceQuery) (*Download, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format != "" && format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	records, err := s.List(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	download, err := s.documents.AttendanceSheet(records, format)
	if err != nil {
		return nil, internalError(err, "failed to render attendance")
	}
	return download, nil
}

// Delete removes a record. Only admins may delete attendance.
func (s *AttendanceService) Delete(ctx context.Context, actor models.Actor, id string) (*models.AttendanceRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "attendance record not found", "failed to load attendance record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, lookupError(err, "attendance record not found", "failed to delete attendance record")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.AuditResourceAttendance, id, record, nil)
	publish(ctx, s.events, s.logger, realtime.EventAttendanceDeleted, record)
	return record, nil
}

func (s *AttendanceService) buildRecord(actor models.Actor, userID, userType string, date time.Time, status string, subject *string, remarks string) *models.AttendanceRecord {
	markedBy := actor.UserID
	return &models.AttendanceRecord{
		UserID:   userID,
		UserType: models.AttendeeType(userType),
		Date:     date,
		Status:   models.AttendanceStatus(status),
		Subject:  subject,
		Remarks:  remarks,
		MarkedBy: &markedBy,
	}
}

func (s *AttendanceService) buildFilter(actor models.Actor, query dto.AttendanceQuery) (models.AttendanceFilter, error) {
	filter := models.AttendanceFilter{
		ClassName: strings.TrimSpace(query.ClassName),
		Section:   strings.TrimSpace(query.Section),
		UserID:    strings.TrimSpace(query.UserID),
		UserType:  models.AttendeeType(query.UserType),
		Status:    models.AttendanceStatus(query.Status),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, "status must be present, absent or late")
	}
	if filter.UserType != "" && filter.UserType != models.AttendeeStudent && filter.UserType != models.AttendeeStaff {
		return filter, appErrors.Clone(appErrors.ErrValidation, "userType must be student or staff")
	}
	var err error
	if filter.StartDate, err = parseOptionalDate("startDate", query.StartDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalDate("endDate", query.EndDate); err != nil {
		return filter, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	if actor.Role == models.RoleStudent {
		filter.UserID = actor.UserID
	}
	if filter.Reconcilable() && daySpan(*filter.StartDate, *filter.EndDate) > maxReconcileDays {
		return filter, appErrors.Clone(appErrors.ErrValidation, "date range cannot exceed one year")
	}
	return filter, nil
}

func onlyStudent(students []models.Student, id string) []models.Student {
	for _, st := range students {
		if st.ID == id {
			return []models.Student{st}
		}
	}
	return nil
}

func filterByStatus(records []models.AttendanceRecord, status models.AttendanceStatus) []models.AttendanceRecord {
	out := records[:0]
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
