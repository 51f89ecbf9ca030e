package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

const examColumns = `id, exam_name, exam_type, subject, class_name, date, start_time, end_time, duration, hall, invigilators, total_marks, status, created_by, created_at, updated_at`

// ExamRepository persists scheduled exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, exam_name, exam_type, subject, class_name, date, start_time, end_time, duration, hall, invigilators, total_marks, status, created_by, created_at, updated_at)
VALUES (:id, :exam_name, :exam_type, :subject, :class_name, :date, :start_time, :end_time, :duration, :hall, :invigilators, :total_marks, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET exam_name = :exam_name, exam_type = :exam_type, subject = :subject, class_name = :class_name,
date = :date, start_time = :start_time, end_time = :end_time, duration = :duration, hall = :hall,
invigilators = :invigilators, total_marks = :total_marks, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns an exam by identifier.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// ListActiveOnDate returns every non-cancelled exam on the given date across all classes.
func (r *ExamRepository) ListActiveOnDate(ctx context.Context, date time.Time) ([]models.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE date = $1 AND status <> $2 ORDER BY start_time ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, date, models.ExamStatusCancelled); err != nil {
		return nil, fmt.Errorf("list exams on date: %w", err)
	}
	return exams, nil
}

// List returns exams matching the filter.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize, 20, 100)

	query := fmt.Sprintf("SELECT %s FROM exams WHERE %s ORDER BY date ASC, start_time ASC LIMIT %d OFFSET %d", examColumns, where, limit, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM exams WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// Delete removes an exam and its marks.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
