package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

// MarkRepository persists exam scores.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert stores a score, replacing any previous score for the same exam and student.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) (*models.Mark, error) {
	now := time.Now().UTC()
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now
	const query = `INSERT INTO marks (id, exam_id, student_id, marks_obtained, grade, remarks, entered_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (exam_id, student_id)
DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, grade = EXCLUDED.grade, remarks = EXCLUDED.remarks,
    entered_by = EXCLUDED.entered_by, updated_at = EXCLUDED.updated_at
RETURNING id, exam_id, student_id, marks_obtained, grade, remarks, entered_by, created_at, updated_at`
	var stored models.Mark
	if err := r.db.GetContext(ctx, &stored, query,
		mark.ID, mark.ExamID, mark.StudentID, mark.MarksObtained, mark.Grade, mark.Remarks, mark.EnteredBy, mark.CreatedAt, mark.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert mark: %w", err)
	}
	return &stored, nil
}

// ListByExam returns all scores for an exam ordered by student name.
func (r *MarkRepository) ListByExam(ctx context.Context, examID string) ([]models.Mark, error) {
	const query = `SELECT m.id, m.exam_id, m.student_id, m.marks_obtained, m.grade, m.remarks, m.entered_by, m.created_at, m.updated_at,
COALESCE(s.full_name, '') AS student_name
FROM marks m LEFT JOIN students s ON s.id = m.student_id
WHERE m.exam_id = $1 ORDER BY student_name ASC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, examID); err != nil {
		return nil, fmt.Errorf("list marks by exam: %w", err)
	}
	return marks, nil
}

// ListByStudent returns a student's scores, most recent first.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Mark, error) {
	const query = `SELECT m.id, m.exam_id, m.student_id, m.marks_obtained, m.grade, m.remarks, m.entered_by, m.created_at, m.updated_at
FROM marks m WHERE m.student_id = $1 ORDER BY m.updated_at DESC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, studentID); err != nil {
		return nil, fmt.Errorf("list marks by student: %w", err)
	}
	return marks, nil
}
