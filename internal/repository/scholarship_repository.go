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

const scholarshipColumns = `id, student_id, academic_year, type, status, amount, amount_type, applied_amount, reason, created_at, updated_at`

// ScholarshipRepository persists scholarship applications and their audit trail.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository constructs the repository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

// Create inserts a new application.
func (r *ScholarshipRepository) Create(ctx context.Context, s *models.Scholarship) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	const query = `INSERT INTO scholarships (id, student_id, academic_year, type, status, amount, amount_type, applied_amount, reason, created_at, updated_at)
VALUES (:id, :student_id, :academic_year, :type, :status, :amount, :amount_type, :applied_amount, :reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create scholarship: %w", err)
	}
	return nil
}

// FindByID returns an application by identifier.
func (r *ScholarshipRepository) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE id = $1`
	var s models.Scholarship
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find scholarship: %w", err)
	}
	return &s, nil
}

// List returns applications matching the filter.
func (r *ScholarshipRepository) List(ctx context.Context, filter models.ScholarshipFilter) ([]models.Scholarship, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize, 20, 100)

	query := fmt.Sprintf("SELECT %s FROM scholarships WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", scholarshipColumns, where, limit, offset)
	var items []models.Scholarship
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scholarships: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM scholarships WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count scholarships: %w", err)
	}
	return items, total, nil
}

// ListApproved returns the approved scholarships attached to a ledger.
func (r *ScholarshipRepository) ListApproved(ctx context.Context, studentID, academicYear string) ([]models.Scholarship, error) {
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE student_id = $1 AND academic_year = $2 AND status = $3 ORDER BY updated_at ASC`
	var items []models.Scholarship
	if err := r.db.SelectContext(ctx, &items, query, studentID, academicYear, models.ScholarshipApproved); err != nil {
		return nil, fmt.Errorf("list approved scholarships: %w", err)
	}
	return items, nil
}

// Transition stores the new status and appends the audit entry in one transaction.
func (r *ScholarshipRepository) Transition(ctx context.Context, s *models.Scholarship, entry *models.ScholarshipAudit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scholarship tx: %w", err)
	}
	if err := r.TransitionTx(ctx, tx, s, entry); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scholarship tx: %w", err)
	}
	return nil
}

// TransitionTx is Transition within a caller-owned transaction. The row only
// changes while it is still in entry.FromStatus; otherwise sql.ErrNoRows is
// returned and nothing is written.
func (r *ScholarshipRepository) TransitionTx(ctx context.Context, tx sqlx.ExtContext, s *models.Scholarship, entry *models.ScholarshipAudit) error {
	s.UpdatedAt = time.Now().UTC()
	const update = `UPDATE scholarships SET status = $1, applied_amount = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, update, s.Status, s.AppliedAmount, s.UpdatedAt, s.ID, entry.FromStatus)
	if err != nil {
		return fmt.Errorf("update scholarship status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.ScholarshipID = s.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.UpdatedAt
	}
	const insert = `INSERT INTO scholarship_audits (id, scholarship_id, action, from_status, to_status, performed_by, note, created_at)
VALUES (:id, :scholarship_id, :action, :from_status, :to_status, :performed_by, :note, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, insert, entry); err != nil {
		return fmt.Errorf("append scholarship audit: %w", err)
	}
	return nil
}

// UpdateAppliedAmountTx stores the discount an approved scholarship currently
// contributes to its ledger.
func (r *ScholarshipRepository) UpdateAppliedAmountTx(ctx context.Context, tx sqlx.ExtContext, id string, amount int64) error {
	const update = `UPDATE scholarships SET applied_amount = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	if _, err := tx.ExecContext(ctx, update, amount, time.Now().UTC(), id, models.ScholarshipApproved); err != nil {
		return fmt.Errorf("update scholarship applied amount: %w", err)
	}
	return nil
}

// AppendAudit records an audit entry without a status change.
func (r *ScholarshipRepository) AppendAudit(ctx context.Context, entry *models.ScholarshipAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO scholarship_audits (id, scholarship_id, action, from_status, to_status, performed_by, note, created_at)
VALUES (:id, :scholarship_id, :action, :from_status, :to_status, :performed_by, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("append scholarship audit: %w", err)
	}
	return nil
}

// ListAudit returns the audit trail of an application, oldest first.
func (r *ScholarshipRepository) ListAudit(ctx context.Context, scholarshipID string) ([]models.ScholarshipAudit, error) {
	const query = `SELECT id, scholarship_id, action, from_status, to_status, performed_by, note, created_at FROM scholarship_audits WHERE scholarship_id = $1 ORDER BY created_at ASC`
	var entries []models.ScholarshipAudit
	if err := r.db.SelectContext(ctx, &entries, query, scholarshipID); err != nil {
		return nil, fmt.Errorf("list scholarship audit: %w", err)
	}
	return entries, nil
}
