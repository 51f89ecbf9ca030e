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

const leaveColumns = `id, user_id, user_type, leave_type, start_date, end_date, reason, status, reviewed_by, review_note, reviewed_at, is_read, created_at, updated_at`

// LeaveRepository persists leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new request.
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	query := `INSERT INTO leave_requests (` + leaveColumns + `)
VALUES (:id, :user_id, :user_type, :leave_type, :start_date, :end_date, :reason, :status, :reviewed_by, :review_note, :reviewed_at, :is_read, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`
	var req models.LeaveRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find leave request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.UserType != "" {
		conditions = append(conditions, fmt.Sprintf("user_type = $%d", len(args)+1))
		args = append(args, filter.UserType)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Unread != nil {
		conditions = append(conditions, fmt.Sprintf("is_read = $%d", len(args)+1))
		args = append(args, !*filter.Unread)
	}
	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize, 20, 100)

	query := fmt.Sprintf("SELECT %s FROM leave_requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", leaveColumns, where, limit, offset)
	var items []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM leave_requests WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}
	return items, total, nil
}

// Review stores the reviewer decision, only if the request is still pending.
// It returns sql.ErrNoRows when another reviewer got there first.
func (r *LeaveRepository) Review(ctx context.Context, req *models.LeaveRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leave_requests SET status = :status, reviewed_by = :reviewed_by, review_note = :review_note,
reviewed_at = :reviewed_at, is_read = FALSE, updated_at = :updated_at WHERE id = :id AND status = 'pending'`
	res, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("review leave request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkRead flags a request as seen by its owner.
func (r *LeaveRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE leave_requests SET is_read = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark leave request read: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a pending request.
func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
