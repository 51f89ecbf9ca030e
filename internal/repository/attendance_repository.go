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

const attendanceColumns = `a.id, a.user_id, a.user_type, a.date, a.status, a.subject, a.remarks, a.marked_by, a.created_at, a.updated_at`

const attendanceJoins = `FROM attendance a
LEFT JOIN students s ON s.id = a.user_id
LEFT JOIN users u ON u.id = a.user_id`

const attendanceNames = `COALESCE(s.full_name, u.full_name, '') AS student_name, COALESCE(s.class_name, '') AS class_name, COALESCE(s.section, '') AS section`

// AttendanceRepository persists attendance records, one row per user and date.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts a record or overwrites the existing one for the same user and date.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, user_id, user_type, date, status, subject, remarks, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, date)
DO UPDATE SET user_type = EXCLUDED.user_type, status = EXCLUDED.status, subject = EXCLUDED.subject,
    remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
RETURNING id, user_id, user_type, date, status, subject, remarks, marked_by, created_at, updated_at`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.UserID, record.UserType, record.Date, record.Status, record.Subject,
		record.Remarks, record.MarkedBy, record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// FindByID returns a single record with roster metadata.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s, %s %s WHERE a.id = $1", attendanceColumns, attendanceNames, attendanceJoins)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

// List returns stored records matching the filter ordered by date desc then name.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where, args := attendanceWhere(filter)
	query := fmt.Sprintf("SELECT %s, %s %s WHERE %s ORDER BY a.date DESC, student_name ASC", attendanceColumns, attendanceNames, attendanceJoins, where)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// CountByStatus tallies a user's records per status in the closed date range.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, userID string, from, to *time.Time) (map[models.AttendanceStatus]int, error) {
	where, args := attendanceWhere(models.AttendanceFilter{UserID: userID, StartDate: from, EndDate: to})
	query := fmt.Sprintf("SELECT a.status, COUNT(*) AS total FROM attendance a WHERE %s GROUP BY a.status", where)
	var rows []struct {
		Status models.AttendanceStatus `db:"status"`
		Total  int                     `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	counts := make(map[models.AttendanceStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// Delete hard-deletes a record.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func attendanceWhere(filter models.AttendanceFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("s.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.UserType != "" {
		conditions = append(conditions, fmt.Sprintf("a.user_type = $%d", len(args)+1))
		args = append(args, filter.UserType)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	return strings.Join(conditions, " AND "), args
}
