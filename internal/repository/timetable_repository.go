package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

const periodColumns = `id, class_name, section, day, period_number, subject, teacher, created_at, updated_at`

// TimetableRepository persists timetable periods.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Upsert stores a period, replacing whatever occupied the same slot.
func (r *TimetableRepository) Upsert(ctx context.Context, period *models.Period) (*models.Period, error) {
	now := time.Now().UTC()
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now
	query := `INSERT INTO timetable_periods (` + periodColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (class_name, section, day, period_number)
DO UPDATE SET subject = EXCLUDED.subject, teacher = EXCLUDED.teacher, updated_at = EXCLUDED.updated_at
RETURNING ` + periodColumns
	var stored models.Period
	if err := r.db.GetContext(ctx, &stored, query,
		period.ID, period.ClassName, period.Section, period.Day, period.PeriodNumber, period.Subject, period.Teacher, period.CreatedAt, period.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert period: %w", err)
	}
	return &stored, nil
}

// FindByID returns a period by identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM timetable_periods WHERE id = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find period: %w", err)
	}
	return &period, nil
}

// ListByClass returns the stored periods of a class section.
func (r *TimetableRepository) ListByClass(ctx context.Context, className, section string) ([]models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM timetable_periods WHERE class_name = $1 AND section = $2 ORDER BY day ASC, period_number ASC`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, className, section); err != nil {
		return nil, fmt.Errorf("list class periods: %w", err)
	}
	return periods, nil
}

// ListByTeacher returns every period a teacher is scheduled for.
func (r *TimetableRepository) ListByTeacher(ctx context.Context, teacher string) ([]models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM timetable_periods WHERE teacher = $1 ORDER BY period_number ASC, class_name ASC`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, teacher); err != nil {
		return nil, fmt.Errorf("list teacher periods: %w", err)
	}
	return periods, nil
}

// Delete removes a period.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
