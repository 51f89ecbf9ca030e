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

var (
	// ErrCapacityReached is returned when a hostel or route is full.
	ErrCapacityReached = errors.New("capacity reached")
	// ErrAlreadyAssigned is returned when a student already holds an active place.
	ErrAlreadyAssigned = errors.New("student already assigned")
)

const hostelSelect = `SELECT h.id, h.name, h.type, h.capacity, h.warden, h.created_at, h.updated_at,
(SELECT COUNT(*) FROM hostel_allocations a WHERE a.hostel_id = h.id AND a.active) AS occupied
FROM hostels h`

// HostelRepository persists hostels and room allocations.
type HostelRepository struct {
	db *sqlx.DB
}

// NewHostelRepository constructs the repository.
func NewHostelRepository(db *sqlx.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

// Create inserts a hostel.
func (r *HostelRepository) Create(ctx context.Context, h *models.Hostel) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now
	const query = `INSERT INTO hostels (id, name, type, capacity, warden, created_at, updated_at) VALUES (:id, :name, :type, :capacity, :warden, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("create hostel: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a hostel.
func (r *HostelRepository) Update(ctx context.Context, h *models.Hostel) error {
	h.UpdatedAt = time.Now().UTC()
	const query = `UPDATE hostels SET name = :name, type = :type, capacity = :capacity, warden = :warden, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, h)
	if err != nil {
		return fmt.Errorf("update hostel: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns a hostel with its current occupancy.
func (r *HostelRepository) FindByID(ctx context.Context, id string) (*models.Hostel, error) {
	var h models.Hostel
	if err := r.db.GetContext(ctx, &h, hostelSelect+` WHERE h.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find hostel: %w", err)
	}
	return &h, nil
}

// List returns every hostel with occupancy.
func (r *HostelRepository) List(ctx context.Context) ([]models.Hostel, error) {
	var hostels []models.Hostel
	if err := r.db.SelectContext(ctx, &hostels, hostelSelect+` ORDER BY h.name ASC`); err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	return hostels, nil
}

// Delete removes a hostel that has no active allocations.
func (r *HostelRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hostels WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM hostel_allocations WHERE hostel_id = $1 AND active)`, id)
	if err != nil {
		return fmt.Errorf("delete hostel: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Allocate places a student in a hostel, enforcing capacity under a row lock.
func (r *HostelRepository) Allocate(ctx context.Context, alloc *models.HostelAllocation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var capacity int
	if err := tx.GetContext(ctx, &capacity, `SELECT capacity FROM hostels WHERE id = $1 FOR UPDATE`, alloc.HostelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock hostel: %w", err)
	}
	var existing int
	if err := tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM hostel_allocations WHERE student_id = $1 AND active`, alloc.StudentID); err != nil {
		return fmt.Errorf("check student allocation: %w", err)
	}
	if existing > 0 {
		return ErrAlreadyAssigned
	}
	var occupied int
	if err := tx.GetContext(ctx, &occupied, `SELECT COUNT(*) FROM hostel_allocations WHERE hostel_id = $1 AND active`, alloc.HostelID); err != nil {
		return fmt.Errorf("count hostel occupancy: %w", err)
	}
	if occupied >= capacity {
		return ErrCapacityReached
	}

	if alloc.ID == "" {
		alloc.ID = uuid.NewString()
	}
	alloc.AllocatedAt = time.Now().UTC()
	alloc.Active = true
	const insert = `INSERT INTO hostel_allocations (id, hostel_id, student_id, room_number, allocated_at, vacated_at, active)
VALUES (:id, :hostel_id, :student_id, :room_number, :allocated_at, :vacated_at, :active)`
	if _, err := tx.NamedExecContext(ctx, insert, alloc); err != nil {
		return fmt.Errorf("insert allocation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	return nil
}

// Vacate ends a student's active allocation and returns it.
func (r *HostelRepository) Vacate(ctx context.Context, studentID string) (*models.HostelAllocation, error) {
	const query = `UPDATE hostel_allocations SET active = FALSE, vacated_at = $2 WHERE student_id = $1 AND active
RETURNING id, hostel_id, student_id, room_number, allocated_at, vacated_at, active`
	var alloc models.HostelAllocation
	if err := r.db.GetContext(ctx, &alloc, query, studentID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("vacate allocation: %w", err)
	}
	return &alloc, nil
}

// ListAllocations returns the active allocations of a hostel.
func (r *HostelRepository) ListAllocations(ctx context.Context, hostelID string) ([]models.HostelAllocation, error) {
	const query = `SELECT id, hostel_id, student_id, room_number, allocated_at, vacated_at, active FROM hostel_allocations WHERE hostel_id = $1 AND active ORDER BY room_number ASC`
	var items []models.HostelAllocation
	if err := r.db.SelectContext(ctx, &items, query, hostelID); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return items, nil
}
