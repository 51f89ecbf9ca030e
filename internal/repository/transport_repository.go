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

const routeSelect = `SELECT r.id, r.route_name, r.vehicle_number, r.driver, r.stops, r.capacity, r.fee, r.created_at, r.updated_at,
(SELECT COUNT(*) FROM transport_assignments a WHERE a.route_id = r.id) AS assigned
FROM transport_routes r`

// TransportRepository persists routes and student assignments.
type TransportRepository struct {
	db *sqlx.DB
}

// NewTransportRepository constructs the repository.
func NewTransportRepository(db *sqlx.DB) *TransportRepository {
	return &TransportRepository{db: db}
}

// Create inserts a route.
func (r *TransportRepository) Create(ctx context.Context, route *models.TransportRoute) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	route.CreatedAt = now
	route.UpdatedAt = now
	const query = `INSERT INTO transport_routes (id, route_name, vehicle_number, driver, stops, capacity, fee, created_at, updated_at)
VALUES (:id, :route_name, :vehicle_number, :driver, :stops, :capacity, :fee, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, route); err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a route.
func (r *TransportRepository) Update(ctx context.Context, route *models.TransportRoute) error {
	route.UpdatedAt = time.Now().UTC()
	const query = `UPDATE transport_routes SET route_name = :route_name, vehicle_number = :vehicle_number, driver = :driver,
stops = :stops, capacity = :capacity, fee = :fee, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, route)
	if err != nil {
		return fmt.Errorf("update route: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns a route with its assignment count.
func (r *TransportRepository) FindByID(ctx context.Context, id string) (*models.TransportRoute, error) {
	var route models.TransportRoute
	if err := r.db.GetContext(ctx, &route, routeSelect+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find route: %w", err)
	}
	return &route, nil
}

// List returns every route.
func (r *TransportRepository) List(ctx context.Context) ([]models.TransportRoute, error) {
	var routes []models.TransportRoute
	if err := r.db.SelectContext(ctx, &routes, routeSelect+` ORDER BY r.route_name ASC`); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// Delete removes a route without assignments.
func (r *TransportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transport_routes WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM transport_assignments WHERE route_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Assign books a student onto a route, enforcing capacity under a row lock.
func (r *TransportRepository) Assign(ctx context.Context, assignment *models.TransportAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var capacity int
	if err := tx.GetContext(ctx, &capacity, `SELECT capacity FROM transport_routes WHERE id = $1 FOR UPDATE`, assignment.RouteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock route: %w", err)
	}
	var existing int
	if err := tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM transport_assignments WHERE student_id = $1`, assignment.StudentID); err != nil {
		return fmt.Errorf("check student assignment: %w", err)
	}
	if existing > 0 {
		return ErrAlreadyAssigned
	}
	var assigned int
	if err := tx.GetContext(ctx, &assigned, `SELECT COUNT(*) FROM transport_assignments WHERE route_id = $1`, assignment.RouteID); err != nil {
		return fmt.Errorf("count route assignments: %w", err)
	}
	if assigned >= capacity {
		return ErrCapacityReached
	}

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const insert = `INSERT INTO transport_assignments (id, route_id, student_id, stop, created_at) VALUES (:id, :route_id, :student_id, :stop, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment: %w", err)
	}
	return nil
}

// Unassign removes a student's route assignment and returns it.
func (r *TransportRepository) Unassign(ctx context.Context, studentID string) (*models.TransportAssignment, error) {
	const query = `DELETE FROM transport_assignments WHERE student_id = $1 RETURNING id, route_id, student_id, stop, created_at`
	var assignment models.TransportAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("unassign route: %w", err)
	}
	return &assignment, nil
}

// ListAssignments returns the students booked on a route.
func (r *TransportRepository) ListAssignments(ctx context.Context, routeID string) ([]models.TransportAssignment, error) {
	const query = `SELECT id, route_id, student_id, stop, created_at FROM transport_assignments WHERE route_id = $1 ORDER BY stop ASC`
	var items []models.TransportAssignment
	if err := r.db.SelectContext(ctx, &items, query, routeID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}
