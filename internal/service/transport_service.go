package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type transportRepository interface {
	Create(ctx context.Context, route *models.TransportRoute) error
	Update(ctx context.Context, route *models.TransportRoute) error
	FindByID(ctx context.Context, id string) (*models.TransportRoute, error)
	List(ctx context.Context) ([]models.TransportRoute, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, assignment *models.TransportAssignment) error
	Unassign(ctx context.Context, studentID string) (*models.TransportAssignment, error)
	ListAssignments(ctx context.Context, routeID string) ([]models.TransportAssignment, error)
}

// TransportService manages bus routes and student bookings.
type TransportService struct {
	repo      transportRepository
	audit     auditWriter
	events    realtime.Sink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTransportService constructs a TransportService.
func NewTransportService(repo transportRepository, audit auditWriter, events realtime.Sink, validate *validator.Validate, logger *zap.Logger) *TransportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &TransportService{repo: repo, audit: audit, events: events, validator: validate, logger: logger}
}

// Create registers a route.
func (s *TransportService) Create(ctx context.Context, actor models.Actor, req dto.RouteRequest) (*models.TransportRoute, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid route payload")
	}
	route := routeFromRequest(req)
	if err := s.repo.Create(ctx, route); err != nil {
		return nil, internalError(err, "failed to create route")
	}
	publish(ctx, s.events, s.logger, realtime.EventTransportUpdate, route)
	return route, nil
}

// Update replaces a route's details.
func (s *TransportService) Update(ctx context.Context, actor models.Actor, id string, req dto.RouteRequest) (*models.TransportRoute, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid route payload")
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "route not found", "failed to load route")
	}
	if req.Capacity < current.Assigned {
		return nil, appErrors.Clone(appErrors.ErrConflict, "capacity is below current bookings")
	}
	route := routeFromRequest(req)
	route.ID = current.ID
	route.Assigned = current.Assigned
	route.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, route); err != nil {
		return nil, lookupError(err, "route not found", "failed to update route")
	}
	publish(ctx, s.events, s.logger, realtime.EventTransportUpdate, route)
	return route, nil
}

// Get returns a route.
func (s *TransportService) Get(ctx context.Context, id string) (*models.TransportRoute, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "route not found", "failed to load route")
	}
	return route, nil
}

// List returns every route.
func (s *TransportService) List(ctx context.Context) ([]models.TransportRoute, error) {
	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list routes")
	}
	return routes, nil
}

// Delete removes a route without bookings.
func (s *TransportService) Delete(ctx context.Context, actor models.Actor, id string) (*models.TransportRoute, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "route not found", "failed to load route")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "route still has assigned students")
		}
		return nil, internalError(err, "failed to delete route")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.AuditResourceTransportRoute, id, route, nil)
	publish(ctx, s.events, s.logger, realtime.EventTransportUpdate, route)
	return route, nil
}

// Assign books a student onto a stop of the route.
func (s *TransportService) Assign(ctx context.Context, actor models.Actor, routeID string, req dto.AssignRouteRequest) (*models.TransportAssignment, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	route, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, lookupError(err, "route not found", "failed to load route")
	}
	if !route.HasStop(req.Stop) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "stop is not served by this route")
	}
	assignment := &models.TransportAssignment{RouteID: route.ID, StudentID: req.StudentID, Stop: req.Stop}
	if err := s.repo.Assign(ctx, assignment); err != nil {
		return nil, occupancyError(err, "route not found", "failed to assign route")
	}
	publish(ctx, s.events, s.logger, realtime.EventTransportUpdate, assignment)
	return assignment, nil
}

// Unassign removes a student's booking.
func (s *TransportService) Unassign(ctx context.Context, actor models.Actor, studentID string) (*models.TransportAssignment, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	assignment, err := s.repo.Unassign(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student has no route assignment", "failed to unassign route")
	}
	publish(ctx, s.events, s.logger, realtime.EventTransportUpdate, assignment)
	return assignment, nil
}

// Assignments lists the students booked on a route.
func (s *TransportService) Assignments(ctx context.Context, routeID string) ([]models.TransportAssignment, error) {
	items, err := s.repo.ListAssignments(ctx, routeID)
	if err != nil {
		return nil, internalError(err, "failed to list assignments")
	}
	return items, nil
}

func routeFromRequest(req dto.RouteRequest) *models.TransportRoute {
	return &models.TransportRoute{
		RouteName:     req.RouteName,
		VehicleNumber: req.VehicleNumber,
		Driver:        req.Driver,
		Stops:         pq.StringArray(req.Stops),
		Capacity:      req.Capacity,
		Fee:           req.Fee,
	}
}
