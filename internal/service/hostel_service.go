package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/repository"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type hostelRepository interface {
	Create(ctx context.Context, h *models.Hostel) error
	Update(ctx context.Context, h *models.Hostel) error
	FindByID(ctx context.Context, id string) (*models.Hostel, error)
	List(ctx context.Context) ([]models.Hostel, error)
	Delete(ctx context.Context, id string) error
	Allocate(ctx context.Context, alloc *models.HostelAllocation) error
	Vacate(ctx context.Context, studentID string) (*models.HostelAllocation, error)
	ListAllocations(ctx context.Context, hostelID string) ([]models.HostelAllocation, error)
}

// HostelService manages hostels and room allocations.
type HostelService struct {
	repo      hostelRepository
	audit     auditWriter
	events    realtime.Sink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHostelService constructs a HostelService.
func NewHostelService(repo hostelRepository, audit auditWriter, events realtime.Sink, validate *validator.Validate, logger *zap.Logger) *HostelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &HostelService{repo: repo, audit: audit, events: events, validator: validate, logger: logger}
}

// Create registers a hostel.
func (s *HostelService) Create(ctx context.Context, actor models.Actor, req dto.HostelRequest) (*models.Hostel, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hostel payload")
	}
	hostel := &models.Hostel{Name: req.Name, Type: req.Type, Capacity: req.Capacity, Warden: req.Warden}
	if err := s.repo.Create(ctx, hostel); err != nil {
		return nil, internalError(err, "failed to create hostel")
	}
	publish(ctx, s.events, s.logger, realtime.EventHostelUpdate, hostel)
	return hostel, nil
}

// Update changes a hostel. Capacity may not drop below current occupancy.
func (s *HostelService) Update(ctx context.Context, actor models.Actor, id string, req dto.HostelRequest) (*models.Hostel, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hostel payload")
	}
	hostel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "hostel not found", "failed to load hostel")
	}
	if req.Capacity < hostel.Occupied {
		return nil, appErrors.Clone(appErrors.ErrConflict, "capacity is below current occupancy")
	}
	hostel.Name, hostel.Type, hostel.Capacity, hostel.Warden = req.Name, req.Type, req.Capacity, req.Warden
	if err := s.repo.Update(ctx, hostel); err != nil {
		return nil, lookupError(err, "hostel not found", "failed to update hostel")
	}
	publish(ctx, s.events, s.logger, realtime.EventHostelUpdate, hostel)
	return hostel, nil
}

// Get returns a hostel with its occupancy.
func (s *HostelService) Get(ctx context.Context, id string) (*models.Hostel, error) {
	hostel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "hostel not found", "failed to load hostel")
	}
	return hostel, nil
}

// List returns every hostel.
func (s *HostelService) List(ctx context.Context) ([]models.Hostel, error) {
	hostels, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list hostels")
	}
	return hostels, nil
}

// Delete removes an empty hostel.
func (s *HostelService) Delete(ctx context.Context, actor models.Actor, id string) (*models.Hostel, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	hostel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "hostel not found", "failed to load hostel")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "hostel still has active allocations")
		}
		return nil, internalError(err, "failed to delete hostel")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.AuditResourceHostel, id, hostel, nil)
	publish(ctx, s.events, s.logger, realtime.EventHostelUpdate, hostel)
	return hostel, nil
}

// Allocate places a student in a hostel room.
func (s *HostelService) Allocate(ctx context.Context, actor models.Actor, hostelID string, req dto.AllocateRoomRequest) (*models.HostelAllocation, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid allocation payload")
	}
	alloc := &models.HostelAllocation{HostelID: hostelID, StudentID: req.StudentID, RoomNumber: req.RoomNumber}
	if err := s.repo.Allocate(ctx, alloc); err != nil {
		return nil, occupancyError(err, "hostel not found", "failed to allocate room")
	}
	publish(ctx, s.events, s.logger, realtime.EventHostelUpdate, alloc)
	return alloc, nil
}

// Vacate ends a student's allocation.
func (s *HostelService) Vacate(ctx context.Context, actor models.Actor, studentID string) (*models.HostelAllocation, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	alloc, err := s.repo.Vacate(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student has no active allocation", "failed to vacate room")
	}
	publish(ctx, s.events, s.logger, realtime.EventHostelUpdate, alloc)
	return alloc, nil
}

// Allocations lists the residents of a hostel.
func (s *HostelService) Allocations(ctx context.Context, hostelID string) ([]models.HostelAllocation, error) {
	items, err := s.repo.ListAllocations(ctx, hostelID)
	if err != nil {
		return nil, internalError(err, "failed to list allocations")
	}
	return items, nil
}

// occupancyError maps capacity and duplicate sentinels raised by hostel and
// transport repositories.
func occupancyError(err error, notFound, failed string) error {
	switch {
	case errors.Is(err, repository.ErrCapacityReached):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "capacity reached")
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student already assigned")
	default:
		return lookupError(err, notFound, failed)
	}
}
