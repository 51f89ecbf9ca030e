package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListRoster(ctx context.Context, className, section string) ([]models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// StudentService exposes the class roster.
type StudentService struct {
	repo   studentRepository
	logger *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, actor models.Actor, query dto.StudentQuery) ([]models.Student, *models.Pagination, error) {
	if err := requireStaff(actor); err != nil {
		return nil, nil, err
	}
	filter := models.StudentFilter{
		ClassName: strings.TrimSpace(query.ClassName),
		Section:   strings.TrimSpace(query.Section),
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student. Students may only load themselves.
func (s *StudentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Student, error) {
	if actor.Role == models.RoleStudent && actor.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own profile")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Roster returns the active students of a class section ordered by name.
func (s *StudentService) Roster(ctx context.Context, actor models.Actor, className, section string) ([]models.Student, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if className == "" || section == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "className and section are required")
	}
	students, err := s.repo.ListRoster(ctx, className, section)
	if err != nil {
		return nil, internalError(err, "failed to load roster")
	}
	return students, nil
}
