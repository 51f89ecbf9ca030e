package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

const (
	timetableGridPrefix    = "timetable:grid"
	timetableTeacherPrefix = "timetable:teacher"
)

type timetableRepository interface {
	Upsert(ctx context.Context, period *models.Period) (*models.Period, error)
	FindByID(ctx context.Context, id string) (*models.Period, error)
	ListByClass(ctx context.Context, className, section string) ([]models.Period, error)
	ListByTeacher(ctx context.Context, teacher string) ([]models.Period, error)
	Delete(ctx context.Context, id string) error
}

// BuildGrid expands stored periods into the dense Monday to Friday grid. Slots
// without a stored period keep an empty subject and teacher.
func BuildGrid(className, section string, periods []models.Period, slots []string) models.TimetableGrid {
	index := make(map[string]models.Period, len(periods))
	for _, p := range periods {
		index[fmt.Sprintf("%s|%d", p.Day, p.PeriodNumber)] = p
	}
	grid := models.TimetableGrid{ClassName: className, Section: section, Days: make([]models.GridDay, 0, len(models.Weekdays))}
	for _, day := range models.Weekdays {
		row := models.GridDay{Day: day, Periods: make([]models.GridSlot, models.PeriodsPerDay)}
		for n := 1; n <= models.PeriodsPerDay; n++ {
			slot := models.GridSlot{PeriodNumber: n, Time: slotLabel(slots, n)}
			if p, ok := index[fmt.Sprintf("%s|%d", day, n)]; ok {
				slot.Subject = p.Subject
				slot.Teacher = p.Teacher
			}
			row.Periods[n-1] = slot
		}
		grid.Days = append(grid.Days, row)
	}
	return grid
}

func slotLabel(slots []string, period int) string {
	if period-1 < len(slots) {
		return slots[period-1]
	}
	return fmt.Sprintf("Period %d", period)
}

// TimetableService maintains weekly class timetables.
type TimetableService struct {
	repo      timetableRepository
	cache     *CacheService
	slots     []string
	cacheTTL  time.Duration
	events    realtime.Sink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService. slots labels periods 1..8.
func NewTimetableService(repo timetableRepository, cache *CacheService, slots []string, cacheTTL time.Duration, events realtime.Sink, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = realtime.NopSink{}
	}
	return &TimetableService{repo: repo, cache: cache, slots: slots, cacheTTL: cacheTTL, events: events, validator: validate, logger: logger}
}

// Upsert stores the period occupying a (class, section, day, period) slot.
func (s *TimetableService) Upsert(ctx context.Context, actor models.Actor, req dto.PeriodRequest) (*models.Period, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid period payload")
	}
	period, err := s.repo.Upsert(ctx, &models.Period{
		ClassName:    req.ClassName,
		Section:      req.Section,
		Day:          req.Day,
		PeriodNumber: req.PeriodNumber,
		Subject:      req.Subject,
		Teacher:      req.Teacher,
	})
	if err != nil {
		return nil, internalError(err, "failed to save period")
	}
	s.invalidate(ctx, period.ClassName, period.Section)
	publish(ctx, s.events, s.logger, realtime.EventTimetableUpdate, period)
	return period, nil
}

// Delete clears a period.
func (s *TimetableService) Delete(ctx context.Context, actor models.Actor, id string) (*models.Period, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "period not found", "failed to load period")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, lookupError(err, "period not found", "failed to delete period")
	}
	s.invalidate(ctx, period.ClassName, period.Section)
	publish(ctx, s.events, s.logger, realtime.EventTimetableUpdate, period)
	return period, nil
}

// Grid returns the weekly grid of a class section, served from cache when warm.
// The boolean reports a cache hit.
func (s *TimetableService) Grid(ctx context.Context, className, section string) (*models.TimetableGrid, bool, error) {
	if className == "" || section == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "className and section are required")
	}
	grid, hit, err := remember(ctx, s.cache, CacheKey(timetableGridPrefix, className, section), s.cacheTTL, func() (models.TimetableGrid, error) {
		periods, err := s.repo.ListByClass(ctx, className, section)
		if err != nil {
			return models.TimetableGrid{}, internalError(err, "failed to load timetable")
		}
		return BuildGrid(className, section, periods, s.slots), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &grid, hit, nil
}

// TeacherSchedule lists the periods taught by a teacher in weekday order.
func (s *TimetableService) TeacherSchedule(ctx context.Context, teacher string) ([]models.Period, error) {
	if teacher == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher is required")
	}
	periods, _, err := remember(ctx, s.cache, CacheKey(timetableTeacherPrefix, teacher), s.cacheTTL, func() ([]models.Period, error) {
		periods, err := s.repo.ListByTeacher(ctx, teacher)
		if err != nil {
			return nil, internalError(err, "failed to load teacher schedule")
		}
		sortByWeekday(periods)
		return periods, nil
	})
	return periods, err
}

func sortByWeekday(periods []models.Period) {
	order := make(map[string]int, len(models.Weekdays))
	for i, day := range models.Weekdays {
		order[day] = i
	}
	sort.SliceStable(periods, func(i, j int) bool {
		if order[periods[i].Day] != order[periods[j].Day] {
			return order[periods[i].Day] < order[periods[j].Day]
		}
		return periods[i].PeriodNumber < periods[j].PeriodNumber
	})
}

// invalidate drops the section grid and every teacher schedule; a replaced
// period may change teacher.
func (s *TimetableService) invalidate(ctx context.Context, className, section string) {
	_ = s.cache.Evict(ctx, CacheKey(timetableGridPrefix, className, section))
	_ = s.cache.Invalidate(ctx, timetableTeacherPrefix+":*")
}
