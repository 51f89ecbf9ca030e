package service

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock converts a zero-padded 24h "HH:MM" value into minutes since midnight.
func ParseClock(value string) (int, error) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("time %q must use HH:MM 24-hour format", value)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes, nil
}

// Overlaps reports whether the half-open ranges [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// FindExamConflict returns the first existing exam that collides with candidate
// on the same date, either for the same class or through a shared invigilator.
// Cancelled exams, the candidate itself and rows with unreadable times are skipped.
func FindExamConflict(candidate models.Exam, existing []models.Exam) *models.ExamConflictError {
	if candidate.Status == models.ExamStatusCancelled {
		return nil
	}
	start, err := ParseClock(candidate.StartTime)
	if err != nil {
		return nil
	}
	end, err := ParseClock(candidate.EndTime)
	if err != nil {
		return nil
	}
	invigilators := make(map[string]struct{}, len(candidate.Invigilators))
	for _, name := range candidate.Invigilators {
		invigilators[name] = struct{}{}
	}
	date := dayKey(candidate.Date)

	for _, other := range existing {
		if other.Status == models.ExamStatusCancelled || (candidate.ID != "" && other.ID == candidate.ID) {
			continue
		}
		if dayKey(other.Date) != date {
			continue
		}
		s2, err := ParseClock(other.StartTime)
		if err != nil {
			continue
		}
		e2, err := ParseClock(other.EndTime)
		if err != nil {
			continue
		}
		if !Overlaps(start, end, s2, e2) {
			continue
		}
		if other.ClassName == candidate.ClassName {
			return &models.ExamConflictError{Dimension: models.ConflictClass, Value: other.ClassName, Conflicting: other}
		}
		for _, name := range other.Invigilators {
			if _, ok := invigilators[name]; ok {
				return &models.ExamConflictError{Dimension: models.ConflictInvigilator, Value: name, Conflicting: other}
			}
		}
	}
	return nil
}
