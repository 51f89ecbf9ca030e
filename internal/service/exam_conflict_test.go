package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	for _, bad := range []string{"9:30", "24:00", "10:60", "10.30", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFindExamConflict(t *testing.T) {
	existing := []models.Exam{
		{ID: "e1", ExamName: "Maths", ClassName: "10-A", Date: day("2024-06-10"), StartTime: "10:00", EndTime: "11:00", Status: models.ExamStatusScheduled, Invigilators: pq.StringArray{"Mr. Rao"}},
		{ID: "e2", ExamName: "Art", ClassName: "9-B", Date: day("2024-06-10"), StartTime: "13:00", EndTime: "14:00", Status: models.ExamStatusCancelled},
	}

	cases := []struct {
		name      string
		candidate models.Exam
		dimension models.ConflictDimension
	}{
		{name: "overlap same class", candidate: models.Exam{ClassName: "10-A", StartTime: "10:30", EndTime: "11:30"}, dimension: models.ConflictClass},
		{name: "touching end", candidate: models.Exam{ClassName: "10-A", StartTime: "11:00", EndTime: "12:00"}},
		{name: "touching start", candidate: models.Exam{ClassName: "10-A", StartTime: "09:00", EndTime: "10:00"}},
		{name: "enclosing", candidate: models.Exam{ClassName: "10-A", StartTime: "09:00", EndTime: "12:00"}, dimension: models.ConflictClass},
		{name: "other class", candidate: models.Exam{ClassName: "10-B", StartTime: "10:30", EndTime: "11:30"}},
		{name: "shared invigilator", candidate: models.Exam{ClassName: "10-B", StartTime: "10:30", EndTime: "11:30", Invigilators: pq.StringArray{"Mr. Rao"}}, dimension: models.ConflictInvigilator},
		{name: "cancelled ignored", candidate: models.Exam{ClassName: "9-B", StartTime: "13:00", EndTime: "14:00"}},
		{name: "itself excluded", candidate: models.Exam{ID: "e1", ClassName: "10-A", StartTime: "10:00", EndTime: "11:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.candidate.Date = day("2024-06-10")
			tc.candidate.Status = models.ExamStatusScheduled
			conflict := FindExamConflict(tc.candidate, existing)
			if tc.dimension == "" {
				assert.Nil(t, conflict)
				return
			}
			require.NotNil(t, conflict)
			assert.Equal(t, tc.dimension, conflict.Dimension)
			assert.Equal(t, "e1", conflict.Conflicting.ID)
		})
	}
}

func TestFindExamConflictIgnoresOtherDates(t *testing.T) {
	existing := []models.Exam{{ID: "e1", ClassName: "10-A", Date: day("2024-06-11"), StartTime: "10:00", EndTime: "11:00", Status: models.ExamStatusScheduled}}
	candidate := models.Exam{ClassName: "10-A", Date: day("2024-06-10"), StartTime: "10:00", EndTime: "11:00", Status: models.ExamStatusScheduled}
	assert.Nil(t, FindExamConflict(candidate, existing))
}
