package service

import (
	"sort"
	"time"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

// maxReconcileDays bounds the date range expanded by reconciliation.
const maxReconcileDays = 366

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// daySpan counts the calendar days in [start, end] without listing them.
func daySpan(start, end time.Time) int {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

// DateRange lists every calendar day in [start, end].
func DateRange(start, end time.Time) []time.Time {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ReconcileAttendance returns exactly one record per (student, date). Stored
// records are kept as-is; missing pairs become virtual absences. The result is
// ordered by date descending then student name ascending, ties keeping input order.
func ReconcileAttendance(students []models.Student, dates []time.Time, stored []models.AttendanceRecord) []models.AttendanceRecord {
	index := make(map[string]models.AttendanceRecord, len(stored))
	for _, r := range stored {
		index[r.UserID+"|"+dayKey(r.Date)] = r
	}

	out := make([]models.AttendanceRecord, 0, len(students)*len(dates))
	for _, day := range dates {
		for _, st := range students {
			record, ok := index[st.ID+"|"+dayKey(day)]
			if !ok {
				record = models.AttendanceRecord{
					UserID:    st.ID,
					UserType:  models.AttendeeStudent,
					Date:      day,
					Status:    models.AttendanceStatusAbsent,
					Remarks:   models.DefaultAbsentRemark,
					IsVirtual: true,
				}
			}
			if record.StudentName == "" {
				record.StudentName = st.FullName
			}
			if record.ClassName == "" {
				record.ClassName = st.ClassName
			}
			if record.Section == "" {
				record.Section = st.Section
			}
			out = append(out, record)
		}
	}

	SortAttendance(out)
	return out
}

// SortAttendance orders records by date descending then name ascending.
func SortAttendance(records []models.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := dayKey(records[i].Date), dayKey(records[j].Date)
		if di != dj {
			return di > dj
		}
		return records[i].StudentName < records[j].StudentName
	})
}
