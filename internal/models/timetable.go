package models

import "time"

// Weekdays lists the school days in grid order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// PeriodsPerDay is the number of teaching periods in a school day.
const PeriodsPerDay = 8

// Period is one timetable slot for a class section.
type Period struct {
	ID           string    `db:"id" json:"id"`
	ClassName    string    `db:"class_name" json:"className"`
	Section      string    `db:"section" json:"section"`
	Day          string    `db:"day" json:"day"`
	PeriodNumber int       `db:"period_number" json:"periodNumber"`
	Subject      string    `db:"subject" json:"subject"`
	Teacher      string    `db:"teacher" json:"teacher"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// GridSlot is a dense cell of the weekly timetable.
type GridSlot struct {
	PeriodNumber int    `json:"periodNumber"`
	Time         string `json:"time"`
	Subject      string `json:"subject"`
	Teacher      string `json:"teacher"`
}

// GridDay is one row of the weekly timetable.
type GridDay struct {
	Day     string     `json:"day"`
	Periods []GridSlot `json:"periods"`
}

// TimetableGrid is the full Monday to Friday timetable of a class section.
type TimetableGrid struct {
	ClassName string    `json:"className"`
	Section   string    `json:"section"`
	Days      []GridDay `json:"days"`
}
