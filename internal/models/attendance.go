package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// AttendeeType distinguishes students from staff.
type AttendeeType string

const (
	AttendeeStudent AttendeeType = "student"
	AttendeeStaff   AttendeeType = "staff"
)

// DefaultAbsentRemark marks records synthesised for students with no entry.
const DefaultAbsentRemark = "Not marked - Default absent"

// AttendanceRecord is one attendance entry per user and date.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id,omitempty"`
	UserID      string           `db:"user_id" json:"userId"`
	UserType    AttendeeType     `db:"user_type" json:"userType"`
	Date        time.Time        `db:"date" json:"date"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Subject     *string          `db:"subject" json:"subject,omitempty"`
	Remarks     string           `db:"remarks" json:"remarks"`
	MarkedBy    *string          `db:"marked_by" json:"markedBy,omitempty"`
	IsVirtual   bool             `db:"-" json:"isVirtual"`
	StudentName string           `db:"student_name" json:"studentName,omitempty"`
	ClassName   string           `db:"class_name" json:"className,omitempty"`
	Section     string           `db:"section" json:"section,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// AttendanceFilter is the typed filter for attendance listings.
type AttendanceFilter struct {
	ClassName string
	Section   string
	StartDate *time.Time
	EndDate   *time.Time
	UserID    string
	UserType  AttendeeType
	Status    AttendanceStatus
}

// Reconcilable reports whether the filter carries enough to backfill absences.
func (f AttendanceFilter) Reconcilable() bool {
	return f.ClassName != "" && f.Section != "" && f.StartDate != nil && f.EndDate != nil
}

// AttendanceSummary aggregates counts for one user over a period.
type AttendanceSummary struct {
	UserID  string  `json:"userId"`
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// BulkAttendanceResult is the outcome of a bulk mark request.
type BulkAttendanceResult struct {
	Date    string             `json:"date"`
	Results []BulkItemResult   `json:"results"`
	Records []AttendanceRecord `json:"records"`
}
