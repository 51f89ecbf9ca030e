package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ExamStatus enumerates the lifecycle of a scheduled exam.
type ExamStatus string

const (
	ExamStatusScheduled ExamStatus = "Scheduled"
	ExamStatusOngoing   ExamStatus = "Ongoing"
	ExamStatusCompleted ExamStatus = "Completed"
	ExamStatusCancelled ExamStatus = "Cancelled"
)

// Valid reports whether the status is supported.
func (s ExamStatus) Valid() bool {
	switch s {
	case ExamStatusScheduled, ExamStatusOngoing, ExamStatusCompleted, ExamStatusCancelled:
		return true
	default:
		return false
	}
}

// Exam is a scheduled sitting for one class.
type Exam struct {
	ID           string         `db:"id" json:"id"`
	ExamName     string         `db:"exam_name" json:"examName"`
	ExamType     string         `db:"exam_type" json:"examType"`
	Subject      string         `db:"subject" json:"subject"`
	ClassName    string         `db:"class_name" json:"className"`
	Date         time.Time      `db:"date" json:"date"`
	StartTime    string         `db:"start_time" json:"startTime"`
	EndTime      string         `db:"end_time" json:"endTime"`
	Duration     int            `db:"duration" json:"duration"`
	Hall         string         `db:"hall" json:"hall"`
	Invigilators pq.StringArray `db:"invigilators" json:"invigilators"`
	TotalMarks   int            `db:"total_marks" json:"totalMarks"`
	Status       ExamStatus     `db:"status" json:"status"`
	CreatedBy    string         `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// ExamFilter narrows exam listings.
type ExamFilter struct {
	ClassName string
	Subject   string
	Status    ExamStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// ConflictDimension names the resource two exams compete for.
type ConflictDimension string

const (
	ConflictClass       ConflictDimension = "CLASS"
	ConflictInvigilator ConflictDimension = "INVIGILATOR"
)

// ExamConflictError describes an overlapping exam that blocks a write.
type ExamConflictError struct {
	Dimension   ConflictDimension `json:"dimension"`
	Value       string            `json:"value"`
	Conflicting Exam              `json:"conflicting"`
}

func (e *ExamConflictError) Error() string {
	return fmt.Sprintf("%s %s already has %q from %s to %s",
		e.Dimension, e.Value, e.Conflicting.ExamName, e.Conflicting.StartTime, e.Conflicting.EndTime)
}

// HallTicket is the signed download reference for a generated admission document.
type HallTicket struct {
	ExamID      string    `json:"examId"`
	StudentID   string    `json:"studentId"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Mark is a student's score for one exam.
type Mark struct {
	ID            string    `db:"id" json:"id"`
	ExamID        string    `db:"exam_id" json:"examId"`
	StudentID     string    `db:"student_id" json:"studentId"`
	MarksObtained float64   `db:"marks_obtained" json:"marksObtained"`
	Grade         string    `db:"grade" json:"grade"`
	Remarks       string    `db:"remarks" json:"remarks"`
	EnteredBy     string    `db:"entered_by" json:"enteredBy"`
	StudentName   string    `db:"student_name" json:"studentName,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
