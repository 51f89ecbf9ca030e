package models

import "time"

// LeaveStatus enumerates the review workflow.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is an absence request raised by a student or staff member.
type LeaveRequest struct {
	ID         string       `db:"id" json:"id"`
	UserID     string       `db:"user_id" json:"userId"`
	UserType   AttendeeType `db:"user_type" json:"userType"`
	LeaveType  string       `db:"leave_type" json:"leaveType"`
	StartDate  time.Time    `db:"start_date" json:"startDate"`
	EndDate    time.Time    `db:"end_date" json:"endDate"`
	Reason     string       `db:"reason" json:"reason"`
	Status     LeaveStatus  `db:"status" json:"status"`
	ReviewedBy *string      `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewNote string       `db:"review_note" json:"reviewNote"`
	ReviewedAt *time.Time   `db:"reviewed_at" json:"reviewedAt,omitempty"`
	IsRead     bool         `db:"is_read" json:"isRead"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}

// LeaveFilter narrows leave request listings.
type LeaveFilter struct {
	UserID   string
	UserType AttendeeType
	Status   LeaveStatus
	Unread   *bool
	Page     int
	PageSize int
}
