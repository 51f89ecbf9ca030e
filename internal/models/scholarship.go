package models

import "time"

// ScholarshipStatus enumerates the approval workflow states.
type ScholarshipStatus string

const (
	ScholarshipPending  ScholarshipStatus = "Pending"
	ScholarshipVerified ScholarshipStatus = "Verified"
	ScholarshipApproved ScholarshipStatus = "Approved"
	ScholarshipRejected ScholarshipStatus = "Rejected"
)

// AmountType decides how a scholarship amount converts into a discount.
type AmountType string

const (
	AmountFixed      AmountType = "Fixed"
	AmountPercentage AmountType = "Percentage"
)

// Scholarship is a discount request against a student's fee ledger.
type Scholarship struct {
	ID            string             `db:"id" json:"id"`
	StudentID     string             `db:"student_id" json:"studentId"`
	AcademicYear  string             `db:"academic_year" json:"academicYear"`
	Type          string             `db:"type" json:"type"`
	Status        ScholarshipStatus  `db:"status" json:"status"`
	Amount        int64              `db:"amount" json:"amount"`
	AmountType    AmountType         `db:"amount_type" json:"amountType"`
	AppliedAmount int64              `db:"applied_amount" json:"appliedAmount"`
	Reason        string             `db:"reason" json:"reason"`
	AuditLog      []ScholarshipAudit `db:"-" json:"auditLog"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
}

// ScholarshipAudit records one workflow transition.
type ScholarshipAudit struct {
	ID            string            `db:"id" json:"id"`
	ScholarshipID string            `db:"scholarship_id" json:"scholarshipId"`
	Action        string            `db:"action" json:"action"`
	FromStatus    ScholarshipStatus `db:"from_status" json:"from"`
	ToStatus      ScholarshipStatus `db:"to_status" json:"to"`
	PerformedBy   string            `db:"performed_by" json:"by"`
	Note          string            `db:"note" json:"note"`
	CreatedAt     time.Time         `db:"created_at" json:"at"`
}

// ScholarshipFilter narrows scholarship listings.
type ScholarshipFilter struct {
	StudentID    string
	AcademicYear string
	Status       ScholarshipStatus
	Page         int
	PageSize     int
}
