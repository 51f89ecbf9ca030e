package models

import "time"

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TransactionFeeAssigned        TransactionType = "FEE_ASSIGNED"
	TransactionPayment            TransactionType = "PAYMENT"
	TransactionScholarshipApplied TransactionType = "SCHOLARSHIP_APPLIED"
	TransactionScholarshipRevoked TransactionType = "SCHOLARSHIP_REVOKED"
)

// Finance is a per-student, per-academic-year fee ledger. Amounts are minor
// currency units.
type Finance struct {
	ID                  string               `db:"id" json:"id"`
	StudentID           string               `db:"student_id" json:"studentId"`
	AcademicYear        string               `db:"academic_year" json:"academicYear"`
	TotalFee            int64                `db:"total_fee" json:"totalFee"`
	ScholarshipDiscount int64                `db:"scholarship_discount" json:"scholarshipDiscount"`
	FinalPayableFee     int64                `db:"final_payable_fee" json:"finalPayableFee"`
	PaidAmount          int64                `db:"paid_amount" json:"paidAmount"`
	PendingAmount       int64                `db:"pending_amount" json:"pendingAmount"`
	Scholarships        []Scholarship        `db:"-" json:"scholarships"`
	Transactions        []FinanceTransaction `db:"-" json:"transactions"`
	CreatedAt           time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time            `db:"updated_at" json:"updatedAt"`
}

// FinanceTransaction is an immutable ledger entry.
type FinanceTransaction struct {
	ID          string          `db:"id" json:"id"`
	FinanceID   string          `db:"finance_id" json:"financeId"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      int64           `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	Description string          `db:"description" json:"description"`
	Reference   string          `db:"reference" json:"reference"`
	CreatedBy   string          `db:"created_by" json:"createdBy"`
}

// FinanceFilter narrows ledger listings.
type FinanceFilter struct {
	StudentID    string
	AcademicYear string
	PendingOnly  bool
	Page         int
	PageSize     int
}
