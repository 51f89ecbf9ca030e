package dto

// AssignFeeRequest creates or updates a student's fee for a year.
type AssignFeeRequest struct {
	StudentID    string `json:"studentId" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
	TotalFee     int64  `json:"totalFee" validate:"gte=0"`
	Description  string `json:"description"`
}

// PaymentRequest records a payment against a ledger.
type PaymentRequest struct {
	StudentID    string `json:"studentId" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	Reference    string `json:"reference"`
	Description  string `json:"description"`
}

// ApplyScholarshipRequest opens a scholarship application.
type ApplyScholarshipRequest struct {
	StudentID    string `json:"studentId" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
	Type         string `json:"type" validate:"required"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	AmountType   string `json:"amountType" validate:"required,oneof=Fixed Percentage"`
	Reason       string `json:"reason" validate:"max=1000"`
}

// ScholarshipActionRequest carries the reviewer note for a transition.
type ScholarshipActionRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

// BulkVerifyRequest verifies many pending scholarships.
type BulkVerifyRequest struct {
	IDs  []string `json:"ids" validate:"required,min=1,dive,required"`
	Note string   `json:"note"`
}

// FinanceQuery carries raw ledger list query parameters.
type FinanceQuery struct {
	StudentID    string `form:"studentId"`
	AcademicYear string `form:"academicYear"`
	PendingOnly  bool   `form:"pendingOnly"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}

// ScholarshipQuery carries raw scholarship list query parameters.
type ScholarshipQuery struct {
	StudentID    string `form:"studentId"`
	AcademicYear string `form:"academicYear"`
	Status       string `form:"status"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}
