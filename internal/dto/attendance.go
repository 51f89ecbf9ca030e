package dto

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MarkAttendanceRequest records attendance for a single user and date.
type MarkAttendanceRequest struct {
	UserID   string  `json:"userId" validate:"required"`
	UserType string  `json:"userType" validate:"required,oneof=student staff"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status   string  `json:"status" validate:"required,oneof=present absent late"`
	Subject  *string `json:"subject"`
	Remarks  string  `json:"remarks" validate:"max=500"`
}

// BulkAttendanceItem is one row of a bulk attendance submission.
type BulkAttendanceItem struct {
	UserID   string  `json:"userId" validate:"required"`
	UserType string  `json:"userType" validate:"omitempty,oneof=student staff"`
	Status   string  `json:"status" validate:"required,oneof=present absent late"`
	Subject  *string `json:"subject"`
	Remarks  string  `json:"remarks" validate:"max=500"`
}

// BulkAttendanceRequest marks a list of users for one date.
type BulkAttendanceRequest struct {
	Date  string               `json:"date" validate:"required,datetime=2006-01-02"`
	Items []BulkAttendanceItem `json:"items" validate:"required,min=1"`
}

// AttendanceQuery carries raw list/download query parameters.
type AttendanceQuery struct {
	ClassName string `form:"className"`
	Section   string `form:"section"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	UserID    string `form:"userId"`
	UserType  string `form:"userType"`
	Status    string `form:"status"`
	Format    string `form:"format"`
}
