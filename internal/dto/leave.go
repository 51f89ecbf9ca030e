package dto

// CreateLeaveRequest opens a leave request for the caller.
type CreateLeaveRequest struct {
	LeaveType string `json:"leaveType" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

// ReviewLeaveRequest approves or rejects a pending request.
type ReviewLeaveRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note" validate:"max=1000"`
}

// LeaveQuery carries raw list query parameters.
type LeaveQuery struct {
	UserID   string `form:"userId"`
	UserType string `form:"userType"`
	Status   string `form:"status"`
	Unread   *bool  `form:"unread"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
