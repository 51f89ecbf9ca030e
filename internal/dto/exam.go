package dto

// ExamRequest creates or replaces an exam.
type ExamRequest struct {
	ExamName     string   `json:"examName" validate:"required,max=120"`
	ExamType     string   `json:"examType" validate:"required"`
	Subject      string   `json:"subject" validate:"required"`
	ClassName    string   `json:"className" validate:"required"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string   `json:"startTime" validate:"required"`
	EndTime      string   `json:"endTime" validate:"required"`
	Duration     int      `json:"duration" validate:"gte=0"`
	Hall         string   `json:"hall"`
	Invigilators []string `json:"invigilators" validate:"dive,required"`
	TotalMarks   int      `json:"totalMarks" validate:"required,gt=0"`
}

// ExamStatusRequest changes the lifecycle status of an exam.
type ExamStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Scheduled Ongoing Completed Cancelled"`
}

// ExamQuery carries raw list query parameters.
type ExamQuery struct {
	ClassName string `form:"className"`
	Subject   string `form:"subject"`
	Status    string `form:"status"`
	DateFrom  string `form:"dateFrom"`
	DateTo    string `form:"dateTo"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// MarkRequest records a score for one student.
type MarkRequest struct {
	ExamID        string  `json:"examId" validate:"required"`
	StudentID     string  `json:"studentId" validate:"required"`
	MarksObtained float64 `json:"marksObtained" validate:"gte=0"`
	Remarks       string  `json:"remarks" validate:"max=500"`
}

// BulkMarkRequest records scores for many students of one exam.
type BulkMarkRequest struct {
	ExamID string         `json:"examId" validate:"required"`
	Items  []BulkMarkItem `json:"items" validate:"required,min=1"`
}

// BulkMarkItem is one row of a bulk mark submission.
type BulkMarkItem struct {
	StudentID     string  `json:"studentId" validate:"required"`
	MarksObtained float64 `json:"marksObtained" validate:"gte=0"`
	Remarks       string  `json:"remarks" validate:"max=500"`
}
