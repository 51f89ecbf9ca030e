package dto

// PeriodRequest upserts a timetable period.
type PeriodRequest struct {
	ClassName    string `json:"className" validate:"required"`
	Section      string `json:"section" validate:"required"`
	Day          string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday"`
	PeriodNumber int    `json:"periodNumber" validate:"required,min=1,max=8"`
	Subject      string `json:"subject" validate:"required"`
	Teacher      string `json:"teacher" validate:"required"`
}
