package models

// Student is a roster entry linking a STUDENT user to a class and section.
type Student struct {
	ID         string `db:"id" json:"id"`
	FullName   string `db:"full_name" json:"fullName"`
	ClassName  string `db:"class_name" json:"className"`
	Section    string `db:"section" json:"section"`
	RollNumber string `db:"roll_number" json:"rollNumber"`
	Active     bool   `db:"active" json:"active"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	ClassName string
	Section   string
	Search    string
	Page      int
	PageSize  int
}

// BulkItemResult reports the outcome of one element of a bulk request.
type BulkItemResult struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
