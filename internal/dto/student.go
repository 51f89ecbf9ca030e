package dto

// StudentQuery carries raw roster list query parameters.
type StudentQuery struct {
	ClassName string `form:"className"`
	Section   string `form:"section"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
