package dto

// ── 课程模块 DTO ──

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Regulation *int `form:"regulation" binding:"omitempty,min=1"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID             int      `json:"id"`
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	LectureHours   int      `json:"lecture_hours"`
	PracticalHours int      `json:"practical_hours"`
	CreditHours    int      `json:"credit_hours"`
	Level          int      `json:"level"`
	Semester       int      `json:"semester"`
	Required       bool     `json:"required"`
	Divisions      []string `json:"divisions"`
}
