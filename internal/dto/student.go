package dto

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Regulation *int `form:"regulation" binding:"omitempty,min=1"`
}

// StudentResponse 学生概要
type StudentResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Level           int     `json:"level"`
	RegisteredHours int     `json:"registered_hours"`
	PassedHours     int     `json:"passed_hours"`
	ExcludedHours   int     `json:"excluded_hours"`
	ResearchHours   int     `json:"research_hours"`
	TotalPoints     float64 `json:"total_points"`
	GPA             float64 `json:"gpa"`
	TotalMark       float64 `json:"total_mark"`
	Graduate        bool    `json:"graduate"`
	GroupID         int     `json:"group_id"`
	GroupName       string  `json:"group"`
	DivisionID      *int    `json:"division_id"`
	DivisionName    string  `json:"division,omitempty"`
}

// StudentDetailResponse 学生详情（含按年级 / 学期的成绩分布）
type StudentDetailResponse struct {
	StudentResponse
	Regulation  string           `json:"regulation"`
	Department1 string           `json:"department_1,omitempty"`
	Department2 string           `json:"department_2,omitempty"`
	Levels      []LevelBreakdown `json:"levels"`
}

// LevelBreakdown 某一年级的成绩
type LevelBreakdown struct {
	Level     int                 `json:"level"`
	Semesters []SemesterBreakdown `json:"semesters"`
}

// SemesterBreakdown 某一学期的成绩及绩点合计
// Points = Σ points × credit_hours（仅 A–D 等级）
type SemesterBreakdown struct {
	Semester    int                  `json:"semester"`
	Points      float64              `json:"points"`
	Enrollments []EnrollmentResponse `json:"enrollments"`
}
