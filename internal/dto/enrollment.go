package dto

// ── 成绩模块 DTO ──

// UpdateEnrollmentRequest 成绩更正请求（仅更正字段，不重新计算学业进度）
type UpdateEnrollmentRequest struct {
	Mark   *float64 `json:"mark"   binding:"omitempty,min=-1"`
	Grade  *string  `json:"grade"  binding:"omitnil,grade"`
	Points *float64 `json:"points"`
}

// EnrollmentResponse 成绩信息
type EnrollmentResponse struct {
	ID          string  `json:"id"`
	SeatID      int     `json:"seat_id"`
	Level       int     `json:"level"`
	Semester    int     `json:"semester"`
	Year        string  `json:"year"`
	Month       string  `json:"month"`
	Mark        float64 `json:"mark"`
	FullMark    int     `json:"full_mark"`
	Grade       string  `json:"grade"`
	Points      float64 `json:"points"`
	StudentID   string  `json:"student_id"`
	CourseID    int     `json:"course_id"`
	CourseCode  string  `json:"course_code,omitempty"`
	CourseName  string  `json:"course_name,omitempty"`
	CreditHours int     `json:"credit_hours,omitempty"`
}
