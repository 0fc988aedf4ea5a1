package dto

import "encoding/json"

// ── 表格解析结果 ──

// DivisionRow 方向表中的一行
type DivisionRow struct {
	Department1 string  `json:"department_1"`
	Department2 *string `json:"department_2,omitempty"`
	Name        string  `json:"name"`
	Hours       int     `json:"hours"`
	Private     bool    `json:"private"`
}

// CourseRow 学分表中的一行（一门课程在一个方向下的开设）
type CourseRow struct {
	Level          int    `json:"level"`
	Semester       int    `json:"semester"`
	Division       string `json:"division"`
	Code           string `json:"code"`
	Required       bool   `json:"required"`
	Name           string `json:"name"`
	LectureHours   int    `json:"lecture_hours"`
	PracticalHours int    `json:"practical_hours"`
	CreditHours    int    `json:"credit_hours"`
}

// TranscriptHeaders 成绩单表头（一场考试的会话信息）
// Level / Semester / Department 无法识别时为 nil
type TranscriptHeaders struct {
	Regulation string  `json:"regulation"`
	Year       string  `json:"year"`
	Level      *int    `json:"level"`
	Semester   *int    `json:"semester"`
	Month      string  `json:"month"`
	Department *string `json:"department"`
	Division   string  `json:"division"`
}

// TranscriptRow 成绩单中一名学生一门课程的成绩
type TranscriptRow struct {
	SeatID   int     `json:"seat_id"`
	Student  string  `json:"student"`
	Course   string  `json:"course"`
	Code     string  `json:"code"`
	Hours    int     `json:"hours"`
	Grade    string  `json:"grade"`
	Points   float64 `json:"points"`
	Mark     float64 `json:"mark"`
	FullMark int     `json:"full_mark"`
}

// Transcript 一份成绩单文件的解析结果
type Transcript struct {
	Headers TranscriptHeaders `json:"headers"`
	Content []TranscriptRow   `json:"content"`
}

// ── 上传结果 ──

// 成绩上传逐行状态
const (
	StatusAdded           = "successfully added"
	StatusAlreadyExists   = "enrollment already exists"
	StatusCourseNotFound  = "course is not in the database"
	StatusStudentNotFound = "first year data does not exist"
)

// UploadReportRow 成绩上传的逐行结果
type UploadReportRow struct {
	Student string `json:"student"`
	Course  string `json:"course"`
	Status  string `json:"status"`
}

// DivisionUploadResponse 方向表上传结果
type DivisionUploadResponse struct {
	Created   int                `json:"created"`
	Divisions []DivisionResponse `json:"divisions"`
}

// DivisionResponse 方向信息
type DivisionResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Hours         int    `json:"hours"`
	Private       bool   `json:"private"`
	Group         bool   `json:"group"`
	RegulationID  int    `json:"regulation_id"`
	Department1ID *int   `json:"department_1_id"`
	Department2ID *int   `json:"department_2_id"`
}

// CourseUploadResponse 课程表上传结果
type CourseUploadResponse struct {
	Created int `json:"created"`
}

// EnrollmentUploadResponse 成绩上传结果
type EnrollmentUploadResponse struct {
	Total   int               `json:"total"`
	Summary map[string]int    `json:"summary"`
	Report  []UploadReportRow `json:"report"`
}

// DivisionUploadRequest 方向表上传的查询参数
// 文件中全部为独立项目时可省略 regulation
type DivisionUploadRequest struct {
	Regulation int `form:"regulation" binding:"omitempty,min=1"`
}

// ── 上传记录 ──

// UploadLogListRequest 上传记录查询参数
type UploadLogListRequest struct {
	PaginationRequest
	Kind string `form:"kind" binding:"omitempty,oneof=divisions courses enrollments"`
}

// UploadLogResponse 上传记录
type UploadLogResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Filename   string          `json:"filename"`
	UploadedBy string          `json:"uploaded_by,omitempty"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Report     json.RawMessage `json:"report,omitempty"`
	CreatedAt  string          `json:"created_at"`
}
