package dto

// ── 基础目录（只读） ──

// RegulationResponse 规章
type RegulationResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	MaxGPA int    `json:"max_gpa"`
}

// DepartmentResponse 院系
type DepartmentResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DivisionListRequest 方向列表查询参数
type DivisionListRequest struct {
	Regulation int `form:"regulation" binding:"required,min=1"`
}
