package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生列表
// GET /api/v1/students?regulation=1&page=1&page_size=20
func (h *StudentHandler) ListStudents(c *gin.Context) {
	h.list(c, false)
}

// ListGraduates 毕业生列表
// GET /api/v1/students/graduates?regulation=1
func (h *StudentHandler) ListGraduates(c *gin.Context) {
	h.list(c, true)
}

func (h *StudentHandler) list(c *gin.Context, graduatesOnly bool) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req, graduatesOnly)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 学生详情（含成绩分布）
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	detail, err := h.studentSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 21001, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, detail)
}
