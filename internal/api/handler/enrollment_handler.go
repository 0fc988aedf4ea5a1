package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/response"
)

// EnrollmentHandler 成绩模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	RegisterValidators()
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// GetEnrollment 成绩详情
// GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "成绩ID不能为空")
		return
	}

	e, err := h.enrollmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OK(c, e)
}

// UpdateEnrollment 更正成绩（只改字段，不重算学生进度）
// PATCH /api/v1/enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "成绩ID不能为空")
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Mark == nil && req.Grade == nil && req.Points == nil {
		response.BadRequest(c, 10001, "至少需要更正一个字段")
		return
	}

	e, err := h.enrollmentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OK(c, e)
}

func handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 23001, "成绩记录不存在")
	default:
		response.InternalError(c)
	}
}
