package handler

import (
	"github.com/gin-gonic/gin"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/response"
)

// CatalogHandler 规章 / 院系 / 方向查询
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListRegulations GET /api/v1/regulations
func (h *CatalogHandler) ListRegulations(c *gin.Context) {
	list, err := h.catalogSvc.ListRegulations(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListDepartments GET /api/v1/departments
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	list, err := h.catalogSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListDivisions GET /api/v1/divisions?regulation=1
func (h *CatalogHandler) ListDivisions(c *gin.Context) {
	var req dto.DivisionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.catalogSvc.ListDivisions(c.Request.Context(), req.Regulation)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}
