package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportUploadReport 下载成绩上传的逐行结果
// GET /api/v1/uploads/:id/report
func (h *ExportHandler) ExportUploadReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "上传记录ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportUploadReport(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUploadLogNotFound):
		response.NotFound(c, 24001, "上传记录不存在")
	case errors.Is(err, service.ErrExportUnsupported):
		response.BadRequest(c, 24002, "该类型的上传记录不支持导出")
	default:
		response.InternalError(c)
	}
}
