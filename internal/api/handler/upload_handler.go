package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/response"
)

// UploadHandler 表格上传模块 HTTP 处理器
type UploadHandler struct {
	uploadSvc   service.UploadService
	maxFileSize int64
}

// NewUploadHandler 创建 UploadHandler
func NewUploadHandler(uploadSvc service.UploadService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc, maxFileSize: maxFileSize}
}

// UploadDivisions 上传方向表
// POST /api/v1/uploads/divisions?regulation=1   multipart/form-data, field="file"
func (h *UploadHandler) UploadDivisions(c *gin.Context) {
	var req dto.DivisionUploadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	uploader, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.uploadSvc.UploadDivisions(c.Request.Context(), file, header.Filename, req.Regulation, uploader)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	response.Created(c, resp)
}

// UploadCourses 上传学分表
// POST /api/v1/uploads/courses   multipart/form-data, field="file"
func (h *UploadHandler) UploadCourses(c *gin.Context) {
	uploader, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.uploadSvc.UploadCourses(c.Request.Context(), file, header.Filename, uploader)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	response.Created(c, resp)
}

// UploadEnrollments 上传成绩单
// POST /api/v1/uploads/enrollments   multipart/form-data, field="file"
//
// 单行失败不影响整体，逐行结果在 report 中返回
func (h *UploadHandler) UploadEnrollments(c *gin.Context) {
	uploader, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.uploadSvc.UploadEnrollments(c.Request.Context(), file, header.Filename, uploader)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	response.OK(c, dto.EnrollmentUploadResponse{
		Total:   len(report),
		Report:  report,
		Summary: service.SummarizeReport(report),
	})
}

// ListUploads 上传记录列表
// GET /api/v1/uploads?kind=enrollments&page=1&page_size=20
func (h *UploadHandler) ListUploads(c *gin.Context) {
	var req dto.UploadLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.uploadSvc.ListLogs(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// openUpload 取出 multipart 中的 file 字段并做大小、扩展名检查
// 失败时已写入响应，调用方直接 return
func (h *UploadHandler) openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, 20002, "文件超过大小限制")
			return nil, nil, false
		}
		response.BadRequest(c, 20001, "请上传 Excel 文件")
		return nil, nil, false
	}

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 20002, "文件超过大小限制")
		return nil, nil, false
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		response.BadRequest(c, 20003, "仅支持 .xlsx / .xlsm 文件")
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		response.InternalError(c)
		return nil, nil, false
	}
	return file, header, true
}

func handleUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkbookUnreadable):
		response.BadRequest(c, 20004, "无法读取 Excel 文件")
	case errors.Is(err, service.ErrWorkbookMalformed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20005, "Excel 文件结构不符合约定", err.Error())
	case errors.Is(err, service.ErrDivisionNotFound):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20006, "方向不存在", err.Error())
	case errors.Is(err, service.ErrRegulationNotFound):
		response.NotFound(c, 20007, "规章不存在")
	default:
		response.InternalError(c)
	}
}
