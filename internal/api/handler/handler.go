package handler

import "ultramacro/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Upload     *UploadHandler
	Student    *StudentHandler
	Course     *CourseHandler
	Enrollment *EnrollmentHandler
	Catalog    *CatalogHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
// maxFileSize 为单个上传文件的字节上限
func NewHandler(svc *service.Service, maxFileSize int64) *Handler {
	return &Handler{
		Upload:     NewUploadHandler(svc.Upload, maxFileSize),
		Student:    NewStudentHandler(svc.Student),
		Course:     NewCourseHandler(svc.Course),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Catalog:    NewCatalogHandler(svc.Catalog),
		Export:     NewExportHandler(svc.Export),
	}
}
