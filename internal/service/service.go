package service

import (
	"go.uber.org/zap"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/repository"
	"ultramacro/backend/pkg/logger"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Student    StudentService
	Course     CourseService
	Enrollment EnrollmentService
	Upload     UploadService
	Export     ExportService
	Catalog    CatalogService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	log *zap.Logger,
) *Service {
	return &Service{
		Student:    NewStudentService(repo, cfg.Progress, logger.Named(log, "student")),
		Course:     NewCourseService(repo, logger.Named(log, "course")),
		Enrollment: NewEnrollmentService(repo, logger.Named(log, "enrollment")),
		Upload:     NewUploadService(repo, cfg.Upload, cfg.Progress, logger.Named(log, "upload")),
		Export:     NewExportService(repo, logger.Named(log, "export")),
		Catalog:    NewCatalogService(repo, logger.Named(log, "catalog")),
	}
}
