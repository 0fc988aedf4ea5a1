package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/api/handler"
	"ultramacro/backend/internal/api/middleware"
	"ultramacro/backend/pkg/jwt"
	"ultramacro/backend/pkg/redis"
)

// multipartOverhead multipart 边界与表单头的额外字节
const multipartOverhead = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Upload.MaxFileSize + multipartOverhead))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 上传模块：仅管理员，按 IP 限流
		uploads := v1.Group("/uploads")
		{
			limit := middleware.RateLimit(rdb, cfg.Upload.RateLimit, cfg.Upload.RateLimitWindow)
			uploads.POST("/divisions", middleware.RoleAuth("admin"), limit, h.Upload.UploadDivisions)
			uploads.POST("/courses", middleware.RoleAuth("admin"), limit, h.Upload.UploadCourses)
			uploads.POST("/enrollments", middleware.RoleAuth("admin"), limit, h.Upload.UploadEnrollments)
			uploads.GET("", middleware.RoleAuth("admin"), h.Upload.ListUploads)
			uploads.GET("/:id/report", middleware.RoleAuth("admin"), h.Export.ExportUploadReport)
		}

		// 学生模块
		students := v1.Group("/students")
		{
			students.GET("", h.Student.ListStudents)
			students.GET("/graduates", h.Student.ListGraduates)
			students.GET("/:id", h.Student.GetStudent)
		}

		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
		}

		// 成绩模块
		enrollments := v1.Group("/enrollments")
		{
			enrollments.GET("/:id", h.Enrollment.GetEnrollment)
			enrollments.PATCH("/:id", middleware.RoleAuth("admin"), h.Enrollment.UpdateEnrollment)
		}

		// 基础目录
		v1.GET("/regulations", h.Catalog.ListRegulations)
		v1.GET("/departments", h.Catalog.ListDepartments)
		v1.GET("/divisions", h.Catalog.ListDivisions)
	}

	return r
}
