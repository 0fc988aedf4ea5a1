package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// ── 成绩模块业务错误 ──

var (
	ErrEnrollmentNotFound = errors.New("成绩记录不存在")
)

// missingSessionField 表头缺少年级 / 学期时写入的占位值
const missingSessionField = -1

// ────────────────────── EnrollmentReconciler ──────────────────────

// EnrollmentReconciler 判断成绩行是否已入库，未入库时创建并计算绩点
type EnrollmentReconciler struct {
	repo   *repository.Repository
	rules  config.ProgressConfig
	logger *zap.Logger
}

// NewEnrollmentReconciler 创建 EnrollmentReconciler
func NewEnrollmentReconciler(repo *repository.Repository, rules config.ProgressConfig, logger *zap.Logger) *EnrollmentReconciler {
	return &EnrollmentReconciler{repo: repo, rules: rules, logger: logger}
}

// GetOrCreate 按去重键查找成绩；已存在返回 (nil, nil)，否则创建并返回新成绩
// 去重键：座位号 / 年级 / 学期 / 年份 / 月份 / 分数 / 学生 / 课程
func (r *EnrollmentReconciler) GetOrCreate(ctx context.Context, headers *dto.TranscriptHeaders, row *dto.TranscriptRow, student *model.Student, course *model.Course) (*model.Enrollment, error) {
	e := &model.Enrollment{
		SeatID:    row.SeatID,
		Level:     missingSessionField,
		Semester:  missingSessionField,
		Year:      headers.Year,
		Month:     headers.Month,
		Mark:      row.Mark,
		FullMark:  row.FullMark,
		Grade:     row.Grade,
		StudentID: student.ID,
		CourseID:  course.ID,
	}
	if headers.Level != nil {
		e.Level = *headers.Level
	}
	if headers.Semester != nil {
		e.Semester = *headers.Semester
	}

	_, err := r.repo.Enrollment.FindDuplicate(ctx, e)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Error("查询重复成绩失败",
			zap.String("student", student.Name), zap.String("code", course.Code), zap.Error(err))
		return nil, err
	}

	e.Points = r.ComputePoints(e.Grade, e.Mark, course.CreditHours)
	if err := r.repo.Enrollment.Create(ctx, e); err != nil {
		r.logger.Error("创建成绩失败",
			zap.String("student", student.Name), zap.String("code", course.Code), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// ComputePoints 绩点 = mark / (学分 × 10) - 5（仅 A–D 且学分非 0），否则为 0
func (r *EnrollmentReconciler) ComputePoints(grade string, mark float64, creditHours int) float64 {
	if creditHours == 0 {
		return 0
	}
	for _, g := range r.rules.PassingGrades {
		if g == grade {
			return mark/(float64(creditHours)*10) - 5
		}
	}
	return 0
}

// ────────────────────── EnrollmentService ──────────────────────

// EnrollmentService 成绩查询与更正接口
type EnrollmentService interface {
	GetByID(ctx context.Context, id string) (*dto.EnrollmentResponse, error)
	// Update 更正分数 / 等级 / 绩点，不重新计算学生进度
	Update(ctx context.Context, id string, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

func (s *enrollmentService) GetByID(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEnrollmentResponse(e), nil
}

func (s *enrollmentService) Update(ctx context.Context, id string, req *dto.UpdateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Mark != nil {
		e.Mark = *req.Mark
	}
	if req.Grade != nil {
		e.Grade = *req.Grade
	}
	if req.Points != nil {
		e.Points = *req.Points
	}

	if err := s.repo.Enrollment.Update(ctx, e); err != nil {
		s.logger.Error("更新成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("成绩已更正", zap.String("id", id), zap.String("student_id", e.StudentID))
	return toEnrollmentResponse(e), nil
}

// ── 内部辅助函数 ──

func toEnrollmentResponse(e *model.Enrollment) *dto.EnrollmentResponse {
	resp := &dto.EnrollmentResponse{
		ID:        e.ID,
		SeatID:    e.SeatID,
		Level:     e.Level,
		Semester:  e.Semester,
		Year:      e.Year,
		Month:     e.Month,
		Mark:      e.Mark,
		FullMark:  e.FullMark,
		Grade:     e.Grade,
		Points:    e.Points,
		StudentID: e.StudentID,
		CourseID:  e.CourseID,
	}
	if e.Course != nil {
		resp.CourseCode = e.Course.Code
		resp.CourseName = e.Course.Name
		resp.CreditHours = e.Course.CreditHours
	}
	return resp
}
