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

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound = errors.New("学生不存在")
)

const (
	maxLevel    = 4
	maxSemester = 3 // 含夏季学期
)

// StudentService 学生查询接口
// 学生的创建与进度更新只发生在成绩上传流程中
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest, graduatesOnly bool) ([]dto.StudentResponse, int64, error)
	GetDetail(ctx context.Context, id string) (*dto.StudentDetailResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	rules  config.ProgressConfig
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, rules config.ProgressConfig, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, rules: rules, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest, graduatesOnly bool) ([]dto.StudentResponse, int64, error) {
	filters := &repository.StudentListFilters{RegulationID: req.Regulation}
	if graduatesOnly {
		graduate := true
		filters.Graduate = &graduate
	}

	students, total, err := s.repo.Student.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ═══════════════════════════════════════════════════════════
// GetDetail：学生详情
// ═══════════════════════════════════════════════════════════
//
// 按课程所属年级（1–4）× 学期（1–3）分组列出成绩，
// 每组附 Σ points × credit_hours（仅 A–D 等级）。

func (s *studentService) GetDetail(ctx context.Context, id string) (*dto.StudentDetailResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, id)
	if err != nil {
		s.logger.Error("查询学生成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	passing := make(map[string]struct{}, len(s.rules.PassingGrades))
	for _, g := range s.rules.PassingGrades {
		passing[g] = struct{}{}
	}

	levels := make([]dto.LevelBreakdown, maxLevel)
	for l := range levels {
		levels[l].Level = l + 1
		levels[l].Semesters = make([]dto.SemesterBreakdown, maxSemester)
		for sem := range levels[l].Semesters {
			levels[l].Semesters[sem] = dto.SemesterBreakdown{
				Semester:    sem + 1,
				Enrollments: []dto.EnrollmentResponse{},
			}
		}
	}
	for i := range enrollments {
		e := &enrollments[i]
		if e.Course == nil || e.Course.Level < 1 || e.Course.Level > maxLevel ||
			e.Course.Semester < 1 || e.Course.Semester > maxSemester {
			continue
		}
		bucket := &levels[e.Course.Level-1].Semesters[e.Course.Semester-1]
		bucket.Enrollments = append(bucket.Enrollments, *toEnrollmentResponse(e))
		if _, ok := passing[e.Grade]; ok {
			bucket.Points += e.Points * float64(e.Course.CreditHours)
		}
	}

	detail := &dto.StudentDetailResponse{
		StudentResponse: toStudentResponse(student),
		Levels:          levels,
	}

	// 规章与院系优先取专业方向，其次取分组
	primary := student.Group
	if student.Division != nil {
		primary = student.Division
	}
	if primary != nil && primary.Regulation != nil {
		detail.Regulation = primary.Regulation.Name
	}
	detail.Department1 = departmentName(student.Division, student.Group, func(d *model.Division) *model.Department { return d.Department1 })
	detail.Department2 = departmentName(student.Division, student.Group, func(d *model.Division) *model.Department { return d.Department2 })

	return detail, nil
}

// ── 内部辅助函数 ──

func toStudentResponse(st *model.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:              st.ID,
		Name:            st.Name,
		Level:           st.Level,
		RegisteredHours: st.RegisteredHours,
		PassedHours:     st.PassedHours,
		ExcludedHours:   st.ExcludedHours,
		ResearchHours:   st.ResearchHours,
		TotalPoints:     st.TotalPoints,
		GPA:             st.GPA,
		TotalMark:       st.TotalMark,
		Graduate:        st.Graduate,
		GroupID:         st.GroupID,
		DivisionID:      st.DivisionID,
	}
	if st.Group != nil {
		resp.GroupName = st.Group.Name
	}
	if st.Division != nil {
		resp.DivisionName = st.Division.Name
	}
	return resp
}

func departmentName(division, group *model.Division, pick func(*model.Division) *model.Department) string {
	if division != nil {
		if d := pick(division); d != nil {
			return d.Name
		}
	}
	if group != nil {
		if d := pick(group); d != nil {
			return d.Name
		}
	}
	return ""
}
