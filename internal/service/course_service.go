package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// CourseService 课程查询接口
type CourseService interface {
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	GetByID(ctx context.Context, id int) (*dto.CourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.repo.Course.List(ctx, req.Regulation, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

func (s *courseService) GetByID(ctx context.Context, id int) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	divisions := make([]string, 0, len(c.Divisions))
	for _, d := range c.Divisions {
		divisions = append(divisions, d.Name)
	}
	return dto.CourseResponse{
		ID:             c.ID,
		Code:           c.Code,
		Name:           c.Name,
		LectureHours:   c.LectureHours,
		PracticalHours: c.PracticalHours,
		CreditHours:    c.CreditHours,
		Level:          c.Level,
		Semester:       c.Semester,
		Required:       c.Required,
		Divisions:      divisions,
	}
}
