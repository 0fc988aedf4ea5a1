package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// ── 实体解析错误 ──

var (
	ErrDivisionNotFound   = errors.New("方向不存在")
	ErrRegulationNotFound = errors.New("规章不存在")
	ErrCourseNotFound     = errors.New("课程不存在")
)

// EntityResolver 上传过程中按名称 / 代码解析学生、方向、课程、院系与规章
// 每个上传批次用事务内的 Repository 单独构造一个
type EntityResolver struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEntityResolver 创建 EntityResolver
func NewEntityResolver(repo *repository.Repository, logger *zap.Logger) *EntityResolver {
	return &EntityResolver{repo: repo, logger: logger}
}

// ResolveDivisionByName 按名称精确查找方向
func (r *EntityResolver) ResolveDivisionByName(ctx context.Context, name string) (*model.Division, error) {
	div, err := r.repo.Division.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDivisionNotFound
		}
		r.logger.Error("查询方向失败", zap.String("division", name), zap.Error(err))
		return nil, err
	}
	return div, nil
}

// ═══════════════════════════════════════════════════════════
// ResolveOrCreateStudent：按姓名解析学生
// ═══════════════════════════════════════════════════════════
//
//   - 已存在：目标方向既非 group 也非 private 时，将其设为学生的专业方向
//   - 不存在：仅当目标方向为 group 或 private 时新建学生（一年级 / 独立项目），
//     否则返回 (nil, nil)，表示该学生缺少一年级数据

func (r *EntityResolver) ResolveOrCreateStudent(ctx context.Context, name string, division *model.Division) (*model.Student, error) {
	student, err := r.repo.Student.GetByNameForUpdate(ctx, name)
	if err == nil {
		if division.Group || division.Private {
			return student, nil
		}
		if student.DivisionID == nil || *student.DivisionID != division.ID {
			id := division.ID
			student.DivisionID = &id
			student.Division = division
			if err := r.repo.Student.Update(ctx, student); err != nil {
				r.logger.Error("更新学生方向失败", zap.String("student", name), zap.Error(err))
				return nil, err
			}
		}
		return student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Error("查询学生失败", zap.String("student", name), zap.Error(err))
		return nil, err
	}

	if !division.Group && !division.Private {
		return nil, nil
	}

	student = &model.Student{
		Name:    name,
		Level:   1,
		GroupID: division.ID,
	}
	if err := r.repo.Student.Create(ctx, student); err != nil {
		r.logger.Error("创建学生失败", zap.String("student", name), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// ResolveCourse 先按 (代码, 方向) 查找，找不到时退回仅按代码查找
// 同一代码在不同方向下可能对应不同课程
func (r *EntityResolver) ResolveCourse(ctx context.Context, code string, divisionID int) (*model.Course, error) {
	course, err := r.repo.Course.GetByCodeAndDivision(ctx, code, divisionID)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Error("查询课程失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	course, err = r.repo.Course.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		r.logger.Error("查询课程失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// ResolveDepartmentID 将表格中的院系写法解析为院系 ID
// 写法不在映射表中或院系不存在时返回 nil
func (r *EntityResolver) ResolveDepartmentID(ctx context.Context, text string) (*int, error) {
	name, ok := NormalizeDepartment(text)
	if !ok {
		return nil, nil
	}
	dept, err := r.repo.Department.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("查询院系失败", zap.String("department", name), zap.Error(err))
		return nil, err
	}
	return &dept.ID, nil
}

// ResolveOrCreateRegulation 按名称查找规章，不存在时创建
func (r *EntityResolver) ResolveOrCreateRegulation(ctx context.Context, name string, maxGPA int) (*model.Regulation, error) {
	reg, err := r.repo.Regulation.GetByName(ctx, name)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Error("查询规章失败", zap.String("regulation", name), zap.Error(err))
		return nil, err
	}

	reg = &model.Regulation{Name: name, MaxGPA: maxGPA}
	if err := r.repo.Regulation.Create(ctx, reg); err != nil {
		r.logger.Error("创建规章失败", zap.String("regulation", name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("已创建规章", zap.String("regulation", name), zap.Int("id", reg.ID))
	return reg, nil
}
