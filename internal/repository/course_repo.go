package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ultramacro/backend/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id int) (*model.Course, error)
	// GetByCode 仅按课程代码查询（同代码多条时取最早一条）
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	// GetByCodeAndDivision 查询挂在指定方向下的课程代码
	GetByCodeAndDivision(ctx context.Context, code string, divisionID int) (*model.Course, error)
	// AttachDivision 建立课程与方向的关联（已存在则忽略）
	AttachDivision(ctx context.Context, courseID, divisionID int) error
	// ListRequiredByDivision 列出方向下的全部必修课
	ListRequiredByDivision(ctx context.Context, divisionID int) ([]model.Course, error)
	List(ctx context.Context, regulationID *int, offset, limit int) ([]model.Course, int64, error)
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Divisions").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id int) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Divisions").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("id ASC").
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCodeAndDivision(ctx context.Context, code string, divisionID int) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_divisions cd ON cd.course_id = courses.id").
		Where("courses.code = ? AND cd.division_id = ?", code, divisionID).
		Order("courses.id ASC").
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) AttachDivision(ctx context.Context, courseID, divisionID int) error {
	return r.db.WithContext(ctx).
		Table("course_divisions").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{
			"course_id":   courseID,
			"division_id": divisionID,
		}).Error
}

func (r *courseRepo) ListRequiredByDivision(ctx context.Context, divisionID int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_divisions cd ON cd.course_id = courses.id").
		Where("cd.division_id = ? AND courses.required = ?", divisionID, true).
		Order("courses.id ASC").
		Find(&courses).Error
	return courses, err
}

// List 分页列出课程；regulationID 非空时只返回挂在该规章下任一方向的课程
func (r *courseRepo) List(ctx context.Context, regulationID *int, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if regulationID != nil {
		sub := r.db.Table("course_divisions cd").
			Select("cd.course_id").
			Joins("JOIN divisions d ON d.id = cd.division_id").
			Where("d.regulation_id = ?", *regulationID)
		db = db.Where("courses.id IN (?)", sub)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Divisions").
		Offset(offset).Limit(limit).
		Order("courses.level ASC, courses.semester ASC, courses.code ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}
