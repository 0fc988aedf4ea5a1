package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ultramacro/backend/internal/model"
)

// EnrollmentRepository 成绩记录数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	Update(ctx context.Context, e *model.Enrollment) error
	// FindDuplicate 按去重键查找已存在的成绩，不存在时返回 gorm.ErrRecordNotFound
	FindDuplicate(ctx context.Context, key *model.Enrollment) (*model.Enrollment, error)
	// ListPrior 列出该学生该课程除 excludeID 外的全部成绩，按录入顺序
	ListPrior(ctx context.Context, studentID string, courseID int, excludeID string) ([]model.Enrollment, error)
	// ListByStudent 列出学生全部成绩（含课程信息）
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	// ListPassedCourseIDs 列出学生已通过的课程 ID：等级属于及格集合，或研究课成绩且分数为 0
	ListPassedCourseIDs(ctx context.Context, studentID string, passingGrades []string, researchGrade string) ([]int, error)
}

// enrollmentRepo EnrollmentRepository 的 GORM 实现
type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (r *enrollmentRepo) FindDuplicate(ctx context.Context, key *model.Enrollment) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("seat_id = ? AND level = ? AND semester = ? AND year = ? AND month = ?",
			key.SeatID, key.Level, key.Semester, key.Year, key.Month).
		Where("mark = ? AND student_id = ? AND course_id = ?",
			key.Mark, key.StudentID, key.CourseID).
		Take(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ListPrior(ctx context.Context, studentID string, courseID int, excludeID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND id <> ?", studentID, courseID, excludeID).
		Order("seq ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("seq ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListPassedCourseIDs(ctx context.Context, studentID string, passingGrades []string, researchGrade string) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ?", studentID).
		Where("(grade IN ? OR (grade = ? AND mark = 0))", passingGrades, researchGrade).
		Distinct().
		Pluck("course_id", &ids).Error
	return ids, err
}
