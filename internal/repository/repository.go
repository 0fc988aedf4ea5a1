package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Regulation RegulationRepository
	Department DepartmentRepository
	Division   DivisionRepository
	Course     CourseRepository
	Student    StudentRepository
	Enrollment EnrollmentRepository
	UploadLog  UploadLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Regulation: NewRegulationRepo(db),
		Department: NewDepartmentRepo(db),
		Division:   NewDivisionRepo(db),
		Course:     NewCourseRepo(db),
		Student:    NewStudentRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		UploadLog:  NewUploadLogRepo(db),
	}
}

// BeginTx 开启事务
// 单元测试中 Repository 由 mock 组装、没有底层连接，此时返回 (nil, nil)，
// 调用方需对 tx 判空后再 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
