package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ultramacro/backend/internal/model"
)

// StudentListFilters 学生列表筛选条件
type StudentListFilters struct {
	RegulationID *int  // 分组或方向属于该规章
	Graduate     *bool // 仅毕业 / 仅在读
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// GetByName 按姓名精确匹配（同名时取最早创建的一条）
	GetByName(ctx context.Context, name string) (*model.Student, error)
	// GetByNameForUpdate 同 GetByName，并对该行加 FOR UPDATE 锁（需在事务中调用）
	GetByNameForUpdate(ctx context.Context, name string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	List(ctx context.Context, filters *StudentListFilters, offset, limit int) ([]model.Student, int64, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Group.Regulation").
		Preload("Group.Department1").
		Preload("Group.Department2").
		Preload("Division.Regulation").
		Preload("Division.Department1").
		Preload("Division.Department2").
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByName(ctx context.Context, name string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByNameForUpdate(ctx context.Context, name string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(student).Error
}

func (r *studentRepo) List(ctx context.Context, filters *StudentListFilters, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filters != nil {
		if filters.RegulationID != nil {
			sub := r.db.Model(&model.Division{}).
				Select("id").
				Where("regulation_id = ?", *filters.RegulationID)
			db = db.Where("(group_id IN (?) OR division_id IN (?))", sub, sub)
		}
		if filters.Graduate != nil {
			db = db.Where("graduate = ?", *filters.Graduate)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Group").Preload("Division").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
