package repository

import (
	"context"

	"gorm.io/gorm"

	"ultramacro/backend/internal/model"
)

// DivisionRepository 专业方向数据访问接口
type DivisionRepository interface {
	Create(ctx context.Context, div *model.Division) error
	GetByID(ctx context.Context, id int) (*model.Division, error)
	GetByName(ctx context.Context, name string) (*model.Division, error)
	ListByRegulation(ctx context.Context, regulationID int) ([]model.Division, error)
}

// divisionRepo DivisionRepository 的 GORM 实现
type divisionRepo struct {
	db *gorm.DB
}

// NewDivisionRepo 创建 DivisionRepository 实例
func NewDivisionRepo(db *gorm.DB) DivisionRepository {
	return &divisionRepo{db: db}
}

func (r *divisionRepo) Create(ctx context.Context, div *model.Division) error {
	return r.db.WithContext(ctx).Create(div).Error
}

func (r *divisionRepo) GetByID(ctx context.Context, id int) (*model.Division, error) {
	var div model.Division
	err := r.db.WithContext(ctx).
		Preload("Regulation").
		Preload("Department1").
		Preload("Department2").
		First(&div, id).Error
	if err != nil {
		return nil, err
	}
	return &div, nil
}

// GetByName 按名称精确匹配；同名时取最早创建的一条
func (r *divisionRepo) GetByName(ctx context.Context, name string) (*model.Division, error) {
	var div model.Division
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id ASC").
		First(&div).Error
	if err != nil {
		return nil, err
	}
	return &div, nil
}

func (r *divisionRepo) ListByRegulation(ctx context.Context, regulationID int) ([]model.Division, error) {
	var divs []model.Division
	err := r.db.WithContext(ctx).
		Where("regulation_id = ?", regulationID).
		Order("id ASC").
		Find(&divs).Error
	return divs, err
}
