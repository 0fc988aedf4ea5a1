package repository

import (
	"context"

	"gorm.io/gorm"

	"ultramacro/backend/internal/model"
)

// RegulationRepository 规章数据访问接口
type RegulationRepository interface {
	Create(ctx context.Context, reg *model.Regulation) error
	GetByID(ctx context.Context, id int) (*model.Regulation, error)
	GetByName(ctx context.Context, name string) (*model.Regulation, error)
	List(ctx context.Context) ([]model.Regulation, error)
}

// regulationRepo RegulationRepository 的 GORM 实现
type regulationRepo struct {
	db *gorm.DB
}

// NewRegulationRepo 创建 RegulationRepository 实例
func NewRegulationRepo(db *gorm.DB) RegulationRepository {
	return &regulationRepo{db: db}
}

func (r *regulationRepo) Create(ctx context.Context, reg *model.Regulation) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *regulationRepo) GetByID(ctx context.Context, id int) (*model.Regulation, error) {
	var reg model.Regulation
	if err := r.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *regulationRepo) GetByName(ctx context.Context, name string) (*model.Regulation, error) {
	var reg model.Regulation
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *regulationRepo) List(ctx context.Context) ([]model.Regulation, error) {
	var regs []model.Regulation
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&regs).Error
	return regs, err
}
