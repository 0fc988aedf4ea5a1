package repository

import (
	"context"

	"gorm.io/gorm"

	"ultramacro/backend/internal/model"
)

// UploadLogRepository 上传记录数据访问接口
type UploadLogRepository interface {
	Create(ctx context.Context, log *model.UploadLog) error
	GetByID(ctx context.Context, id string) (*model.UploadLog, error)
	List(ctx context.Context, kind string, offset, limit int) ([]model.UploadLog, int64, error)
}

// uploadLogRepo UploadLogRepository 的 GORM 实现
type uploadLogRepo struct {
	db *gorm.DB
}

// NewUploadLogRepo 创建 UploadLogRepository 实例
func NewUploadLogRepo(db *gorm.DB) UploadLogRepository {
	return &uploadLogRepo{db: db}
}

func (r *uploadLogRepo) Create(ctx context.Context, log *model.UploadLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *uploadLogRepo) GetByID(ctx context.Context, id string) (*model.UploadLog, error) {
	var log model.UploadLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// List 按时间倒序分页；kind 为空时不过滤
func (r *uploadLogRepo) List(ctx context.Context, kind string, offset, limit int) ([]model.UploadLog, int64, error) {
	var logs []model.UploadLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.UploadLog{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
