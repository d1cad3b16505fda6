package analyses

import (
	"context"
	"fmt"

	"github.com/AyoubFaradi/emotion-ai/database/models"
	"gorm.io/gorm"
)

// Repository 情绪分析记录仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的分析记录仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create 插入一条分析记录
func (r *Repository) Create(ctx context.Context, analysis *models.EmotionAnalysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create emotion analysis: %w", err)
	}
	return nil
}

// CreateInTransaction 在事务中插入一条分析记录，失败整体回滚
func (r *Repository) CreateInTransaction(ctx context.Context, analysis *models.EmotionAnalysis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(analysis).Error; err != nil {
			return fmt.Errorf("failed to create emotion analysis: %w", err)
		}
		return nil
	})
}

// ListByUser 返回某个用户的全部分析记录，按创建时间倒序
func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]models.EmotionAnalysis, error) {
	var records []models.EmotionAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list emotion analyses: %w", err)
	}
	return records, nil
}

// CountByUser 统计某个用户的分析记录数
func (r *Repository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmotionAnalysis{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count emotion analyses: %w", err)
	}
	return count, nil
}
