package repository

import (
	"fmt"

	"gorm.io/gorm"

	"ragchat/internal/model"
)

type QueryLogRepository struct {
	db *gorm.DB
}

func NewQueryLogRepository(db *gorm.DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

func (r *QueryLogRepository) Create(entry *model.QueryLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create query log failed: %w", err)
	}
	return nil
}
