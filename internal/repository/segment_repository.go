package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ragchat/internal/model"
)

type SegmentRepository struct {
	db *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

func (r *SegmentRepository) CreateBatch(ctx context.Context, segments []model.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&segments).Error; err != nil {
		return fmt.Errorf("create segments batch failed: %w", err)
	}
	return nil
}

// Find returns segments in storage order (document, then chunk sequence).
// A documentID of 0 selects the entire corpus.
func (r *SegmentRepository) Find(ctx context.Context, documentID uint) ([]model.Segment, error) {
	q := r.db.WithContext(ctx).Order("document_id ASC, seq ASC")
	if documentID != 0 {
		q = q.Where("document_id = ?", documentID)
	}
	var segments []model.Segment
	if err := q.Find(&segments).Error; err != nil {
		return nil, fmt.Errorf("find segments failed: %w", err)
	}
	return segments, nil
}

func (r *SegmentRepository) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Segment{}).Error; err != nil {
		return fmt.Errorf("delete segments by document failed: %w", err)
	}
	return nil
}
