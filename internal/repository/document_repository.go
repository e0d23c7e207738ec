package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragchat/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// GetByID returns the document or nil when it does not exist.
func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("update document failed: %w", err)
	}
	return nil
}

// List returns all documents, newest first, each with its segment count.
func (r *DocumentRepository) List(ctx context.Context) ([]model.DocumentSummary, error) {
	var docs []model.Document
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}

	type countRow struct {
		DocumentID uint
		N          int64
	}
	var rows []countRow
	if err := r.db.WithContext(ctx).
		Model(&model.Segment{}).
		Select("document_id, COUNT(*) AS n").
		Group("document_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count segments failed: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.DocumentID] = row.N
	}

	summaries := make([]model.DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = model.DocumentSummary{
			Document:     doc,
			Tags:         doc.TagList(),
			SegmentCount: counts[doc.ID],
		}
	}
	return summaries, nil
}

// DeleteWithSegments removes the document and all its segments in one
// transaction, so no orphaned segments can survive a partial delete.
func (r *DocumentRepository) DeleteWithSegments(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Segment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete document with segments failed: %w", err)
	}
	return nil
}
