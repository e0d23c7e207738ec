package app

import (
	"context"
	"strings"

	"ragchat/internal/model"
)

// DocumentService covers the document management surface: listing with
// segment counts, metadata updates and cascade deletion.
type DocumentService struct {
	docStore DocumentStore
}

func NewDocumentService(docStore DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

func (s *DocumentService) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	return s.docStore.List(ctx)
}

// UpdateDocumentInput uses nil pointers for fields the caller did not send,
// so "not provided" and "set to empty" stay distinguishable.
type UpdateDocumentInput struct {
	ID       uint
	Title    *string
	Category *string
	Tags     *[]string
}

func (s *DocumentService) UpdateDocument(ctx context.Context, input UpdateDocumentInput) (*model.Document, error) {
	if input.ID == 0 {
		return nil, ErrInvalidInput
	}

	doc, err := s.docStore.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		doc.Title = title
	}
	if input.Category != nil {
		doc.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		doc.SetTags(*input.Tags)
	}

	if err := s.docStore.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes the document together with every segment it owns.
func (s *DocumentService) DeleteDocument(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}

	doc, err := s.docStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	return s.docStore.DeleteWithSegments(ctx, id)
}
