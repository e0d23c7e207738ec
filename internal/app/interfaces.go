package app

import (
	"context"

	"ragchat/internal/model"
)

// Collaborator interfaces consumed by the services. The repository, ai,
// cache and rabbitmq packages provide the production implementations; tests
// substitute in-memory fakes.

type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id uint) (*model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	List(ctx context.Context) ([]model.DocumentSummary, error)
	DeleteWithSegments(ctx context.Context, id uint) error
}

type SegmentStore interface {
	CreateBatch(ctx context.Context, segments []model.Segment) error
	// Find returns segments in storage order; documentID 0 means the whole corpus.
	Find(ctx context.Context, documentID uint) ([]model.Segment, error)
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type AnswerProvider interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
	Summarize(ctx context.Context, documentText string) (string, error)
}

type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, vec []float32) error
}

type QueryLogPublisher interface {
	Publish(ctx context.Context, entry model.QueryLog) error
}
