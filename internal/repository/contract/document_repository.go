package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocument pairs a document with its cosine similarity to a query.
type ScoredDocument struct {
	Document   *entity.Document
	Similarity float64
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document, embedding []float32) error
	CreateBulk(ctx context.Context, docs []*entity.Document, embeddings [][]float32) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredDocument, error)
}
