package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredFaq pairs an FAQ with its cosine similarity to a query.
type ScoredFaq struct {
	Faq        *entity.Faq
	Similarity float64
}

type FaqRepository interface {
	Create(ctx context.Context, faq *entity.Faq, embedding []float32) error
	CreateBulk(ctx context.Context, faqs []*entity.Faq, embeddings [][]float32) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Faq, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Faq, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredFaq, error)
}
