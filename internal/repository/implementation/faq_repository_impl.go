package implementation

import (
	"context"
	"errors"
	"fmt"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type FaqRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewFaqRepository(db *gorm.DB) contract.FaqRepository {
	return &FaqRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *FaqRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FaqRepositoryImpl) Create(ctx context.Context, faq *entity.Faq, embedding []float32) error {
	m := r.mapper.FaqToModel(faq)
	m.EmbeddingValue = pgvector.NewVector(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*faq = *r.mapper.FaqToEntity(m)
	return nil
}

func (r *FaqRepositoryImpl) CreateBulk(ctx context.Context, faqs []*entity.Faq, embeddings [][]float32) error {
	if len(faqs) != len(embeddings) {
		return fmt.Errorf("faqs/embeddings length mismatch: %d vs %d", len(faqs), len(embeddings))
	}
	models := make([]*model.Faq, len(faqs))
	for i, f := range faqs {
		models[i] = r.mapper.FaqToModel(f)
		models[i].EmbeddingValue = pgvector.NewVector(embeddings[i])
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*faqs[i] = *r.mapper.FaqToEntity(m)
	}
	return nil
}

func (r *FaqRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Faq{}, id).Error
}

func (r *FaqRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Faq, error) {
	var m model.Faq
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FaqToEntity(&m), nil
}

func (r *FaqRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Faq, error) {
	var models []*model.Faq
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Faq, len(models))
	for i, m := range models {
		entities[i] = r.mapper.FaqToEntity(m)
	}
	return entities, nil
}

func (r *FaqRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Faq{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FaqRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredFaq, error) {
	if limit <= 0 {
		limit = entity.DefaultNumFaqResults
	}

	type result struct {
		model.Faq
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("faqs").
		Select("faqs.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("faqs.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredFaq, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredFaq{
			Faq:        r.mapper.FaqToEntity(&res.Faq),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
