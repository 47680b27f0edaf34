package implementation

import (
	"context"
	"errors"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RetrievalConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewRetrievalConfigRepository(db *gorm.DB) contract.RetrievalConfigRepository {
	return &RetrievalConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *RetrievalConfigRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.RetrievalConfig, error) {
	var m model.RetrievalConfig
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RetrievalConfigToEntity(&m), nil
}

func (r *RetrievalConfigRepositoryImpl) Upsert(ctx context.Context, cfg *entity.RetrievalConfig) error {
	m := r.mapper.RetrievalConfigToModel(cfg)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"num_rag_results", "num_faq_results", "max_documents_to_client", "source_id_priority", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*cfg = *r.mapper.RetrievalConfigToEntity(m)
	return nil
}
