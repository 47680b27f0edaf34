package mapper

import (
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeMapper converts between knowledge-base models and entities
// (documents, FAQs, retrieval config).
type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) DocumentToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:         d.Id,
		DocumentId: d.DocumentId,
		Title:      d.Title,
		Content:    d.Content,
		Source:     d.Source,
		SourceId:   d.SourceId,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  d.DeletedAt.Valid,
	}
}

func (m *KnowledgeMapper) DocumentToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:         d.Id,
		DocumentId: d.DocumentId,
		Title:      d.Title,
		Content:    d.Content,
		Source:     d.Source,
		SourceId:   d.SourceId,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *KnowledgeMapper) FaqToEntity(f *model.Faq) *entity.Faq {
	if f == nil {
		return nil
	}

	var deletedAt *time.Time
	if f.DeletedAt.Valid {
		t := f.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.Faq{
		Id:        f.Id,
		FaqId:     f.FaqId,
		Question:  f.Question,
		Answer:    f.Answer,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: f.DeletedAt.Valid,
	}
}

func (m *KnowledgeMapper) FaqToModel(f *entity.Faq) *model.Faq {
	if f == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if f.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *f.DeletedAt, Valid: true}
	} else if f.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.Faq{
		Id:        f.Id,
		FaqId:     f.FaqId,
		Question:  f.Question,
		Answer:    f.Answer,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *KnowledgeMapper) RetrievalConfigToEntity(c *model.RetrievalConfig) *entity.RetrievalConfig {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.RetrievalConfig{
		Id:                   c.Id,
		Name:                 c.Name,
		NumRagResults:        c.NumRagResults,
		NumFaqResults:        c.NumFaqResults,
		MaxDocumentsToClient: c.MaxDocumentsToClient,
		SourceIdPriority:     []string(c.SourceIdPriority),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            updatedAt,
	}
}

func (m *KnowledgeMapper) RetrievalConfigToModel(c *entity.RetrievalConfig) *model.RetrievalConfig {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.RetrievalConfig{
		Id:                   c.Id,
		Name:                 c.Name,
		NumRagResults:        c.NumRagResults,
		NumFaqResults:        c.NumFaqResults,
		MaxDocumentsToClient: c.MaxDocumentsToClient,
		SourceIdPriority:     datatypes.NewJSONSlice(c.SourceIdPriority),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            updatedAt,
	}
}
