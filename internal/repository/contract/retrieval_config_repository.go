package contract

import (
	"context"

	"rag-chat-be/internal/entity"
)

type RetrievalConfigRepository interface {
	// FindByName returns the named config, or nil when absent.
	FindByName(ctx context.Context, name string) (*entity.RetrievalConfig, error)
	Upsert(ctx context.Context, cfg *entity.RetrievalConfig) error
}
