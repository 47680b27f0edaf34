package unitofwork

import (
	"context"

	"rag-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatTurnRepository() contract.ChatTurnRepository
	DocumentRepository() contract.DocumentRepository
	FaqRepository() contract.FaqRepository
	RetrievalConfigRepository() contract.RetrievalConfigRepository
}
