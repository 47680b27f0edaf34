package service

import (
	"context"
	"encoding/json"
	"time"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/repository/redisstore"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	SendMessage(ctx context.Context, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	sessionStore     *redisstore.SessionStore
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	sessionStore *redisstore.SessionStore,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		sessionStore:     sessionStore,
		logger:           log,
	}
}

func (c *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:        uuid.New(),
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	if err := c.sessionStore.Create(ctx, session.Id.String()); err != nil {
		return nil, err
	}

	c.logger.Info("ChatService", "Session created", map[string]interface{}{
		"session_id": session.Id,
	})

	return &dto.CreateSessionResponse{SessionId: session.Id.String()}, nil
}

// SendMessage accepts a query, records the turn, and hands the work to the
// async pipeline. The answer arrives over the push channel, not here.
func (c *chatService) SendMessage(ctx context.Context, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("Session not found")
	}

	queryId := uuid.NewString()

	turn := entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		QueryId:       queryId,
		Query:         req.Message,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatTurnRepository().Create(ctx, &turn); err != nil {
		return nil, err
	}

	event := dto.MessageEvent{
		Query:     req.Message,
		QueryId:   queryId,
		SessionId: sessionId.String(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	// Session activity keeps the push state alive.
	if err := c.sessionStore.Touch(ctx, sessionId.String()); err != nil {
		c.logger.Warn("ChatService", "Session touch failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	return &dto.SendMessageResponse{
		QueryId: queryId,
		Message: "Message received and processing started",
	}, nil
}

func (c *chatService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("Session not found")
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionHistoryResponse{
		SessionId: sessionId.String(),
		Turns:     make([]dto.ChatTurnResponse, 0, len(turns)),
	}
	for _, turn := range turns {
		res.Turns = append(res.Turns, dto.ChatTurnToResponse(turn))
	}
	return res, nil
}
