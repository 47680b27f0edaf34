package service

import (
	"context"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/events"
	pktNats "rag-chat-be/pkg/nats"
)

type IEventAuditService interface {
	Start() error
}

// eventAuditService consumes workflow lifecycle events and writes them to
// the structured log, giving an append-only audit trail of query outcomes
// that survives restarts (durable JetStream consumer).
type eventAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventAuditService(subscriber *pktNats.Subscriber, log logger.ILogger) IEventAuditService {
	return &eventAuditService{
		subscriber: subscriber,
		logger:     log,
	}
}

func (s *eventAuditService) Start() error {
	return s.subscriber.Subscribe("chat.events.>", "chat-audit", s.handle)
}

func (s *eventAuditService) handle(_ context.Context, event events.Event) error {
	s.logger.Info("audit", "Workflow lifecycle event", map[string]interface{}{
		"event_type": event.EventType(),
		"payload":    event.Payload(),
	})
	return nil
}
