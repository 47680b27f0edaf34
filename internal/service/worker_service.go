package service

import (
	"context"
	"encoding/json"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/push"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/flow"
	pktNats "rag-chat-be/pkg/nats"
	"rag-chat-be/pkg/wire"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IWorkerService interface {
	Start(ctx context.Context) error
}

// workerService consumes "message received" events and drives one workflow
// run per event. Messages are acked after the workflow goroutine is
// spawned: redelivery protection comes from the workflow's dedup store,
// not the broker, because push-bearing stages must not retry.
type workerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	workflow       *flow.Workflow
	uowFactory     unitofwork.RepositoryFactory
	sender         push.Sender
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	workflow *flow.Workflow,
	uowFactory unitofwork.RepositoryFactory,
	sender push.Sender,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IWorkerService {
	return &workerService{
		pubSub:         pubSub,
		topicName:      topicName,
		workflow:       workflow,
		uowFactory:     uowFactory,
		sender:         sender,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (w *workerService) Start(ctx context.Context) error {
	messages, err := w.pubSub.Subscribe(ctx, w.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			w.dispatch(ctx, msg)
		}
	}()

	return nil
}

func (w *workerService) dispatch(ctx context.Context, msg *message.Message) {
	var event dto.MessageEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		w.logger.Error("Worker", "Malformed message event dropped", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if event.Query == "" || event.QueryId == "" || event.SessionId == "" {
		w.logger.Error("Worker", "Incomplete message event dropped", map[string]interface{}{
			"query_id":   event.QueryId,
			"session_id": event.SessionId,
		})
		msg.Ack()
		return
	}

	go w.process(ctx, event)
	msg.Ack()
}

func (w *workerService) process(ctx context.Context, event dto.MessageEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Worker", "Workflow panicked", map[string]interface{}{
				"query_id": event.QueryId,
				"panic":    r,
			})
			w.pushError(ctx, event, constant.ErrMsgServer)
		}
	}()

	outcome := w.workflow.Run(ctx, flow.UserQuery{
		Query:     event.Query,
		QueryID:   event.QueryId,
		SessionID: event.SessionId,
	})

	if outcome.TerminalState == flow.StateDuplicate {
		return
	}

	switch outcome.TerminalState {
	case flow.StateClassificationFailed, flow.StateRetrievalFailed:
		// Streaming never began, so the client saw nothing for this
		// query. Tell it the message could not be processed.
		w.pushError(ctx, event, constant.ErrMsgUnexpected)
	}

	w.persistOutcome(ctx, event, outcome)
	w.publishLifecycle(ctx, event, outcome)
}

func (w *workerService) persistOutcome(ctx context.Context, event dto.MessageEvent, outcome flow.Outcome) {
	uow := w.uowFactory.NewUnitOfWork(ctx)

	turn, err := uow.ChatTurnRepository().FindOne(ctx, specification.ByQueryID{QueryID: event.QueryId})
	if err != nil || turn == nil {
		w.logger.Error("Worker", "Turn lookup failed, outcome not persisted", map[string]interface{}{
			"query_id": event.QueryId,
		})
		return
	}

	turn.QueryClass = outcome.QueryClass
	turn.Answer = outcome.Answer
	turn.TerminalState = string(outcome.TerminalState)
	turn.Documents = make([]entity.DocumentRef, 0, len(outcome.Documents))
	for _, d := range outcome.Documents {
		turn.Documents = append(turn.Documents, entity.DocumentRef{
			DocumentId: d.DocumentID,
			Title:      d.Title,
			Source:     d.Source,
			SourceId:   d.SourceID,
		})
	}

	if err := uow.ChatTurnRepository().Update(ctx, turn); err != nil {
		w.logger.Error("Worker", "Outcome persistence failed", map[string]interface{}{
			"query_id": event.QueryId,
			"error":    err.Error(),
		})
	}
}

func (w *workerService) publishLifecycle(ctx context.Context, event dto.MessageEvent, outcome flow.Outcome) {
	if w.eventPublisher == nil {
		return
	}

	var evt events.Event
	if outcome.TerminalState == flow.StateSucceeded {
		evt = events.NewQueryCompleted(event.SessionId, event.QueryId, outcome.QueryClass)
	} else {
		evt = events.NewQueryFailed(event.SessionId, event.QueryId, string(outcome.TerminalState))
	}

	// Lifecycle events are auxiliary, failure to publish never fails the run
	if err := w.eventPublisher.Publish(ctx, evt); err != nil {
		w.logger.Warn("Worker", "Lifecycle event publish failed", map[string]interface{}{
			"query_id": event.QueryId,
			"error":    err.Error(),
		})
	}
}

func (w *workerService) pushError(ctx context.Context, event dto.MessageEvent, userMessage string) {
	err := w.sender.Send(ctx, event.SessionId, wire.ErrorPayload{
		QueryID: event.QueryId,
		Error:   userMessage,
	})
	if err != nil {
		w.logger.Info("Worker", "Error push not delivered", map[string]interface{}{
			"query_id": event.QueryId,
		})
	}
}
