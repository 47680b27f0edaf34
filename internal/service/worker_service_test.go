package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/flow"
	"rag-chat-be/pkg/wire"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "CHAT_MESSAGE_RECEIVED"

type stubClassifier struct {
	result flow.ClassifierResult
}

func (s *stubClassifier) Classify(ctx context.Context, q flow.UserQuery) flow.ClassifierResult {
	return s.result
}

type stubRetrieval struct{}

func (stubRetrieval) Retrieve(ctx context.Context, job flow.RetrieveJob) flow.RetrieveResult {
	return flow.RetrieveResult{Successful: false}
}

type stubStreaming struct {
	answer string
}

func (s *stubStreaming) Stream(ctx context.Context, d *flow.StreamDocumentsJob, g *flow.GenerateResponseJob) flow.StreamResult {
	return flow.StreamResult{Successful: true, Answer: s.answer}
}

// recordingSender captures pushed payloads across goroutines.
type recordingSender struct {
	mu       sync.Mutex
	payloads []wire.Payload
}

func (s *recordingSender) Send(ctx context.Context, sessionID string, payload wire.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *recordingSender) snapshot() []wire.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Payload, len(s.payloads))
	copy(out, s.payloads)
	return out
}

// memTurnRepo holds turns in memory, keyed by query id.
type memTurnRepo struct {
	mu    sync.Mutex
	turns map[string]*entity.ChatTurn
}

func newMemTurnRepo() *memTurnRepo {
	return &memTurnRepo{turns: map[string]*entity.ChatTurn{}}
}

func (r *memTurnRepo) Create(ctx context.Context, turn *entity.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *turn
	r.turns[turn.QueryId] = &cp
	return nil
}

func (r *memTurnRepo) Update(ctx context.Context, turn *entity.ChatTurn) error {
	return r.Create(ctx, turn)
}

func (r *memTurnRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *memTurnRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byQuery, ok := spec.(specification.ByQueryID); ok {
			if t, found := r.turns[byQuery.QueryID]; found {
				cp := *t
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *memTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	return nil, nil
}

func (r *memTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

// memUow exposes only the turn repository; the worker touches nothing else.
type memUow struct {
	turns *memTurnRepo
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) ChatSessionRepository() contract.ChatSessionRepository         { return nil }
func (u *memUow) ChatTurnRepository() contract.ChatTurnRepository               { return u.turns }
func (u *memUow) DocumentRepository() contract.DocumentRepository               { return nil }
func (u *memUow) FaqRepository() contract.FaqRepository                         { return nil }
func (u *memUow) RetrievalConfigRepository() contract.RetrievalConfigRepository { return nil }

type memFactory struct {
	uow *memUow
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newWorkerFixture(t *testing.T, classification flow.ClassifierResult, answer string) (*gochannel.GoChannel, *recordingSender, *memTurnRepo) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	sender := &recordingSender{}
	turns := newMemTurnRepo()

	wf := flow.NewWorkflow(
		&stubClassifier{result: classification},
		stubRetrieval{},
		&stubStreaming{answer: answer},
		nil,
		time.Minute,
		logger.NewNopLogger(),
	)

	worker := NewWorkerService(
		pubSub,
		testTopic,
		wf,
		&memFactory{uow: &memUow{turns: turns}},
		sender,
		nil,
		logger.NewNopLogger(),
	)
	require.NoError(t, worker.Start(context.Background()))

	return pubSub, sender, turns
}

func publishEvent(t *testing.T, pubSub *gochannel.GoChannel, event dto.MessageEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), payload)))
}

func faqClassification(queryID, sessionID string) flow.ClassifierResult {
	pair := flow.FAQ{FaqID: "f1", Question: "q", Answer: "a"}
	return flow.ClassifierResult{
		Successful: true,
		QueryClass: constant.QueryClassFAQ,
		StreamDocumentsJob: &flow.StreamDocumentsJob{
			QueryID: queryID, SessionID: sessionID,
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []flow.FAQ{pair},
		},
		GenerateResponseJob: &flow.GenerateResponseJob{
			Query: "q", QueryID: queryID, SessionID: sessionID,
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []flow.FAQ{pair},
		},
	}
}

func TestWorkerPersistsSuccessfulOutcome(t *testing.T) {
	pubSub, sender, turns := newWorkerFixture(t, faqClassification("q1", "s1"), "the answer")

	require.NoError(t, turns.Create(context.Background(), &entity.ChatTurn{
		Id: uuid.New(), QueryId: "q1", Query: "q",
	}))

	publishEvent(t, pubSub, dto.MessageEvent{Query: "q", QueryId: "q1", SessionId: "s1"})

	require.Eventually(t, func() bool {
		turn, _ := turns.FindOne(context.Background(), specification.ByQueryID{QueryID: "q1"})
		return turn != nil && turn.TerminalState == string(flow.StateSucceeded)
	}, 2*time.Second, 10*time.Millisecond)

	turn, err := turns.FindOne(context.Background(), specification.ByQueryID{QueryID: "q1"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", turn.Answer)
	assert.Equal(t, constant.QueryClassFAQ, turn.QueryClass)
	assert.Empty(t, sender.snapshot())
}

func TestWorkerPushesErrorOnClassificationFailure(t *testing.T) {
	pubSub, sender, turns := newWorkerFixture(t, flow.ClassifierResult{Successful: false}, "")

	require.NoError(t, turns.Create(context.Background(), &entity.ChatTurn{
		Id: uuid.New(), QueryId: "q2", Query: "???",
	}))

	publishEvent(t, pubSub, dto.MessageEvent{Query: "???", QueryId: "q2", SessionId: "s2"})

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	errPayload, ok := sender.snapshot()[0].(wire.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, constant.ErrMsgUnexpected, errPayload.Error)
	assert.Equal(t, "q2", errPayload.QueryID)

	require.Eventually(t, func() bool {
		turn, _ := turns.FindOne(context.Background(), specification.ByQueryID{QueryID: "q2"})
		return turn != nil && turn.TerminalState == string(flow.StateClassificationFailed)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerDropsIncompleteEvents(t *testing.T) {
	pubSub, sender, turns := newWorkerFixture(t, faqClassification("q3", "s3"), "x")

	publishEvent(t, pubSub, dto.MessageEvent{Query: "hello"}) // missing ids

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sender.snapshot())
	turn, err := turns.FindOne(context.Background(), specification.ByQueryID{QueryID: "q3"})
	require.NoError(t, err)
	assert.Nil(t, turn)
}
