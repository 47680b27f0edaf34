package streaming

import (
	"context"
	"errors"
	"testing"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/push"
	"rag-chat-be/pkg/flow"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures every payload in delivery order.
type recordingSender struct {
	payloads []wire.Payload
	err      error
}

func (s *recordingSender) Send(ctx context.Context, sessionID string, payload wire.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

// chunkProvider streams fixed chunks, optionally failing midway.
type chunkProvider struct {
	chunks    []string
	failAfter int // -1 means never fail
}

func (p *chunkProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (p *chunkProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (p *chunkProvider) ChatStream(ctx context.Context, history []llm.Message, onChunk func(string) error, opts ...llm.Option) error {
	for i, c := range p.chunks {
		if p.failAfter >= 0 && i == p.failAfter {
			return errors.New("model unavailable")
		}
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func kinds(payloads []wire.Payload) []string {
	out := make([]string, len(payloads))
	for i, p := range payloads {
		switch v := p.(type) {
		case wire.DocumentsPayload:
			out[i] = "documents"
		case wire.FAQPayload:
			out[i] = "faq"
		case wire.FragmentPayload:
			out[i] = "fragment"
		case wire.AnswerEventPayload:
			out[i] = "event:" + v.Event
		case wire.ErrorPayload:
			out[i] = "error"
		}
	}
	return out
}

func ragJobs(documents []flow.Document) (*flow.StreamDocumentsJob, *flow.GenerateResponseJob) {
	docsJob := &flow.StreamDocumentsJob{
		QueryID:      "q1",
		SessionID:    "s1",
		ResourceType: constant.ResourceTypeDocuments,
		Documents:    documents,
	}
	genJob := &flow.GenerateResponseJob{
		Query:        "what is up",
		QueryID:      "q1",
		SessionID:    "s1",
		ResourceType: constant.ResourceTypeDocuments,
		Documents:    documents,
	}
	return docsJob, genJob
}

func TestStreamOrderingWithDocuments(t *testing.T) {
	sender := &recordingSender{}
	stage := NewStreaming(sender, &chunkProvider{chunks: []string{"Hello", " world"}, failAfter: -1}, nil, logger.NewNopLogger())

	docsJob, genJob := ragJobs([]flow.Document{{DocumentID: "d1", Title: "T"}})
	result := stage.Stream(context.Background(), docsJob, genJob)

	require.True(t, result.Successful)
	assert.Equal(t, "Hello world", result.Answer)
	assert.Equal(t,
		[]string{"documents", "event:start", "fragment", "fragment", "event:stop"},
		kinds(sender.payloads),
	)

	// Fragments carry the query id they answer
	frag := sender.payloads[2].(wire.FragmentPayload)
	assert.Equal(t, "q1", frag.QueryID)
	assert.Equal(t, "Hello", frag.Fragment)
}

func TestStreamEmptyDocumentListStillPushesResources(t *testing.T) {
	sender := &recordingSender{}
	stage := NewStreaming(sender, &chunkProvider{chunks: []string{"no context answer"}, failAfter: -1}, nil, logger.NewNopLogger())

	docsJob, genJob := ragJobs(nil)
	result := stage.Stream(context.Background(), docsJob, genJob)

	require.True(t, result.Successful)
	require.Equal(t,
		[]string{"documents", "event:start", "fragment", "event:stop"},
		kinds(sender.payloads),
	)

	docs := sender.payloads[0].(wire.DocumentsPayload)
	assert.NotNil(t, docs.Documents)
	assert.Empty(t, docs.Documents)
}

func TestStreamFaqSequence(t *testing.T) {
	sender := &recordingSender{}
	stage := NewStreaming(sender, &chunkProvider{chunks: []string{"It is ", "$14,600."}, failAfter: -1}, nil, logger.NewNopLogger())

	pair := flow.FAQ{FaqID: "f1", Question: "What is the standard deduction?", Answer: "$14,600."}
	docsJob := &flow.StreamDocumentsJob{
		QueryID:      "q2",
		SessionID:    "s2",
		ResourceType: constant.ResourceTypeFAQ,
		FAQs:         []flow.FAQ{pair},
	}
	genJob := &flow.GenerateResponseJob{
		Query:        "What is the standard deduction?",
		QueryID:      "q2",
		SessionID:    "s2",
		ResourceType: constant.ResourceTypeFAQ,
		FAQs:         []flow.FAQ{pair},
	}

	result := stage.Stream(context.Background(), docsJob, genJob)

	require.True(t, result.Successful)
	assert.Equal(t,
		[]string{"faq", "event:start", "fragment", "fragment", "event:stop"},
		kinds(sender.payloads),
	)
}

func TestStreamGenerationFailurePushesError(t *testing.T) {
	sender := &recordingSender{}
	stage := NewStreaming(sender, &chunkProvider{chunks: []string{"partial", "never"}, failAfter: 1}, nil, logger.NewNopLogger())

	docsJob, genJob := ragJobs(nil)
	result := stage.Stream(context.Background(), docsJob, genJob)

	require.False(t, result.Successful)
	assert.Equal(t, "partial", result.Answer)

	// Terminal event is error, not stop
	got := kinds(sender.payloads)
	assert.Equal(t, []string{"documents", "event:start", "fragment", "error"}, got)

	errPayload := sender.payloads[len(sender.payloads)-1].(wire.ErrorPayload)
	assert.Equal(t, constant.ErrMsgStreaming, errPayload.Error)
	assert.Equal(t, "q1", errPayload.QueryID)
}

func TestStreamDisconnectedClientDoesNotFailWorkflow(t *testing.T) {
	sender := &recordingSender{err: push.ErrNoActiveConnection}
	stage := NewStreaming(sender, &chunkProvider{chunks: []string{"a", "b"}, failAfter: -1}, nil, logger.NewNopLogger())

	docsJob, genJob := ragJobs(nil)
	result := stage.Stream(context.Background(), docsJob, genJob)

	// Generation runs to completion even though nothing was delivered
	assert.True(t, result.Successful)
	assert.Equal(t, "ab", result.Answer)
	assert.Empty(t, sender.payloads)
}

func TestStreamNilJobsFail(t *testing.T) {
	sender := &recordingSender{}
	stage := NewStreaming(sender, &chunkProvider{failAfter: -1}, nil, logger.NewNopLogger())

	result := stage.Stream(context.Background(), nil, nil)
	assert.False(t, result.Successful)
	assert.Empty(t, sender.payloads)
}
