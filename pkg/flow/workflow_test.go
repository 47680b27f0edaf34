package flow

import (
	"context"
	"testing"
	"time"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	result ClassifierResult
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, query UserQuery) ClassifierResult {
	f.calls++
	return f.result
}

type fakeRetrieval struct {
	result RetrieveResult
	calls  int
}

func (f *fakeRetrieval) Retrieve(ctx context.Context, job RetrieveJob) RetrieveResult {
	f.calls++
	return f.result
}

type fakeStreaming struct {
	result  StreamResult
	calls   int
	lastDoc *StreamDocumentsJob
	lastGen *GenerateResponseJob
}

func (f *fakeStreaming) Stream(ctx context.Context, docsJob *StreamDocumentsJob, genJob *GenerateResponseJob) StreamResult {
	f.calls++
	f.lastDoc = docsJob
	f.lastGen = genJob
	return f.result
}

type fakeDedup struct {
	seen map[string]bool
}

func (f *fakeDedup) MarkQueryProcessed(ctx context.Context, queryID string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[queryID] {
		return false, nil
	}
	f.seen[queryID] = true
	return true, nil
}

func newTestWorkflow(c *fakeClassifier, r *fakeRetrieval, s *fakeStreaming, d DedupStore) *Workflow {
	return NewWorkflow(c, r, s, d, time.Minute, logger.NewNopLogger())
}

func faqClassification() ClassifierResult {
	pair := FAQ{FaqID: "f1", Question: "q", Answer: "a"}
	return ClassifierResult{
		Successful: true,
		QueryClass: constant.QueryClassFAQ,
		StreamDocumentsJob: &StreamDocumentsJob{
			QueryID: "q1", SessionID: "s1",
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []FAQ{pair},
		},
		GenerateResponseJob: &GenerateResponseJob{
			Query: "q", QueryID: "q1", SessionID: "s1",
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []FAQ{pair},
		},
	}
}

func ragClassification() ClassifierResult {
	return ClassifierResult{
		Successful:  true,
		QueryClass:  constant.QueryClassRAG,
		RetrieveJob: &RetrieveJob{Query: "q", QueryID: "q1", SessionID: "s1"},
	}
}

func TestClassificationFailureIsTerminal(t *testing.T) {
	c := &fakeClassifier{result: ClassifierResult{Successful: false}}
	r := &fakeRetrieval{}
	s := &fakeStreaming{}
	w := newTestWorkflow(c, r, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "??", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateClassificationFailed, outcome.TerminalState)
	// Branch exclusivity: neither downstream stage runs
	assert.Zero(t, r.calls)
	assert.Zero(t, s.calls)
}

func TestUnknownQueryClassFailsClosed(t *testing.T) {
	c := &fakeClassifier{result: ClassifierResult{Successful: true, QueryClass: "summarize"}}
	r := &fakeRetrieval{}
	s := &fakeStreaming{}
	w := newTestWorkflow(c, r, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "x", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateClassificationFailed, outcome.TerminalState)
	assert.Zero(t, r.calls)
	assert.Zero(t, s.calls)
}

func TestFaqBranchSkipsRetrieval(t *testing.T) {
	c := &fakeClassifier{result: faqClassification()}
	r := &fakeRetrieval{}
	s := &fakeStreaming{result: StreamResult{Successful: true, Answer: "a"}}
	w := newTestWorkflow(c, r, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "q", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateSucceeded, outcome.TerminalState)
	assert.Equal(t, constant.QueryClassFAQ, outcome.QueryClass)
	assert.Equal(t, "a", outcome.Answer)
	assert.Zero(t, r.calls)
	require.Equal(t, 1, s.calls)
	assert.Equal(t, constant.ResourceTypeFAQ, s.lastDoc.ResourceType)
}

func TestRagBranchWithEmptyRetrievalSucceeds(t *testing.T) {
	c := &fakeClassifier{result: ragClassification()}
	r := &fakeRetrieval{result: RetrieveResult{
		Successful: true,
		StreamDocumentsJob: &StreamDocumentsJob{
			QueryID: "q1", SessionID: "s1",
			ResourceType: constant.ResourceTypeDocuments,
			Documents:    []Document{},
		},
		GenerateResponseJob: &GenerateResponseJob{
			Query: "obscure topic", QueryID: "q1", SessionID: "s1",
			ResourceType: constant.ResourceTypeDocuments,
		},
	}}
	s := &fakeStreaming{result: StreamResult{Successful: true}}
	w := newTestWorkflow(c, r, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "obscure topic", QueryID: "q1", SessionID: "s1"})

	// Empty result set is not a failure
	assert.Equal(t, StateSucceeded, outcome.TerminalState)
	require.Equal(t, 1, r.calls)
	require.Equal(t, 1, s.calls)
	assert.Empty(t, s.lastDoc.Documents)
}

func TestRetrievalFailureIsTerminal(t *testing.T) {
	c := &fakeClassifier{result: ragClassification()}
	r := &fakeRetrieval{result: RetrieveResult{Successful: false}}
	s := &fakeStreaming{}
	w := newTestWorkflow(c, r, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "q", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateRetrievalFailed, outcome.TerminalState)
	assert.Zero(t, s.calls)
}

func TestStreamingFailureIsTerminal(t *testing.T) {
	c := &fakeClassifier{result: faqClassification()}
	s := &fakeStreaming{result: StreamResult{Successful: false, Answer: "partial"}}
	w := newTestWorkflow(c, &fakeRetrieval{}, s, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "q", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateStreamingFailed, outcome.TerminalState)
	assert.Equal(t, "partial", outcome.Answer)
}

func TestRedeliveredEventIsDropped(t *testing.T) {
	c := &fakeClassifier{result: faqClassification()}
	s := &fakeStreaming{result: StreamResult{Successful: true}}
	dedup := &fakeDedup{}
	w := newTestWorkflow(c, &fakeRetrieval{}, s, dedup)

	query := UserQuery{Query: "q", QueryID: "q1", SessionID: "s1"}

	first := w.Run(context.Background(), query)
	assert.Equal(t, StateSucceeded, first.TerminalState)
	assert.Equal(t, 1, s.calls)

	// At-least-once delivery replays the same event
	second := w.Run(context.Background(), query)
	assert.Equal(t, StateDuplicate, second.TerminalState)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, 1, s.calls)
}

func TestMissingRetrieveJobFailsClosed(t *testing.T) {
	c := &fakeClassifier{result: ClassifierResult{Successful: true, QueryClass: constant.QueryClassRAG}}
	r := &fakeRetrieval{}
	w := newTestWorkflow(c, r, &fakeStreaming{}, nil)

	outcome := w.Run(context.Background(), UserQuery{Query: "q", QueryID: "q1", SessionID: "s1"})

	assert.Equal(t, StateClassificationFailed, outcome.TerminalState)
	assert.Zero(t, r.calls)
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateSucceeded.IsTerminal())
	assert.True(t, StateClassificationFailed.IsTerminal())
	assert.True(t, StateDuplicate.IsTerminal())
	assert.False(t, StateClassifying.IsTerminal())
	assert.False(t, StateRetrieving.IsTerminal())
	assert.False(t, StateStreaming.IsTerminal())
}
