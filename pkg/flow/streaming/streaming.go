package streaming

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/push"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/pkg/flow"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/wire"

	"github.com/google/uuid"
)

// historyDepth bounds how many prior turns are replayed into the prompt.
const historyDepth = 5

// Streaming pushes the supporting resources, then brackets the generated
// answer between start and stop events. Per query the client must observe
// resources -> start -> fragment* -> (stop|error); the resource push runs
// synchronously before generation begins to keep that order.
type Streaming struct {
	sender push.Sender
	llm    llm.LLMProvider
	turns  contract.ChatTurnRepository
	logger logger.ILogger
}

var _ flow.StreamingStage = &Streaming{}

func NewStreaming(sender push.Sender, provider llm.LLMProvider, turns contract.ChatTurnRepository, log logger.ILogger) *Streaming {
	return &Streaming{
		sender: sender,
		llm:    provider,
		turns:  turns,
		logger: log,
	}
}

func (s *Streaming) Stream(ctx context.Context, docsJob *flow.StreamDocumentsJob, genJob *flow.GenerateResponseJob) flow.StreamResult {
	if docsJob == nil || genJob == nil {
		s.logger.Error("Streaming", "Incomplete jobs", nil)
		return flow.StreamResult{Successful: false}
	}

	// 1. Supporting material first. Delivery failure is a visibility
	// problem for the client, never a workflow failure.
	s.pushResources(ctx, docsJob)

	// 2. Start marker.
	s.push(ctx, genJob.SessionID, wire.AnswerEventPayload{
		QueryID: genJob.QueryID,
		Event:   wire.EventStart,
	})

	// 3. Generate and forward fragments in emission order.
	var answer strings.Builder
	err := s.llm.ChatStream(ctx, s.buildHistory(ctx, genJob), func(chunk string) error {
		answer.WriteString(chunk)
		s.push(ctx, genJob.SessionID, wire.FragmentPayload{
			QueryID:  genJob.QueryID,
			Fragment: chunk,
		})
		return nil
	})
	if err != nil {
		s.logger.Error("Streaming", "Generation failed", map[string]interface{}{
			"query_id": genJob.QueryID,
			"error":    err.Error(),
		})
		s.push(ctx, genJob.SessionID, wire.ErrorPayload{
			QueryID: genJob.QueryID,
			Error:   constant.ErrMsgStreaming,
		})
		return flow.StreamResult{Successful: false, Answer: answer.String()}
	}

	// 4. Stop marker on normal completion.
	s.push(ctx, genJob.SessionID, wire.AnswerEventPayload{
		QueryID: genJob.QueryID,
		Event:   wire.EventStop,
	})

	return flow.StreamResult{Successful: true, Answer: answer.String()}
}

func (s *Streaming) pushResources(ctx context.Context, job *flow.StreamDocumentsJob) {
	switch job.ResourceType {
	case constant.ResourceTypeFAQ:
		faqs := make([]wire.FAQ, 0, len(job.FAQs))
		for _, f := range job.FAQs {
			faqs = append(faqs, wire.FAQ{
				FaqID:    f.FaqID,
				Question: f.Question,
				Answer:   f.Answer,
			})
		}
		s.push(ctx, job.SessionID, wire.FAQPayload{
			QueryID: job.QueryID,
			FAQs:    faqs,
		})

	default:
		// An empty list is still pushed: it is the ordering anchor the
		// client waits for before accepting fragments.
		documents := make([]wire.SourceDocument, 0, len(job.Documents))
		for _, d := range job.Documents {
			documents = append(documents, wire.SourceDocument{
				DocumentID: d.DocumentID,
				Title:      d.Title,
				Content:    d.Content,
				Source:     d.Source,
				SourceID:   d.SourceID,
			})
		}
		s.push(ctx, job.SessionID, wire.DocumentsPayload{
			QueryID:   job.QueryID,
			Documents: documents,
		})
	}
}

// push delivers best-effort: a session with no live connection simply does
// not see the message.
func (s *Streaming) push(ctx context.Context, sessionID string, payload wire.Payload) {
	err := s.sender.Send(ctx, sessionID, payload)
	if err == nil {
		return
	}

	if errors.Is(err, push.ErrNoActiveConnection) || errors.Is(err, push.ErrStaleConnection) {
		s.logger.Info("Streaming", "No live connection, push dropped", map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}
	s.logger.Warn("Streaming", "Push failed", map[string]interface{}{
		"session_id": sessionID,
		"error":      err.Error(),
	})
}

// buildHistory grounds the model on the resolved FAQ pair or the retrieved
// documents, replays recent answered turns for follow-up context, then ends
// with the user's query.
func (s *Streaming) buildHistory(ctx context.Context, job *flow.GenerateResponseJob) []llm.Message {
	var sb strings.Builder

	switch job.ResourceType {
	case constant.ResourceTypeFAQ:
		sb.WriteString("You are a helpful assistant. Answer the user's question using the following FAQ entry. Stay faithful to its content.\n\n")
		for _, f := range job.FAQs {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n\n", f.Question, f.Answer)
		}
	default:
		sb.WriteString("You are a helpful assistant. Answer the user's question using the context documents below. If the context does not contain the answer, say so.\n\n")
		for i, d := range job.Documents {
			fmt.Fprintf(&sb, "[Document %d: %s]\n%s\n\n", i+1, d.Title, d.Content)
		}
		if len(job.Documents) == 0 {
			sb.WriteString("(no context documents were found)\n")
		}
	}

	history := []llm.Message{{Role: "system", Content: sb.String()}}
	history = append(history, s.priorTurns(ctx, job.SessionID)...)
	return append(history, llm.Message{Role: "user", Content: job.Query})
}

// priorTurns returns the session's most recent answered turns, oldest
// first. History is best-effort grounding: lookup failures just mean the
// model answers without it.
func (s *Streaming) priorTurns(ctx context.Context, sessionID string) []llm.Message {
	if s.turns == nil {
		return nil
	}
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return nil
	}

	turns, err := s.turns.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sid},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyDepth},
	)
	if err != nil {
		s.logger.Warn("Streaming", "History lookup failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil
	}

	var messages []llm.Message
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Answer == "" {
			continue
		}
		messages = append(messages,
			llm.Message{Role: "user", Content: turns[i].Query},
			llm.Message{Role: "assistant", Content: turns[i].Answer},
		)
	}
	return messages
}
