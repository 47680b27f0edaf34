package flow

import (
	"context"
	"time"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/pkg/logger"
)

// State is the orchestrator's position in the answer pipeline.
type State string

const (
	StateClassifying State = "classifying"
	StateRetrieving  State = "retrieving"
	StateStreaming   State = "streaming"

	// Terminal states
	StateSucceeded            State = "succeeded"
	StateClassificationFailed State = "classification_failed"
	StateRetrievalFailed      State = "retrieval_failed"
	StateStreamingFailed      State = "streaming_failed"
	StateDuplicate            State = "duplicate"
	StateTimedOut             State = "timed_out"
)

// IsTerminal reports whether the workflow stops in this state.
func (s State) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateClassificationFailed, StateRetrievalFailed,
		StateStreamingFailed, StateDuplicate, StateTimedOut:
		return true
	}
	return false
}

// Outcome is what a finished workflow hands back for persistence and
// lifecycle reporting.
type Outcome struct {
	TerminalState State
	QueryClass    string
	Documents     []Document
	FAQs          []FAQ
	Answer        string
}

// Workflow sequences classification, conditional retrieval, and streaming
// for one query. Branch selection is an exact match on the query class;
// anything else fails closed into StateClassificationFailed.
type Workflow struct {
	classifier ClassifierStage
	retrieval  RetrievalStage
	streaming  StreamingStage
	dedup      DedupStore
	timeout    time.Duration
	logger     logger.ILogger
}

func NewWorkflow(
	classifier ClassifierStage,
	retrieval RetrievalStage,
	streaming StreamingStage,
	dedup DedupStore,
	timeout time.Duration,
	log logger.ILogger,
) *Workflow {
	return &Workflow{
		classifier: classifier,
		retrieval:  retrieval,
		streaming:  streaming,
		dedup:      dedup,
		timeout:    timeout,
		logger:     log,
	}
}

// Run drives the state machine to a terminal state. It never returns an
// error: every failure mode is a terminal state in the outcome.
func (w *Workflow) Run(ctx context.Context, query UserQuery) Outcome {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// Push-bearing stages run with retries=0, so claiming the query id up
	// front makes a redelivered event a no-op instead of a double stream.
	if w.dedup != nil {
		first, err := w.dedup.MarkQueryProcessed(ctx, query.QueryID)
		if err != nil {
			w.logger.Warn("Workflow", "Dedup check failed, continuing", map[string]interface{}{
				"query_id": query.QueryID,
				"error":    err.Error(),
			})
		} else if !first {
			w.logger.Info("Workflow", "Duplicate query event dropped", map[string]interface{}{
				"query_id": query.QueryID,
			})
			return Outcome{TerminalState: StateDuplicate}
		}
	}

	var (
		state   = StateClassifying
		docsJob *StreamDocumentsJob
		genJob  *GenerateResponseJob
		outcome Outcome
	)

	for !state.IsTerminal() {
		if ctx.Err() != nil {
			state = StateTimedOut
			break
		}

		switch state {
		case StateClassifying:
			result := w.classifier.Classify(ctx, query)
			state, docsJob, genJob = w.afterClassify(query, result, &outcome)

		case StateRetrieving:
			result := w.retrieval.Retrieve(ctx, RetrieveJob{
				Query:     query.Query,
				QueryID:   query.QueryID,
				SessionID: query.SessionID,
			})
			if !result.Successful {
				w.logger.Error("Workflow", "Retrieval failed", map[string]interface{}{
					"query_id": query.QueryID,
				})
				state = StateRetrievalFailed
				break
			}
			docsJob = result.StreamDocumentsJob
			genJob = result.GenerateResponseJob
			outcome.Documents = docsJob.Documents
			state = StateStreaming

		case StateStreaming:
			result := w.streaming.Stream(ctx, docsJob, genJob)
			outcome.Answer = result.Answer
			if result.Successful {
				state = StateSucceeded
			} else {
				state = StateStreamingFailed
			}
		}
	}

	outcome.TerminalState = state
	w.logger.Info("Workflow", "Workflow finished", map[string]interface{}{
		"query_id":       query.QueryID,
		"session_id":     query.SessionID,
		"terminal_state": string(state),
		"query_class":    outcome.QueryClass,
	})
	return outcome
}

func (w *Workflow) afterClassify(query UserQuery, result ClassifierResult, outcome *Outcome) (State, *StreamDocumentsJob, *GenerateResponseJob) {
	if !result.Successful || result.QueryClass == "" {
		w.logger.Error("Workflow", "Classification failed", map[string]interface{}{
			"query_id": query.QueryID,
		})
		return StateClassificationFailed, nil, nil
	}

	outcome.QueryClass = result.QueryClass

	switch result.QueryClass {
	case constant.QueryClassFAQ:
		if result.StreamDocumentsJob == nil || result.GenerateResponseJob == nil {
			return StateClassificationFailed, nil, nil
		}
		outcome.FAQs = result.StreamDocumentsJob.FAQs
		return StateStreaming, result.StreamDocumentsJob, result.GenerateResponseJob

	case constant.QueryClassRAG:
		if result.RetrieveJob == nil {
			return StateClassificationFailed, nil, nil
		}
		return StateRetrieving, nil, nil

	default:
		// An unknown class must not fall through to a default branch.
		w.logger.Error("Workflow", "Unknown query class, failing closed", map[string]interface{}{
			"query_id":    query.QueryID,
			"query_class": result.QueryClass,
		})
		return StateClassificationFailed, nil, nil
	}
}
