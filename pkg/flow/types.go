package flow

import "context"

// UserQuery is the immutable input of one workflow run, carried by the
// "message received" event.
type UserQuery struct {
	Query     string
	QueryID   string
	SessionID string
}

// Document is a ranked retrieval result used both as client-visible
// supporting material and as generation context.
type Document struct {
	DocumentID string
	Title      string
	Content    string
	Source     string
	SourceID   string
	Score      float64
}

// FAQ is a resolved question/answer pair for the faq branch.
type FAQ struct {
	FaqID    string
	Question string
	Answer   string
	Score    float64
}

// StreamDocumentsJob describes the resource push: what supporting material
// goes to the client before any answer fragment.
type StreamDocumentsJob struct {
	QueryID      string
	SessionID    string
	ResourceType string // constant.ResourceTypeDocuments or ResourceTypeFAQ
	Documents    []Document
	FAQs         []FAQ
}

// GenerateResponseJob describes the generation step and carries the
// grounding context resolved by the classifier or retrieval stage.
type GenerateResponseJob struct {
	Query        string
	QueryID      string
	SessionID    string
	ResourceType string
	Documents    []Document
	FAQs         []FAQ
}

// RetrieveJob asks the retrieval stage to populate the two jobs above for
// a rag-classified query.
type RetrieveJob struct {
	Query     string
	QueryID   string
	SessionID string
}

// ClassifierResult is the classifier stage's output. QueryClass is empty
// when classification failed; the jobs are nil in that case. RetrieveJob
// is present only on the rag branch.
type ClassifierResult struct {
	Successful          bool
	QueryClass          string
	StreamDocumentsJob  *StreamDocumentsJob
	GenerateResponseJob *GenerateResponseJob
	RetrieveJob         *RetrieveJob
}

// RetrieveResult carries the completed jobs. Zero retrieved documents is a
// successful outcome.
type RetrieveResult struct {
	Successful          bool
	StreamDocumentsJob  *StreamDocumentsJob
	GenerateResponseJob *GenerateResponseJob
}

// StreamResult reports the streaming stage outcome. Answer holds the full
// generated text for history persistence.
type StreamResult struct {
	Successful bool
	Answer     string
}

// Stage contracts. Stages never return errors to the orchestrator:
// internal failures are folded into the result's Successful flag so the
// state machine treats failure as ordinary data.

type ClassifierStage interface {
	Classify(ctx context.Context, query UserQuery) ClassifierResult
}

type RetrievalStage interface {
	Retrieve(ctx context.Context, job RetrieveJob) RetrieveResult
}

type StreamingStage interface {
	Stream(ctx context.Context, docsJob *StreamDocumentsJob, genJob *GenerateResponseJob) StreamResult
}

// DedupStore marks query ids as processed. The first call for an id returns
// true; later calls return false, which makes event redelivery a no-op.
type DedupStore interface {
	MarkQueryProcessed(ctx context.Context, queryID string) (bool, error)
}
