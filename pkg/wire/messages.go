// Package wire defines the validated message protocol spoken over the push
// channel. Every payload is part of a closed, tagged union keyed on the
// responseType field so that the client can dispatch exhaustively and reject
// anything it does not recognize.
package wire

// Stream identifiers group payloads into client-side streams.
const (
	StreamResources   = "resources"
	StreamAnswer      = "answer"
	StreamAnswerEvent = "answer-event"
	StreamError       = "error"
)

// Response types are the discriminator tags of the payload union.
const (
	TypeDocuments   = "documents"
	TypeFAQ         = "faq"
	TypeFragment    = "fragment"
	TypeAnswerEvent = "answer-event"
	TypeError       = "error"
)

// Answer lifecycle events.
const (
	EventStart = "start"
	EventStop  = "stop"
)

// SourceDocument is a retrieved document as presented to the client.
type SourceDocument struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Source     string `json:"source,omitempty"`
	SourceID   string `json:"sourceId,omitempty"`
}

// FAQ is a pre-authored question/answer pair as presented to the client.
type FAQ struct {
	FaqID    string `json:"faqId"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Payload is the closed set of message bodies. Implementations live in this
// package only; adding a variant requires touching Encode and Decode, which
// keeps the dispatch switch exhaustive by construction.
type Payload interface {
	ResponseType() string
	StreamID() string
}

// DocumentsPayload carries the supporting documents for a query.
type DocumentsPayload struct {
	QueryID   string
	Documents []SourceDocument
}

func (DocumentsPayload) ResponseType() string { return TypeDocuments }
func (DocumentsPayload) StreamID() string     { return StreamResources }

// FAQPayload carries matched FAQ pairs for a query.
type FAQPayload struct {
	QueryID string
	FAQs    []FAQ
}

func (FAQPayload) ResponseType() string { return TypeFAQ }
func (FAQPayload) StreamID() string     { return StreamResources }

// FragmentPayload carries one incremental chunk of generated answer text.
// Chunk boundaries are not meaningful; clients concatenate in arrival order.
type FragmentPayload struct {
	QueryID  string
	Fragment string
}

func (FragmentPayload) ResponseType() string { return TypeFragment }
func (FragmentPayload) StreamID() string     { return StreamAnswer }

// AnswerEventPayload brackets the fragment stream for a query with explicit
// start/stop markers.
type AnswerEventPayload struct {
	QueryID string
	Event   string
}

func (AnswerEventPayload) ResponseType() string { return TypeAnswerEvent }
func (AnswerEventPayload) StreamID() string     { return StreamAnswerEvent }

// ErrorPayload reports a failure to the client. QueryID is empty for
// connection-level errors not attributable to a specific query.
type ErrorPayload struct {
	QueryID string
	Error   string
}

func (ErrorPayload) ResponseType() string { return TypeError }
func (ErrorPayload) StreamID() string     { return StreamError }
