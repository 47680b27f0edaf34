package dto

import (
	"time"

	"rag-chat-be/internal/entity"
)

// MessageEvent is the payload published to the message bus when a user
// submits a query. The worker consumes it and runs the answer workflow.
type MessageEvent struct {
	Query     string `json:"query"`
	QueryId   string `json:"query_id"`
	SessionId string `json:"session_id"`
}

type CreateSessionResponse struct {
	SessionId string `json:"sessionId"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	QueryId string `json:"queryId"`
	Message string `json:"message"`
}

type ChatTurnResponse struct {
	QueryId       string             `json:"queryId"`
	Query         string             `json:"query"`
	QueryClass    string             `json:"queryClass,omitempty"`
	Answer        string             `json:"answer,omitempty"`
	Documents     []DocumentResponse `json:"documents,omitempty"`
	TerminalState string             `json:"terminalState,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type DocumentResponse struct {
	DocumentId string `json:"documentId"`
	Title      string `json:"title"`
	Source     string `json:"source,omitempty"`
	SourceId   string `json:"sourceId,omitempty"`
}

type SessionHistoryResponse struct {
	SessionId string             `json:"sessionId"`
	Turns     []ChatTurnResponse `json:"turns"`
}

// ChatTurnToResponse flattens a turn entity for the history endpoint.
func ChatTurnToResponse(t *entity.ChatTurn) ChatTurnResponse {
	docs := make([]DocumentResponse, 0, len(t.Documents))
	for _, d := range t.Documents {
		docs = append(docs, DocumentResponse{
			DocumentId: d.DocumentId,
			Title:      d.Title,
			Source:     d.Source,
			SourceId:   d.SourceId,
		})
	}
	return ChatTurnResponse{
		QueryId:       t.QueryId,
		Query:         t.Query,
		QueryClass:    t.QueryClass,
		Answer:        t.Answer,
		Documents:     docs,
		TerminalState: t.TerminalState,
		CreatedAt:     t.CreatedAt,
	}
}
