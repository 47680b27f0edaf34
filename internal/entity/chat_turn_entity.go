package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRef records a source document that was pushed to the client
// alongside an answer.
type DocumentRef struct {
	DocumentId string `json:"documentId"`
	Title      string `json:"title"`
	Source     string `json:"source,omitempty"`
	SourceId   string `json:"sourceId,omitempty"`
}

// ChatTurn is one query/answer exchange inside a session.
type ChatTurn struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	QueryId       string
	Query         string
	QueryClass    string
	Answer        string
	Documents     []DocumentRef
	TerminalState string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
