package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is a long-lived conversation. ConnectionId holds the handle of
// the currently attached push connection, empty when no connection is live.
type ChatSession struct {
	Id           uuid.UUID
	ConnectionId string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
