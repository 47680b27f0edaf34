package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a retrievable knowledge-base chunk.
type Document struct {
	Id         uuid.UUID
	DocumentId string
	Title      string
	Content    string
	Source     string
	SourceId   string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
