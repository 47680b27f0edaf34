package entity

import (
	"time"

	"github.com/google/uuid"
)

// Faq is a curated question/answer pair. FaqId is derived from the content
// hash so re-ingesting the same pair is idempotent.
type Faq struct {
	Id        uuid.UUID
	FaqId     string
	Question  string
	Answer    string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
