package entity

import (
	"time"

	"github.com/google/uuid"
)

// RetrievalConfig tunes the retrieval stage. A single row keyed by name
// ("default") is read at workflow time; missing fields fall back to the
// built-in defaults.
type RetrievalConfig struct {
	Id                   uuid.UUID
	Name                 string
	NumRagResults        int
	NumFaqResults        int
	MaxDocumentsToClient int
	SourceIdPriority     []string
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}

// Retrieval defaults applied when no stored config overrides them.
const (
	DefaultNumRagResults        = 10
	DefaultNumFaqResults        = 5
	DefaultMaxDocumentsToClient = 5
)

// DefaultRetrievalConfig returns the built-in tuning values.
func DefaultRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		Name:                 "default",
		NumRagResults:        DefaultNumRagResults,
		NumFaqResults:        DefaultNumFaqResults,
		MaxDocumentsToClient: DefaultMaxDocumentsToClient,
		SourceIdPriority:     []string{},
	}
}
