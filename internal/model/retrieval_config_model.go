package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RetrievalConfig struct {
	Id                   uuid.UUID                     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                 string                        `gorm:"type:text;not null;uniqueIndex"`
	NumRagResults        int                           `gorm:"default:10"`
	NumFaqResults        int                           `gorm:"default:5"`
	MaxDocumentsToClient int                           `gorm:"default:5"`
	SourceIdPriority     datatypes.JSONSlice[string]   `gorm:"type:jsonb"`
	CreatedAt            time.Time                     `gorm:"autoCreateTime"`
	UpdatedAt            time.Time                     `gorm:"autoUpdateTime"`
}

func (RetrievalConfig) TableName() string {
	return "retrieval_configs"
}
