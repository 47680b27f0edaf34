package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatTurn struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	QueryId       string         `gorm:"type:text;not null;uniqueIndex"`
	Query         string         `gorm:"type:text;not null"`
	QueryClass    string         `gorm:"type:text"`
	Answer        string         `gorm:"type:text"`
	Documents     datatypes.JSON `gorm:"type:jsonb"` // Serialized []entity.DocumentRef
	TerminalState string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
