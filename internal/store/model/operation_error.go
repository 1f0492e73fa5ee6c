package model

import (
	"time"

	"github.com/google/uuid"
)

// OperationError is one recorded per-record failure. Optimistic locking
// failures carry the structured triple; plain failures only a message.
type OperationError struct {
	ID                 uint      `gorm:"primaryKey"`
	BulkOperationID    uuid.UUID `gorm:"index;not null"`
	Identifier         string
	Message            string
	UIMessage          string
	LinkToFailedEntity string
	CreatedAt          time.Time
}
