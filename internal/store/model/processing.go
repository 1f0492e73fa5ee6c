package model

import (
	"time"

	"github.com/google/uuid"
)

type ProcessingStatus string

const (
	ProcessingActive    ProcessingStatus = "ACTIVE"
	ProcessingCompleted ProcessingStatus = "COMPLETED"
	ProcessingFailed    ProcessingStatus = "FAILED"
)

// DataProcessing is the progress row of the confirm stage, keyed by the
// operation it belongs to.
type DataProcessing struct {
	BulkOperationID       uuid.UUID `gorm:"primaryKey"`
	Status                ProcessingStatus
	StartTime             *time.Time
	EndTime               *time.Time
	TotalNumOfRecords     int
	ProcessedNumOfRecords int
}

// Execution is the progress row of the commit stage, same key scheme.
type Execution struct {
	BulkOperationID  uuid.UUID `gorm:"primaryKey"`
	Status           ProcessingStatus
	StartTime        *time.Time
	EndTime          *time.Time
	ProcessedRecords int
}
