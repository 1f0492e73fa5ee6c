package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/entity"
)

type OperationStatus string

const (
	StatusNew                  OperationStatus = "NEW"
	StatusExecutingQuery       OperationStatus = "EXECUTING_QUERY"
	StatusSavedIdentifiers     OperationStatus = "SAVED_IDENTIFIERS"
	StatusRetrievingRecords    OperationStatus = "RETRIEVING_RECORDS"
	StatusSavingRecordsLocally OperationStatus = "SAVING_RECORDS_LOCALLY"
	StatusDataModification     OperationStatus = "DATA_MODIFICATION"
	StatusReviewChanges        OperationStatus = "REVIEW_CHANGES"
	StatusApplyChanges         OperationStatus = "APPLY_CHANGES"
	StatusCompleted            OperationStatus = "COMPLETED"
	StatusCompletedWithErrors  OperationStatus = "COMPLETED_WITH_ERRORS"
	StatusFailed               OperationStatus = "FAILED"
)

type ApproachType string

const (
	ApproachManual ApproachType = "MANUAL"
	ApproachInApp  ApproachType = "IN_APP"
	ApproachQuery  ApproachType = "QUERY"
)

// BulkOperation is the durable unit of one user-initiated bulk edit.
// Stage workers own the row exclusively between status transitions; all
// writes are last-writer-wins full-row saves.
type BulkOperation struct {
	ID             uuid.UUID         `gorm:"primaryKey"`
	EntityType     entity.EntityType `gorm:"not null"`
	IdentifierType entity.IdentifierType
	Approach       ApproachType
	Status         OperationStatus `gorm:"not null"`
	StartTime      *time.Time
	EndTime        *time.Time
	UserID         uuid.UUID

	TotalNumOfRecords     int
	ProcessedNumOfRecords int
	MatchedNumOfRecords   int
	CommittedNumOfRecords int
	CommittedNumOfErrors  int

	LinkToTriggeringCsvFile             string
	LinkToMatchedRecordsJsonFile        string
	LinkToModifiedRecordsCsvFile        string
	LinkToModifiedRecordsJsonFile       string
	LinkToCommittedRecordsCsvFile       string
	LinkToCommittedRecordsJsonFile      string
	LinkToCommittedRecordsErrorsCsvFile string

	DataExportJobID   *uuid.UUID
	FqlQuery          string
	FqlQueryID        *uuid.UUID
	UserFriendlyQuery string

	ErrorMessage string
}

func (o BulkOperation) String() string {
	val, _ := json.Marshal(o)
	return string(val)
}
