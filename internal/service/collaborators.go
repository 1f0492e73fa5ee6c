package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// RuleCollection is opaque to the orchestrator; only the data
// processors interpret it.
type RuleCollection = json.RawMessage

type RuleService interface {
	GetRules(ctx context.Context, operationID uuid.UUID) (RuleCollection, error)
}

// UpdatedEntityHolder carries the two shapes a processor produces for
// one record: the preview row for the CSV download and the updated row
// that is committed downstream.
type UpdatedEntityHolder struct {
	Preview entity.Record
	Updated entity.Record
}

type DataProcessor interface {
	Process(ctx context.Context, identifier string, original entity.Record, rules RuleCollection) (UpdatedEntityHolder, error)
}

type DataProcessorFactory interface {
	ProcessorFor(t entity.EntityType) (DataProcessor, error)
}

// RecordUpdateService applies one modified record against the
// downstream store. A nil result with nil error means no change was
// applied and no output must be written for the record.
type RecordUpdateService interface {
	UpdateEntity(ctx context.Context, original, modified entity.Record, op *model.BulkOperation) (entity.Record, error)
}

// OptimisticLockingError is the structured per-record failure the
// record update service raises on a version conflict.
type OptimisticLockingError struct {
	CSVMessage         string
	UIMessage          string
	LinkToFailedEntity string
}

func (e *OptimisticLockingError) Error() string {
	return e.CSVMessage
}

type QueryService interface {
	// ExecuteQuery submits the FQL query and returns the query id.
	ExecuteQuery(ctx context.Context, fqlQuery string, entityTypeID uuid.UUID) (uuid.UUID, error)
	// CheckQueryExecutionStatus polls a running query and may advance
	// the operation past EXECUTING_QUERY.
	CheckQueryExecutionStatus(ctx context.Context, op *model.BulkOperation) (*model.BulkOperation, error)
}

type EntityTypeService interface {
	GetEntityTypeByID(ctx context.Context, id uuid.UUID) (entity.EntityType, error)
}
