package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// The modification engine, record update backend and query executor are
// supplied by the embedding application. When one is missing the
// constructor falls back to these implementations, which fail the
// operation with a clear message instead of panicking mid-stage.

func errNotConfigured(name string) error {
	return NewErrServerError(fmt.Sprintf("%s is not configured", name))
}

type unconfiguredRules struct{}

func (unconfiguredRules) GetRules(context.Context, uuid.UUID) (RuleCollection, error) {
	return nil, errNotConfigured("rule service")
}

type unconfiguredProcessors struct{}

func (unconfiguredProcessors) ProcessorFor(entity.EntityType) (DataProcessor, error) {
	return nil, errNotConfigured("data processor factory")
}

type unconfiguredRecords struct{}

func (unconfiguredRecords) UpdateEntity(context.Context, entity.Record, entity.Record, *model.BulkOperation) (entity.Record, error) {
	return nil, errNotConfigured("record update service")
}

type unconfiguredEntityTypes struct{}

func (unconfiguredEntityTypes) GetEntityTypeByID(context.Context, uuid.UUID) (entity.EntityType, error) {
	return "", errNotConfigured("entity type service")
}

type unconfiguredQueries struct{}

func (unconfiguredQueries) ExecuteQuery(context.Context, string, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, errNotConfigured("query service")
}

func (unconfiguredQueries) CheckQueryExecutionStatus(_ context.Context, op *model.BulkOperation) (*model.BulkOperation, error) {
	return op, nil
}
