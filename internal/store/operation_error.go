package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type OperationError interface {
	Create(ctx context.Context, e *model.OperationError) error
	List(ctx context.Context, operationID uuid.UUID) ([]model.OperationError, error)
	DeleteByOperationID(ctx context.Context, operationID uuid.UUID) error
}

type OperationErrorStore struct {
	db *gorm.DB
}

var _ OperationError = (*OperationErrorStore)(nil)

func NewOperationErrorStore(db *gorm.DB) OperationError {
	return &OperationErrorStore{db: db}
}

func (s *OperationErrorStore) Create(ctx context.Context, e *model.OperationError) error {
	return getDB(ctx, s.db).Create(e).Error
}

func (s *OperationErrorStore) List(ctx context.Context, operationID uuid.UUID) ([]model.OperationError, error) {
	var errs []model.OperationError
	result := getDB(ctx, s.db).
		Where("bulk_operation_id = ?", operationID).
		Order("id").
		Find(&errs)
	if result.Error != nil {
		return nil, result.Error
	}
	return errs, nil
}

func (s *OperationErrorStore) DeleteByOperationID(ctx context.Context, operationID uuid.UUID) error {
	return getDB(ctx, s.db).Delete(&model.OperationError{}, "bulk_operation_id = ?", operationID).Error
}
