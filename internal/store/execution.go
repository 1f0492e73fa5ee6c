package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type Execution interface {
	Create(ctx context.Context, e *model.Execution) (*model.Execution, error)
	Save(ctx context.Context, e *model.Execution) error
	Get(ctx context.Context, operationID uuid.UUID) (*model.Execution, error)
}

type ExecutionStore struct {
	db *gorm.DB
}

var _ Execution = (*ExecutionStore)(nil)

func NewExecutionStore(db *gorm.DB) Execution {
	return &ExecutionStore{db: db}
}

func (s *ExecutionStore) Create(ctx context.Context, e *model.Execution) (*model.Execution, error) {
	if result := getDB(ctx, s.db).Create(e); result.Error != nil {
		return nil, result.Error
	}
	return e, nil
}

func (s *ExecutionStore) Save(ctx context.Context, e *model.Execution) error {
	return getDB(ctx, s.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(e).Error
}

func (s *ExecutionStore) Get(ctx context.Context, operationID uuid.UUID) (*model.Execution, error) {
	var e model.Execution
	result := getDB(ctx, s.db).First(&e, "bulk_operation_id = ?", operationID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &e, nil
}
