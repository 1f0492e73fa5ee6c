package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type BulkOperation interface {
	Create(ctx context.Context, op *model.BulkOperation) (*model.BulkOperation, error)
	// Save upserts the whole row; operations are single-writer so the
	// last save wins by design of the state machine.
	Save(ctx context.Context, op *model.BulkOperation) error
	Get(ctx context.Context, id uuid.UUID) (*model.BulkOperation, error)
	// IncrementCommittedErrors bumps the counter in place. The error
	// service calls this concurrently with a running stage; stages
	// re-read the counter before their final save.
	IncrementCommittedErrors(ctx context.Context, id uuid.UUID) error
}

type BulkOperationStore struct {
	db *gorm.DB
}

var _ BulkOperation = (*BulkOperationStore)(nil)

func NewBulkOperationStore(db *gorm.DB) BulkOperation {
	return &BulkOperationStore{db: db}
}

func (s *BulkOperationStore) Create(ctx context.Context, op *model.BulkOperation) (*model.BulkOperation, error) {
	if result := getDB(ctx, s.db).Create(op); result.Error != nil {
		return nil, result.Error
	}
	return op, nil
}

func (s *BulkOperationStore) Save(ctx context.Context, op *model.BulkOperation) error {
	return getDB(ctx, s.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(op).Error
}

func (s *BulkOperationStore) Get(ctx context.Context, id uuid.UUID) (*model.BulkOperation, error) {
	var op model.BulkOperation
	result := getDB(ctx, s.db).First(&op, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &op, nil
}

func (s *BulkOperationStore) IncrementCommittedErrors(ctx context.Context, id uuid.UUID) error {
	return getDB(ctx, s.db).
		Model(&model.BulkOperation{}).
		Where("id = ?", id).
		UpdateColumn("committed_num_of_errors", gorm.Expr("committed_num_of_errors + 1")).
		Error
}
