package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type DataProcessing interface {
	Create(ctx context.Context, dp *model.DataProcessing) (*model.DataProcessing, error)
	Save(ctx context.Context, dp *model.DataProcessing) error
	Get(ctx context.Context, operationID uuid.UUID) (*model.DataProcessing, error)
	Delete(ctx context.Context, operationID uuid.UUID) error
}

type DataProcessingStore struct {
	db *gorm.DB
}

var _ DataProcessing = (*DataProcessingStore)(nil)

func NewDataProcessingStore(db *gorm.DB) DataProcessing {
	return &DataProcessingStore{db: db}
}

func (s *DataProcessingStore) Create(ctx context.Context, dp *model.DataProcessing) (*model.DataProcessing, error) {
	if result := getDB(ctx, s.db).Create(dp); result.Error != nil {
		return nil, result.Error
	}
	return dp, nil
}

func (s *DataProcessingStore) Save(ctx context.Context, dp *model.DataProcessing) error {
	return getDB(ctx, s.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(dp).Error
}

func (s *DataProcessingStore) Get(ctx context.Context, operationID uuid.UUID) (*model.DataProcessing, error) {
	var dp model.DataProcessing
	result := getDB(ctx, s.db).First(&dp, "bulk_operation_id = ?", operationID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &dp, nil
}

func (s *DataProcessingStore) Delete(ctx context.Context, operationID uuid.UUID) error {
	return getDB(ctx, s.db).Delete(&model.DataProcessing{}, "bulk_operation_id = ?", operationID).Error
}
