package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	BulkOperation() BulkOperation
	DataProcessing() DataProcessing
	Execution() Execution
	OperationError() OperationError
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db             *gorm.DB
	bulkOperation  BulkOperation
	dataProcessing DataProcessing
	execution      Execution
	operationError OperationError
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:             db,
		bulkOperation:  NewBulkOperationStore(db),
		dataProcessing: NewDataProcessingStore(db),
		execution:      NewExecutionStore(db),
		operationError: NewOperationErrorStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) BulkOperation() BulkOperation {
	return s.bulkOperation
}

func (s *DataStore) DataProcessing() DataProcessing {
	return s.dataProcessing
}

func (s *DataStore) Execution() Execution {
	return s.execution
}

func (s *DataStore) OperationError() OperationError {
	return s.operationError
}

func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.BulkOperation{},
		&model.DataProcessing{},
		&model.Execution{},
		&model.OperationError{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
