package service

import (
	"context"
	"encoding/csv"
	"time"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/filestore"
	"github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// ErrorService accumulates per-record failures for an operation and
// flushes them to the errors CSV artifact at commit end. Saving an
// error also bumps the operation's committed error counter in place;
// stages therefore re-read that counter before their final save.
type ErrorService struct {
	store store.Store
	files filestore.Store
}

func NewErrorService(store store.Store, files filestore.Store) *ErrorService {
	return &ErrorService{store: store, files: files}
}

func (s *ErrorService) SaveError(ctx context.Context, operationID uuid.UUID, identifier, message string) error {
	err := s.store.OperationError().Create(ctx, &model.OperationError{
		BulkOperationID: operationID,
		Identifier:      identifier,
		Message:         message,
	})
	if err != nil {
		return err
	}
	return s.store.BulkOperation().IncrementCommittedErrors(ctx, operationID)
}

func (s *ErrorService) SaveCommitError(ctx context.Context, operationID uuid.UUID, identifier string, lockErr *OptimisticLockingError) error {
	err := s.store.OperationError().Create(ctx, &model.OperationError{
		BulkOperationID:    operationID,
		Identifier:         identifier,
		Message:            lockErr.CSVMessage,
		UIMessage:          lockErr.UIMessage,
		LinkToFailedEntity: lockErr.LinkToFailedEntity,
	})
	if err != nil {
		return err
	}
	return s.store.BulkOperation().IncrementCommittedErrors(ctx, operationID)
}

func (s *ErrorService) DeleteErrorsByOperationID(ctx context.Context, operationID uuid.UUID) error {
	return s.store.OperationError().DeleteByOperationID(ctx, operationID)
}

// UploadErrorsToStorage renders every accumulated error to the errors
// CSV artifact and returns its link, or an empty link when the
// operation has no errors.
func (s *ErrorService) UploadErrorsToStorage(ctx context.Context, operationID uuid.UUID) (string, error) {
	errs, err := s.store.OperationError().List(ctx, operationID)
	if err != nil {
		return "", err
	}
	if len(errs) == 0 {
		return "", nil
	}

	path := committingErrorsCSVPath(operationID, time.Now())
	w, err := s.files.Writer(ctx, path)
	if err != nil {
		return "", err
	}
	defer w.Close()

	cw := csv.NewWriter(w)
	for _, e := range errs {
		row := []string{e.Identifier, e.Message}
		if e.LinkToFailedEntity != "" {
			row = append(row, e.LinkToFailedEntity)
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return path, nil
}
