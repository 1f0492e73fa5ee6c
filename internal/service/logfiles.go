package service

import (
	"context"

	"github.com/folio-labs/bulk-operations/internal/filestore"
	"github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// LogFilesService removes per-operation artifacts when an operation is
// cancelled or an edit stage is restarted.
type LogFilesService struct {
	store store.Store
	files filestore.Store
}

func NewLogFilesService(store store.Store, files filestore.Store) *LogFilesService {
	return &LogFilesService{store: store, files: files}
}

func (s *LogFilesService) RemoveModifiedFiles(ctx context.Context, op *model.BulkOperation) error {
	if err := s.files.Remove(ctx, op.LinkToModifiedRecordsCsvFile, op.LinkToModifiedRecordsJsonFile); err != nil {
		return err
	}
	op.LinkToModifiedRecordsCsvFile = ""
	op.LinkToModifiedRecordsJsonFile = ""
	return s.store.BulkOperation().Save(ctx, op)
}

func (s *LogFilesService) RemoveTriggeringAndMatchedRecordsFiles(ctx context.Context, op *model.BulkOperation) error {
	if err := s.files.Remove(ctx, op.LinkToTriggeringCsvFile, op.LinkToMatchedRecordsJsonFile); err != nil {
		return err
	}
	op.LinkToTriggeringCsvFile = ""
	op.LinkToMatchedRecordsJsonFile = ""
	return s.store.BulkOperation().Save(ctx, op)
}
