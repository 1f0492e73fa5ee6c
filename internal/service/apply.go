package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/codec"
	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// apply turns the user-edited preview CSV back into the modified
// records JSON. Malformed rows are captured per line instead of
// aborting the stream.
func (s *BulkOperationService) apply(ctx context.Context, operation *model.BulkOperation) {
	log := zap.S().Named("bulkops")

	operation.ProcessedNumOfRecords = 0

	defer func() {
		if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
			log.Errorf("saving operation %s: %v", operation.ID, err)
		}
	}()

	if err := s.runApply(ctx, operation); err != nil {
		log.Errorf("apply stage for operation %s: %v", operation.ID, err)
		operation.ErrorMessage = fmt.Sprintf("Error applying changes: %s", err)
	}
}

func (s *BulkOperationService) runApply(ctx context.Context, operation *model.BulkOperation) error {
	kind, err := entity.KindOf(operation.EntityType)
	if err != nil {
		return err
	}

	jsonPath := previewJSONPath(operation.ID, time.Now())

	reader, err := s.files.Get(ctx, operation.LinkToModifiedRecordsCsvFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	jsonObject, err := s.files.Writer(ctx, jsonPath)
	if err != nil {
		return err
	}
	defer jsonObject.Close()

	decoder := codec.NewCSVDecoder(reader, kind)

	processed := 0
	for decoder.More() {
		rec, ok := decoder.Next()
		if !ok {
			break
		}
		if err := codec.WriteRecord(jsonObject, rec, decoder.More()); err != nil {
			return err
		}
		processed++
		if processed-operation.ProcessedNumOfRecords > operationUpdateStep {
			operation.ProcessedNumOfRecords = processed
			if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
				return err
			}
		}
	}

	for _, rowErr := range decoder.Captured() {
		identifier := entity.IdentifierForManualApproach(rowErr.Line, operation.IdentifierType)
		if err := s.errorSvc.SaveError(ctx, operation.ID, identifier, rowErr.Err.Error()); err != nil {
			return err
		}
	}
	decoder.ClearCaptured()

	if err := jsonObject.Close(); err != nil {
		return err
	}

	operation.ProcessedNumOfRecords = processed
	operation.Status = model.StatusReviewChanges
	operation.LinkToModifiedRecordsJsonFile = jsonPath
	s.refreshCommittedErrors(ctx, operation)
	return nil
}
