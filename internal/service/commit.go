package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/codec"
	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// commit walks the matched and modified record streams in lockstep,
// pushes each changed record downstream and materializes the committed
// artifacts. Per-record failures are recorded and never stop the walk;
// the operation ends COMPLETED or COMPLETED_WITH_ERRORS accordingly.
func (s *BulkOperationService) commit(ctx context.Context, operation *model.BulkOperation) {
	log := zap.S().Named("bulkops")

	operation.CommittedNumOfRecords = 0
	operation.Status = model.StatusApplyChanges
	operation.TotalNumOfRecords = operation.MatchedNumOfRecords
	if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
		log.Errorf("saving operation %s: %v", operation.ID, err)
		return
	}

	if operation.LinkToModifiedRecordsJsonFile != "" {
		now := time.Now()
		execution := &model.Execution{
			BulkOperationID: operation.ID,
			Status:          model.ProcessingActive,
			StartTime:       &now,
		}
		if err := s.store.Execution().Save(ctx, execution); err != nil {
			log.Errorf("saving execution for operation %s: %v", operation.ID, err)
			return
		}

		if err := s.runCommit(ctx, operation, execution); err != nil {
			log.Errorf("commit stage for operation %s: %v", operation.ID, err)
			now := time.Now()
			execution.Status = model.ProcessingFailed
			execution.EndTime = &now
			operation.Status = model.StatusFailed
			operation.EndTime = &now
			operation.ErrorMessage = err.Error()
		}
		if err := s.store.Execution().Save(ctx, execution); err != nil {
			log.Errorf("saving execution for operation %s: %v", operation.ID, err)
		}
	}

	link, err := s.errorSvc.UploadErrorsToStorage(ctx, operation.ID)
	if err != nil {
		log.Errorf("uploading errors for operation %s: %v", operation.ID, err)
	}
	operation.LinkToCommittedRecordsErrorsCsvFile = link

	if operation.Status != model.StatusFailed {
		if link == "" {
			operation.Status = model.StatusCompleted
		} else {
			operation.Status = model.StatusCompletedWithErrors
		}
	}
	s.refreshCommittedErrors(ctx, operation)
	if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
		log.Errorf("saving operation %s: %v", operation.ID, err)
	}
}

func (s *BulkOperationService) runCommit(ctx context.Context, operation *model.BulkOperation, execution *model.Execution) error {
	kind, err := entity.KindOf(operation.EntityType)
	if err != nil {
		return err
	}

	stageStart := time.Now()
	jsonPath := changedJSONPath(operation.ID, stageStart)
	csvPath := changedCSVPath(operation.ID, stageStart)

	originalReader, err := s.files.Get(ctx, operation.LinkToMatchedRecordsJsonFile)
	if err != nil {
		return err
	}
	defer originalReader.Close()
	modifiedReader, err := s.files.Get(ctx, operation.LinkToModifiedRecordsJsonFile)
	if err != nil {
		return err
	}
	defer modifiedReader.Close()

	csvObject, err := s.files.Writer(ctx, csvPath)
	if err != nil {
		return err
	}
	defer csvObject.Close()
	jsonObject, err := s.files.Writer(ctx, jsonPath)
	if err != nil {
		return err
	}
	defer jsonObject.Close()

	csvWriter, err := codec.NewCSVWriter(csvObject, kind)
	if err != nil {
		return err
	}
	originalDec := codec.NewJSONLDecoder(originalReader, kind)
	modifiedDec := codec.NewJSONLDecoder(modifiedReader, kind)

	processed := 0
	var prog progress
	for originalDec.More() && modifiedDec.More() {
		original, err := originalDec.Next()
		if err != nil {
			return err
		}
		modified, err := modifiedDec.Next()
		if err != nil {
			return err
		}
		processed++

		result, err := s.records.UpdateEntity(ctx, original, modified, operation)
		switch {
		case err != nil:
			identifier := original.Identifier(operation.IdentifierType)
			var lockErr *OptimisticLockingError
			if errors.As(err, &lockErr) {
				if saveErr := s.errorSvc.SaveCommitError(ctx, operation.ID, identifier, lockErr); saveErr != nil {
					return saveErr
				}
			} else if saveErr := s.errorSvc.SaveError(ctx, operation.ID, identifier, err.Error()); saveErr != nil {
				return saveErr
			}
		case result != nil:
			operation.CommittedNumOfRecords++
			// Committed JSON carries a newline only between records.
			hasNext := originalDec.More() && modifiedDec.More()
			if err := codec.WriteRecord(jsonObject, result, hasNext); err != nil {
				return err
			}
			if err := s.writeToCSV(ctx, operation, csvWriter, result); err != nil {
				return err
			}
		}

		if originalDec.More() {
			execution.Status = model.ProcessingActive
			execution.EndTime = nil
		} else {
			now := time.Now()
			execution.Status = model.ProcessingCompleted
			execution.EndTime = &now
		}
		if prog.due(processed) {
			execution.ProcessedRecords = processed
			prog.mark(processed)
			if err := s.store.Execution().Save(ctx, execution); err != nil {
				return err
			}
		}
	}

	if originalDec.More() != modifiedDec.More() {
		zap.S().Named("bulkops").Warnf("matched and modified record streams differ in length for operation %s, extra records ignored", operation.ID)
	}

	if err := csvWriter.Flush(); err != nil {
		return err
	}
	if err := csvObject.Close(); err != nil {
		return err
	}
	if err := jsonObject.Close(); err != nil {
		return err
	}

	now := time.Now()
	execution.ProcessedRecords = processed
	operation.ProcessedNumOfRecords = operation.CommittedNumOfRecords
	operation.EndTime = &now
	if operation.CommittedNumOfRecords > 0 {
		operation.LinkToCommittedRecordsCsvFile = csvPath
		operation.LinkToCommittedRecordsJsonFile = jsonPath
	}
	return nil
}
