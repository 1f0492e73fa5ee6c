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

// confirm streams the matched records through the data processor and
// materializes the preview artifacts. Runs on the executor; the
// operation row is saved whatever happens.
func (s *BulkOperationService) confirm(ctx context.Context, operation *model.BulkOperation) {
	log := zap.S().Named("bulkops")

	operation.ProcessedNumOfRecords = 0

	defer func() {
		if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
			log.Errorf("saving operation %s: %v", operation.ID, err)
		}
	}()

	now := time.Now()
	dataProcessing := &model.DataProcessing{
		BulkOperationID:   operation.ID,
		Status:            model.ProcessingActive,
		StartTime:         &now,
		TotalNumOfRecords: operation.TotalNumOfRecords,
	}
	if err := s.store.DataProcessing().Save(ctx, dataProcessing); err != nil {
		s.failConfirm(ctx, operation, dataProcessing, err)
		return
	}

	if err := s.runConfirm(ctx, operation, dataProcessing); err != nil {
		log.Errorf("confirm stage for operation %s: %v", operation.ID, err)
		s.failConfirm(ctx, operation, dataProcessing, err)
	}
}

func (s *BulkOperationService) failConfirm(ctx context.Context, operation *model.BulkOperation, dataProcessing *model.DataProcessing, err error) {
	now := time.Now()
	dataProcessing.Status = model.ProcessingFailed
	dataProcessing.EndTime = &now
	if saveErr := s.store.DataProcessing().Save(ctx, dataProcessing); saveErr != nil {
		zap.S().Named("bulkops").Errorf("saving data processing for operation %s: %v", operation.ID, saveErr)
	}
	operation.Status = model.StatusFailed
	operation.EndTime = &now
	operation.ErrorMessage = fmt.Sprintf("Confirm changes operation failed, reason: %s", err)
}

func (s *BulkOperationService) runConfirm(ctx context.Context, operation *model.BulkOperation, dataProcessing *model.DataProcessing) error {
	kind, err := entity.KindOf(operation.EntityType)
	if err != nil {
		return err
	}
	rules, err := s.rules.GetRules(ctx, operation.ID)
	if err != nil {
		return err
	}
	processor, err := s.processors.ProcessorFor(operation.EntityType)
	if err != nil {
		return err
	}

	stageStart := time.Now()
	csvPath := previewCSVPath(operation.ID, stageStart)
	jsonPath := previewJSONPath(operation.ID, stageStart)

	reader, err := s.files.Get(ctx, operation.LinkToMatchedRecordsJsonFile)
	if err != nil {
		return err
	}
	defer reader.Close()

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
	decoder := codec.NewJSONLDecoder(reader, kind)

	if decoder.More() {
		operation.LinkToModifiedRecordsCsvFile = csvPath
	}

	processed := 0
	var prog progress
	for decoder.More() {
		original, err := decoder.Next()
		if err != nil {
			return err
		}

		if holder := s.processRecord(ctx, processor, original, operation, rules); holder != nil {
			if err := s.writeToCSV(ctx, operation, csvWriter, holder.Preview); err != nil {
				return err
			}
			// Preview JSON always ends each record with a newline.
			if err := codec.WriteRecord(jsonObject, holder.Updated, true); err != nil {
				return err
			}
		}

		processed++
		if decoder.More() {
			dataProcessing.Status = model.ProcessingActive
			dataProcessing.EndTime = nil
		} else {
			now := time.Now()
			dataProcessing.Status = model.ProcessingCompleted
			dataProcessing.EndTime = &now
		}
		if prog.due(processed) {
			dataProcessing.ProcessedNumOfRecords = processed
			prog.mark(processed)
			if err := s.store.DataProcessing().Save(ctx, dataProcessing); err != nil {
				return err
			}
		}
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

	operation.LinkToModifiedRecordsJsonFile = jsonPath

	dataProcessing.ProcessedNumOfRecords = processed
	if err := s.store.DataProcessing().Save(ctx, dataProcessing); err != nil {
		return err
	}

	operation.Approach = model.ApproachInApp
	operation.Status = model.StatusReviewChanges
	operation.ProcessedNumOfRecords = processed
	s.refreshCommittedErrors(ctx, operation)
	return nil
}

// processRecord never fails the stage: a processor error is logged and
// the record skipped, counting toward progress all the same.
func (s *BulkOperationService) processRecord(ctx context.Context, processor DataProcessor, original entity.Record, operation *model.BulkOperation, rules RuleCollection) *UpdatedEntityHolder {
	holder, err := processor.Process(ctx, original.Identifier(operation.IdentifierType), original, rules)
	if err != nil {
		zap.S().Named("bulkops").Errorf("failed to modify entity, reason: %v", err)
		return nil
	}
	return &holder
}

// writeToCSV writes one row, routing converter failures by stage: the
// commit stage only logs them, earlier stages record them against the
// operation.
func (s *BulkOperationService) writeToCSV(ctx context.Context, operation *model.BulkOperation, w *codec.CSVWriter, rec entity.Record) error {
	convErrs, err := w.Write(rec)
	for i := range convErrs {
		convErr := &convErrs[i]
		identifier := rec.Identifier(operation.IdentifierType)
		if operation.Status == model.StatusApplyChanges {
			zap.S().Named("bulkops").Errorf("record %s, field: %s, converter error: %s", identifier, convErr.Field, convErr.Message)
			continue
		}
		message := fmt.Sprintf("%s : %s", convErr.Field, convErr.Message)
		if saveErr := s.errorSvc.SaveError(ctx, operation.ID, identifier, message); saveErr != nil {
			return saveErr
		}
	}
	return err
}

// refreshCommittedErrors re-reads the error counter before a final
// save; the error service bumps it in place while a stage runs, so the
// in-memory copy may be stale.
func (s *BulkOperationService) refreshCommittedErrors(ctx context.Context, operation *model.BulkOperation) {
	if fresh, err := s.store.BulkOperation().Get(ctx, operation.ID); err == nil {
		operation.CommittedNumOfErrors = fresh.CommittedNumOfErrors
	}
}
