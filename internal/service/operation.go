package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/clients"
	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/filestore"
	"github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

const (
	fileUploadingFailedReason = "File uploading failed, reason: %s"
	stepNotApplicable         = "Step %s is not applicable for bulk operation status %s"
)

type Step string

const (
	StepUpload Step = "UPLOAD"
	StepEdit   Step = "EDIT"
	StepCommit Step = "COMMIT"
)

// BulkOperationStart is the operator dispatch: which step to run and
// how the records enter the pipeline.
type BulkOperationStart struct {
	Step     Step
	Approach model.ApproachType
}

type QueryRequest struct {
	FqlQuery          string
	EntityTypeID      uuid.UUID
	UserFriendlyQuery string
}

// BulkOperationService orchestrates the multi-stage pipeline over one
// operation: entry (upload or query), confirm, apply and commit. Long
// stages run on the executor; each dispatching call returns the current
// operation snapshot immediately.
type BulkOperationService struct {
	store       store.Store
	files       filestore.Store
	dataExport  clients.DataExportClient
	bulkEdit    clients.BulkEditClient
	rules       RuleService
	processors  DataProcessorFactory
	records     RecordUpdateService
	entityTypes EntityTypeService
	queries     QueryService
	errorSvc    *ErrorService
	logFiles    *LogFilesService
	executor    *Executor

	maxRetryCount int
}

type Dependencies struct {
	Store         store.Store
	Files         filestore.Store
	DataExport    clients.DataExportClient
	BulkEdit      clients.BulkEditClient
	Rules         RuleService
	Processors    DataProcessorFactory
	Records       RecordUpdateService
	EntityTypes   EntityTypeService
	Queries       QueryService
	Executor      *Executor
	MaxRetryCount int
}

func NewBulkOperationService(deps Dependencies) *BulkOperationService {
	if deps.Rules == nil {
		deps.Rules = unconfiguredRules{}
	}
	if deps.Processors == nil {
		deps.Processors = unconfiguredProcessors{}
	}
	if deps.Records == nil {
		deps.Records = unconfiguredRecords{}
	}
	if deps.EntityTypes == nil {
		deps.EntityTypes = unconfiguredEntityTypes{}
	}
	if deps.Queries == nil {
		deps.Queries = unconfiguredQueries{}
	}
	if deps.Executor == nil {
		deps.Executor = NewExecutor()
	}
	return &BulkOperationService{
		store:         deps.Store,
		files:         deps.Files,
		dataExport:    deps.DataExport,
		bulkEdit:      deps.BulkEdit,
		rules:         deps.Rules,
		processors:    deps.Processors,
		records:       deps.Records,
		entityTypes:   deps.EntityTypes,
		queries:       deps.Queries,
		errorSvc:      NewErrorService(deps.Store, deps.Files),
		logFiles:      NewLogFilesService(deps.Store, deps.Files),
		executor:      deps.Executor,
		maxRetryCount: deps.MaxRetryCount,
	}
}

// UploadCSVFile creates a new operation around an uploaded identifiers
// file, or, for the manual approach, attaches a user-edited preview CSV
// to an existing operation.
func (s *BulkOperationService) UploadCSVFile(ctx context.Context, entityType entity.EntityType, identifierType entity.IdentifierType, manual bool, operationID *uuid.UUID, userID uuid.UUID, filename string, file io.Reader) (*model.BulkOperation, error) {
	log := zap.S().Named("bulkops")

	var errorMessage string
	var operation *model.BulkOperation

	if manual {
		if operationID == nil {
			return nil, NewErrNotFound("File uploading failed, reason: query parameter operationId is required for csv approach")
		}
		var err error
		operation, err = s.getOperation(ctx, *operationID)
		if err != nil {
			return nil, err
		}

		link, err := s.files.Put(ctx, file, previewCSVPath(operation.ID, time.Now()))
		if err != nil {
			log.Errorf("error starting bulk operation: %v", err)
			errorMessage = fmt.Sprintf(fileUploadingFailedReason, err)
		} else {
			operation.LinkToModifiedRecordsCsvFile = link

			numOfLines, err := s.files.NumOfLines(ctx, link)
			if err != nil {
				errorMessage = fmt.Sprintf(fileUploadingFailedReason, err)
			} else {
				numOfLines-- // header
				if operation.TotalNumOfRecords == 0 {
					operation.TotalNumOfRecords = numOfLines
				}
				operation.ProcessedNumOfRecords = numOfLines
				operation.MatchedNumOfRecords = numOfLines
			}
		}
		operation.Approach = model.ApproachManual
	} else {
		now := time.Now()
		created, err := s.store.BulkOperation().Create(ctx, &model.BulkOperation{
			ID:             uuid.New(),
			EntityType:     entityType,
			IdentifierType: identifierType,
			Status:         model.StatusNew,
			StartTime:      &now,
		})
		if err != nil {
			return nil, err
		}
		operation = created

		link, err := s.files.Put(ctx, file, triggeringCSVPath(operation.ID, filename))
		if err != nil {
			log.Errorf("error starting bulk operation: %v", err)
			errorMessage = fmt.Sprintf(fileUploadingFailedReason, err)
		} else {
			operation.LinkToTriggeringCsvFile = link
		}
	}

	if errorMessage != "" {
		log.Error(errorMessage)
		now := time.Now()
		operation.Status = model.StatusFailed
		operation.ErrorMessage = errorMessage
		operation.EndTime = &now
	}
	operation.UserID = userID

	if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
		return nil, err
	}
	return operation, nil
}

// TriggerByQuery creates an operation driven by a server-side FQL
// query instead of an uploaded identifiers file.
func (s *BulkOperationService) TriggerByQuery(ctx context.Context, userID uuid.UUID, req QueryRequest) (*model.BulkOperation, error) {
	queryID, err := s.queries.ExecuteQuery(ctx, req.FqlQuery, req.EntityTypeID)
	if err != nil {
		return nil, err
	}
	entityType, err := s.entityTypes.GetEntityTypeByID(ctx, req.EntityTypeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return s.store.BulkOperation().Create(ctx, &model.BulkOperation{
		ID:                uuid.New(),
		EntityType:        entityType,
		Approach:          model.ApproachQuery,
		IdentifierType:    entity.IdentifierTypeID,
		Status:            model.StatusExecutingQuery,
		StartTime:         &now,
		UserID:            userID,
		FqlQuery:          req.FqlQuery,
		FqlQueryID:        &queryID,
		UserFriendlyQuery: req.UserFriendlyQuery,
	})
}

// StartBulkOperation validates the requested step against the current
// status, dispatches the matching stage worker to the executor and
// returns the operation snapshot without waiting for the stage.
func (s *BulkOperationService) StartBulkOperation(ctx context.Context, id uuid.UUID, userID uuid.UUID, start BulkOperationStart) (*model.BulkOperation, error) {
	log := zap.S().Named("bulkops")

	operation, err := s.getOperation(ctx, id)
	if err != nil {
		return nil, err
	}
	operation.UserID = userID

	switch start.Step {
	case StepUpload:
		if errorMessage := s.executeDataExportJob(ctx, start.Step, start.Approach, operation); errorMessage != "" {
			log.Error(errorMessage)
			now := time.Now()
			operation.Status = model.StatusFailed
			operation.ErrorMessage = errorMessage
			operation.EndTime = &now
		}
		if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
			return nil, err
		}
		return operation, nil

	case StepEdit:
		if err := s.errorSvc.DeleteErrorsByOperationID(ctx, id); err != nil {
			return nil, err
		}
		operation.CommittedNumOfErrors = 0
		if operation.Status != model.StatusDataModification && operation.Status != model.StatusReviewChanges {
			return nil, NewErrStepNotApplicable(start.Step, operation.Status)
		}
		if start.Approach == model.ApproachManual {
			s.executor.Dispatch(ctx, "apply", func(ctx context.Context) {
				s.apply(ctx, operation)
			})
		} else {
			if err := s.logFiles.RemoveModifiedFiles(ctx, operation); err != nil {
				return nil, err
			}
			s.executor.Dispatch(ctx, "confirm", func(ctx context.Context) {
				s.confirm(ctx, operation)
			})
		}
		return operation, nil

	case StepCommit:
		if operation.Status != model.StatusReviewChanges {
			return nil, NewErrStepNotApplicable(start.Step, operation.Status)
		}
		s.executor.Dispatch(ctx, "commit", func(ctx context.Context) {
			s.commit(ctx, operation)
		})
		return operation, nil

	default:
		return nil, NewErrCannotStart(operation.Status)
	}
}

// executeDataExportJob creates the BULK_EDIT_IDENTIFIERS export job and
// uploads the triggering file to it. A non-empty return value is the
// failure message the caller records on the operation.
func (s *BulkOperationService) executeDataExportJob(ctx context.Context, step Step, approach model.ApproachType, operation *model.BulkOperation) string {
	if operation.Status != model.StatusNew && operation.Status != model.StatusSavedIdentifiers {
		return fmt.Sprintf(fileUploadingFailedReason, fmt.Sprintf(stepNotApplicable, step, operation.Status))
	}
	if approach == model.ApproachManual {
		return ""
	}

	job, err := s.dataExport.UpsertJob(ctx, clients.Job{
		Type:           clients.ExportTypeBulkEditIdentifiers,
		EntityType:     operation.EntityType,
		IdentifierType: operation.IdentifierType,
	})
	if err != nil {
		return fmt.Sprintf(fileUploadingFailedReason, err)
	}

	jobID := job.ID
	operation.DataExportJobID = &jobID
	if err := s.store.BulkOperation().Save(ctx, operation); err != nil {
		return fmt.Sprintf(fileUploadingFailedReason, err)
	}

	if job.Status != clients.JobStatusScheduled {
		return fmt.Sprintf("File uploading failed - invalid job status: %s (expected: SCHEDULED)", job.Status)
	}

	if err := s.uploadIdentifiers(ctx, job.ID, operation); err != nil {
		return fmt.Sprintf(fileUploadingFailedReason, err)
	}

	job, err = s.dataExport.GetJob(ctx, job.ID)
	if err != nil {
		return fmt.Sprintf(fileUploadingFailedReason, err)
	}
	if job.Status == clients.JobStatusFailed {
		return fmt.Sprintf(fileUploadingFailedReason, "Data export job failed")
	}

	operation.Status = model.StatusRetrievingRecords
	return ""
}

// uploadIdentifiers pushes the triggering CSV to the export job,
// retrying not-found answers up to the configured total attempt count.
// Any other error propagates immediately.
func (s *BulkOperationService) uploadIdentifiers(ctx context.Context, jobID uuid.UUID, operation *model.BulkOperation) error {
	filename := path.Base(operation.LinkToTriggeringCsvFile)

	retryCount := 0
	for {
		reader, err := s.files.Get(ctx, operation.LinkToTriggeringCsvFile)
		if err != nil {
			return err
		}
		_, err = s.bulkEdit.UploadFile(ctx, jobID, filename, reader)
		_ = reader.Close()
		if err == nil {
			return nil
		}
		if !errors.Is(err, clients.ErrJobNotFound) {
			return err
		}
		retryCount++
		if retryCount == s.maxRetryCount {
			return NewErrUploadRetriesExhausted()
		}
	}
}

// GetOperationByID reads an operation and augments the snapshot: a
// running query is polled, saved identifiers trigger the upload step,
// and an active stage overlays its live progress counter.
func (s *BulkOperationService) GetOperationByID(ctx context.Context, id uuid.UUID) (*model.BulkOperation, error) {
	operation, err := s.getOperation(ctx, id)
	if err != nil {
		return nil, err
	}

	switch operation.Status {
	case model.StatusExecutingQuery:
		return s.queries.CheckQueryExecutionStatus(ctx, operation)
	case model.StatusSavedIdentifiers:
		return s.StartBulkOperation(ctx, operation.ID, operation.UserID, BulkOperationStart{
			Step:     StepUpload,
			Approach: model.ApproachInApp,
		})
	case model.StatusDataModification:
		if dp, err := s.store.DataProcessing().Get(ctx, id); err == nil && dp.Status == model.ProcessingActive {
			operation.ProcessedNumOfRecords = dp.ProcessedNumOfRecords
		}
		return operation, nil
	case model.StatusApplyChanges:
		if execution, err := s.store.Execution().Get(ctx, id); err == nil && execution.Status == model.ProcessingActive {
			operation.ProcessedNumOfRecords = execution.ProcessedRecords
		}
		return operation, nil
	default:
		return operation, nil
	}
}

// ClearOperationProcessing drops the confirm progress row and rewinds
// the operation to DATA_MODIFICATION so the edit step can be retried.
func (s *BulkOperationService) ClearOperationProcessing(ctx context.Context, operation *model.BulkOperation) error {
	if _, err := s.store.DataProcessing().Get(ctx, operation.ID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.DataProcessing().Delete(ctx, operation.ID); err != nil {
		return err
	}
	operation.Status = model.StatusDataModification
	return s.store.BulkOperation().Save(ctx, operation)
}

func (s *BulkOperationService) CancelOperationByID(ctx context.Context, id uuid.UUID) error {
	operation, err := s.getOperation(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case operation.Status == model.StatusNew ||
		operation.Status == model.StatusRetrievingRecords ||
		operation.Status == model.StatusSavingRecordsLocally:
		if err := s.logFiles.RemoveTriggeringAndMatchedRecordsFiles(ctx, operation); err != nil {
			return err
		}
	case (operation.Status == model.StatusDataModification || operation.Status == model.StatusReviewChanges) &&
		operation.Approach == model.ApproachManual:
		if err := s.logFiles.RemoveModifiedFiles(ctx, operation); err != nil {
			return err
		}
	default:
		return NewErrCannotCancel(operation.Status)
	}

	return s.store.BulkOperation().Save(ctx, operation)
}

// Wait blocks until every dispatched stage worker has finished.
func (s *BulkOperationService) Wait() {
	s.executor.Wait()
}

func (s *BulkOperationService) getOperation(ctx context.Context, id uuid.UUID) (*model.BulkOperation, error) {
	operation, err := s.store.BulkOperation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrOperationNotFound(id)
		}
		return nil, err
	}
	return operation, nil
}
