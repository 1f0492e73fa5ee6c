package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/store/model"
)

type ErrNotFound struct {
	error
}

func NewErrNotFound(message string) *ErrNotFound {
	return &ErrNotFound{fmt.Errorf("%s", message)}
}

func NewErrOperationNotFound(id uuid.UUID) *ErrNotFound {
	return &ErrNotFound{fmt.Errorf("Bulk operation was not found by id=%s", id)}
}

type ErrBadRequest struct {
	error
}

func NewErrStepNotApplicable(step Step, status model.OperationStatus) *ErrBadRequest {
	return &ErrBadRequest{fmt.Errorf(stepNotApplicable, step, status)}
}

type ErrIllegalOperationState struct {
	error
}

func NewErrCannotCancel(status model.OperationStatus) *ErrIllegalOperationState {
	return &ErrIllegalOperationState{fmt.Errorf("Operation with status %s cannot be cancelled", status)}
}

func NewErrCannotStart(status model.OperationStatus) *ErrIllegalOperationState {
	return &ErrIllegalOperationState{fmt.Errorf("Bulk operation cannot be started, reason: invalid state: %s", status)}
}

type ErrServerError struct {
	error
}

func NewErrServerError(message string) *ErrServerError {
	return &ErrServerError{fmt.Errorf("%s", message)}
}

// ErrBulkOperation marks a failure of the operation itself, such as an
// exhausted identifier-upload retry budget.
type ErrBulkOperation struct {
	error
}

func NewErrUploadRetriesExhausted() *ErrBulkOperation {
	return &ErrBulkOperation{fmt.Errorf("Failed to upload file with identifiers: data export job was not found")}
}
