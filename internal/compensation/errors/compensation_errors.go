package compensationerrors

import (
	"net/http"

	"go-payledger/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Compensation period not found",
		http.StatusNotFound,
	)

	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)

	ErrLedgerNotEmpty = apperror.New(
		apperror.CodeInvalidState,
		"Compensation history already exists for this employee",
		http.StatusConflict,
	)

	ErrNoBaseline = apperror.New(
		apperror.CodeInvalidState,
		"Employee has no baseline compensation to seed an initial period from",
		http.StatusBadRequest,
	)

	ErrLedgerConflict = apperror.New(
		apperror.CodeConflict,
		"Compensation ledger was modified by another request, reload and retry",
		http.StatusConflict,
	)

	ErrUploadFailed = apperror.New(
		apperror.CodeUploadFailed,
		"Letter upload failed, no changes were applied",
		http.StatusBadGateway,
	)

	ErrPersistenceFailed = apperror.New(
		apperror.CodePersistenceFailed,
		"Saving the compensation ledger failed",
		http.StatusInternalServerError,
	)

	ErrIntegrity = apperror.New(
		apperror.CodeInvalidState,
		"Compensation ledger invariant violated",
		http.StatusInternalServerError,
	)
)
