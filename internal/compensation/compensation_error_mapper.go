package compensation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	compensationerrors "go-payledger/internal/compensation/errors"
	"go-payledger/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapDomainError translates core ledger errors into the transport-facing
// AppError taxonomy. Validation results keep their field map so the UI can
// stay field-scoped.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	var dup *DuplicatePeriodError
	if errors.As(err, &dup) {
		return apperror.New(
			apperror.CodeDuplicatePeriod,
			fmt.Sprintf("A compensation period for %s already exists", dup.Month),
			http.StatusConflict,
		).WithFields(dup.Fields)
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return apperror.ErrInvalidInput.WithFields(ve.Fields)
	}

	var ie *IntegrityError
	if errors.As(err, &ie) {
		return apperror.Wrap(err,
			compensationerrors.ErrIntegrity.Code,
			compensationerrors.ErrIntegrity.Message,
			compensationerrors.ErrIntegrity.HTTPStatus,
		)
	}

	var ue *UploadError
	if errors.As(err, &ue) {
		return apperror.Wrap(ue.Err,
			compensationerrors.ErrUploadFailed.Code,
			compensationerrors.ErrUploadFailed.Message,
			compensationerrors.ErrUploadFailed.HTTPStatus,
		)
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		if errors.Is(pe.Err, ErrVersionConflict) {
			return compensationerrors.ErrLedgerConflict
		}
		return apperror.Wrap(pe.Err,
			compensationerrors.ErrPersistenceFailed.Code,
			compensationerrors.ErrPersistenceFailed.Message,
			compensationerrors.ErrPersistenceFailed.HTTPStatus,
		)
	}

	switch {
	case errors.Is(err, ErrPeriodNotFound):
		return compensationerrors.ErrPeriodNotFound
	case errors.Is(err, ErrLedgerNotEmpty):
		return compensationerrors.ErrLedgerNotEmpty
	case errors.Is(err, ErrNoBaseline):
		return compensationerrors.ErrNoBaseline
	case errors.Is(err, ErrVersionConflict):
		return compensationerrors.ErrLedgerConflict
	}

	return err
}

// mapRepositoryError recognizes the unique month constraint so redelivered
// writes surface as duplicates instead of opaque database errors.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_compensation_period_month" {
			return apperror.New(
				apperror.CodeDuplicatePeriod,
				"A compensation period for this month already exists",
				http.StatusConflict,
			)
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_compensation_period_month") {
		return apperror.New(
			apperror.CodeDuplicatePeriod,
			"A compensation period for this month already exists",
			http.StatusConflict,
		)
	}

	return err
}
