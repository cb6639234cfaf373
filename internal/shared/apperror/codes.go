package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeDuplicatePeriod = "DUPLICATE_PERIOD"
	CodeInvalidState    = "INVALID_STATE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
