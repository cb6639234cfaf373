package compensation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps an input field name to a user-facing message. All
// applicable checks are accumulated before validation fails.
type FieldErrors map[string]string

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(f))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

// ValidationError carries the complete field→message map for a rejected
// candidate. Nothing is applied to the ledger when it is returned.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

// DuplicatePeriodError rejects a candidate resolving to a month already
// present in the ledger. It is a hard abort: retrying with the same input
// can never succeed.
type DuplicatePeriodError struct {
	ValidationError
	Month MonthKey
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("a compensation period for %s already exists", e.Month)
}

// IntegrityError reports a ledger that would violate a structural invariant
// after a mutation. It indicates a caller bypassed validation.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "ledger integrity violation: " + e.Reason
}

// UploadError aborts a mutation before the ledger is touched; the caller may
// retry the upload without re-entering other fields.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return "letter upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError means the local mutation succeeded but the store rejected
// the save. The returned ledger value stays self-consistent; the caller must
// retry the save or reload from the store.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "ledger persistence failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

var (
	ErrPeriodNotFound  = errors.New("compensation period not found")
	ErrLedgerNotEmpty  = errors.New("ledger already has periods")
	ErrNoBaseline      = errors.New("employee has no baseline compensation")
	ErrVersionConflict = errors.New("ledger was modified concurrently")
)
