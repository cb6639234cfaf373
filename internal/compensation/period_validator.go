package compensation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode selects which ledger write a candidate is being validated for.
type Mode int

const (
	ModeAddInitial Mode = iota
	ModeAddNew
	ModeIncrement
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAddInitial:
		return "add_initial"
	case ModeAddNew:
		return "add_new"
	case ModeIncrement:
		return "increment"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

const dateLayout = "2006-01-02"

// Candidate is a period as entered in the form, before any parsing. Amount
// fields stay strings so the validator can distinguish "empty", "zero" and
// "not a number".
type Candidate struct {
	EffectiveFrom string
	Label         string
	Basic         string
	Housing       string
	Vehicle       string
	Fuel          string
	Other         string
	Total         string
	Attachment    Attachment
}

// metadataOnly reports whether an edit touches no amount field, in which
// case basic is not required.
func (c Candidate) metadataOnly() bool {
	return c.Basic == "" && c.Housing == "" && c.Vehicle == "" &&
		c.Fuel == "" && c.Other == "" && c.Total == ""
}

// monthKey resolves the candidate's month from its date, falling back to
// its label when the date is absent.
func (c Candidate) monthKey() MonthKey {
	if from, err := time.Parse(dateLayout, c.EffectiveFrom); err == nil {
		return monthKeyOf(from)
	}
	if t, err := time.Parse(labelLayout, c.Label); err == nil {
		return monthKeyOf(t)
	}
	return MonthKey{}
}

// Validate checks a candidate against the existing ledger. It accumulates
// every applicable field error rather than failing fast, and returns either
// nil, a *ValidationError, or a *DuplicatePeriodError. Callers must not
// invoke the mutator on a non-nil result.
func Validate(c Candidate, led Ledger, mode Mode, targetID uuid.UUID) error {
	fields := FieldErrors{}

	from, fromOK := validateEffectiveFrom(c, mode, fields)

	if fromOK && (mode == ModeAddNew || mode == ModeIncrement) && !led.Empty() {
		ref, ok := referencePeriod(led, targetID)
		if ok && !from.After(ref.EffectiveFrom) {
			fields["effective_from"] = fmt.Sprintf(
				"must be later than the current period (%s)", ref.MonthKey(),
			)
		}
	}

	validateAmounts(c, mode, fields)
	validateAttachment(c, led, mode, targetID, fields)

	// Only an edit replaces its target; an incremented period stays in the
	// ledger, so its month still counts against the candidate.
	excludeID := uuid.Nil
	if mode == ModeEdit {
		excludeID = targetID
	}
	if dup, key := duplicateMonth(c, led, excludeID); dup {
		fields["effective_from"] = fmt.Sprintf("a period for %s already exists", key)
		return &DuplicatePeriodError{
			ValidationError: ValidationError{Fields: fields},
			Month:           key,
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateEffectiveFrom(c Candidate, mode Mode, fields FieldErrors) (time.Time, bool) {
	raw := strings.TrimSpace(c.EffectiveFrom)
	if raw == "" {
		// Edits keep the stored dates; everything else needs a start date.
		if mode != ModeEdit {
			fields["effective_from"] = "effective date is required"
		}
		return time.Time{}, false
	}

	from, err := time.Parse(dateLayout, raw)
	if err != nil {
		fields["effective_from"] = "must be a valid date (YYYY-MM-DD)"
		return time.Time{}, false
	}
	return from, true
}

// referencePeriod picks the period a new candidate must postdate: the period
// being incremented when a target is named, otherwise the chronologically
// latest one.
func referencePeriod(led Ledger, targetID uuid.UUID) (Period, bool) {
	if targetID != uuid.Nil {
		if i, ok := led.findPeriod(targetID); ok {
			return led.Periods[i], true
		}
	}

	if led.Empty() {
		return Period{}, false
	}
	latest := led.Periods[0]
	for _, p := range led.Periods[1:] {
		if p.EffectiveFrom.After(latest.EffectiveFrom) {
			latest = p
		}
	}
	return latest, true
}

func validateAmounts(c Candidate, mode Mode, fields FieldErrors) {
	if c.Basic == "" {
		if !(mode == ModeEdit && c.metadataOnly()) {
			fields["basic"] = "basic salary is required"
		}
	} else {
		checkAmount("basic", c.Basic, fields)
	}

	optional := []struct{ name, value string }{
		{"housing_allowance", c.Housing},
		{"vehicle_allowance", c.Vehicle},
		{"fuel_allowance", c.Fuel},
		{"other_allowance", c.Other},
	}
	for _, f := range optional {
		if f.value != "" {
			checkAmount(f.name, f.value, fields)
		}
	}
}

func checkAmount(name, value string, fields FieldErrors) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		fields[name] = "must be a number"
		return
	}
	if d.IsNegative() {
		fields[name] = "must not be negative"
		return
	}
	if d.GreaterThan(MaxAmount) {
		fields[name] = "must not exceed 10,000,000"
	}
}

func validateAttachment(c Candidate, led Ledger, mode Mode, targetID uuid.UUID, fields FieldErrors) {
	switch mode {
	case ModeAddInitial:
		// The synthetic initial period carries no letter.
	case ModeIncrement:
		// An increment opens a new legal period and must carry its own
		// authorization letter; the previous period's letter never counts.
		if c.Attachment == nil {
			fields["letter_attachment"] = "a new salary letter is required"
		}
	case ModeEdit:
		if c.Attachment != nil {
			return
		}
		if i, ok := led.findPeriod(targetID); ok && led.Periods[i].Attachment != nil {
			return
		}
		fields["letter_attachment"] = "a salary letter is required"
	case ModeAddNew:
		if c.Attachment != nil {
			return
		}
		if active, ok := led.ActivePeriod(); ok && active.Attachment != nil {
			return
		}
		fields["letter_attachment"] = "a salary letter is required"
	}
}

// validateSupersession re-checks a date-changing edit of the initial period
// with the rules of a new period: it must start strictly after the period it
// closes and its month must be free, the edit target included since the
// target stays in the ledger as a closed period.
func validateSupersession(c Candidate, led Ledger, ref Period) error {
	fields := FieldErrors{}

	from, ok := validateEffectiveFrom(c, ModeAddNew, fields)
	if ok && !from.After(ref.EffectiveFrom) {
		fields["effective_from"] = fmt.Sprintf(
			"must be later than the current period (%s)", ref.MonthKey(),
		)
	}

	if dup, key := duplicateMonth(c, led, uuid.Nil); dup {
		fields["effective_from"] = fmt.Sprintf("a period for %s already exists", key)
		return &DuplicatePeriodError{
			ValidationError: ValidationError{Fields: fields},
			Month:           key,
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// duplicateMonth reports whether any period other than the edit target
// resolves to the candidate's month.
func duplicateMonth(c Candidate, led Ledger, excludeID uuid.UUID) (bool, MonthKey) {
	key := c.monthKey()
	if key.IsZero() {
		return false, MonthKey{}
	}

	for _, p := range led.Periods {
		if excludeID != uuid.Nil && p.ID == excludeID {
			continue
		}
		if p.MonthKey() == key {
			return true, key
		}
	}
	return false, MonthKey{}
}
