package compensation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmount is the upper bound for every compensation component.
var MaxAmount = decimal.NewFromInt(10_000_000)

// Attachment is the authorization letter attached to a period. It is either
// a resolvable URL or an inline payload, never both.
type Attachment interface {
	attachment()
	FileName() string
}

type URLAttachment struct {
	Name string
	URL  string
}

func (URLAttachment) attachment()        {}
func (a URLAttachment) FileName() string { return a.Name }

type InlineAttachment struct {
	Name string
	MIME string
	Data []byte
}

func (InlineAttachment) attachment()        {}
func (a InlineAttachment) FileName() string { return a.Name }

// Period is one versioned compensation record. A nil EffectiveTo marks the
// period as currently in effect.
type Period struct {
	ID            uuid.UUID
	Label         string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Basic         decimal.Decimal
	Housing       decimal.Decimal
	Vehicle       decimal.Decimal
	Fuel          decimal.Decimal
	Other         decimal.Decimal
	Total         decimal.Decimal
	Attachment    Attachment
	Initial       bool
	CreatedAt     time.Time
}

func (p Period) Active() bool {
	return p.EffectiveTo == nil
}

// MonthKey identifies the calendar month a period covers. Two periods in one
// ledger may never share a key.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

func monthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

const labelLayout = "January 2006"

func monthLabel(t time.Time) string {
	return t.Format(labelLayout)
}

// MonthKey resolves the period's month from EffectiveFrom, falling back to
// the stored label when the date is absent (legacy imports).
func (p Period) MonthKey() MonthKey {
	if !p.EffectiveFrom.IsZero() {
		return monthKeyOf(p.EffectiveFrom)
	}
	if t, err := time.Parse(labelLayout, p.Label); err == nil {
		return monthKeyOf(t)
	}
	return MonthKey{}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// oneMonthBefore moves a date back one calendar month, clamping the day so
// that e.g. March 31 maps to the last day of February rather than
// normalizing into March.
func oneMonthBefore(t time.Time) time.Time {
	lastOfPrev := time.Date(t.Year(), t.Month(), 0, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if day > lastOfPrev.Day() {
		day = lastOfPrev.Day()
	}
	return time.Date(lastOfPrev.Year(), lastOfPrev.Month(), day, 0, 0, 0, 0, time.UTC)
}
