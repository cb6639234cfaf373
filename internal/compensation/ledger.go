package compensation

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Baseline mirrors the active period's components on the employee aggregate
// so the profile screen can render current pay without walking the ledger.
type Baseline struct {
	Basic   decimal.Decimal
	Housing decimal.Decimal
	Vehicle decimal.Decimal
	Fuel    decimal.Decimal
	Other   decimal.Decimal
	Total   decimal.Decimal
}

func (b Baseline) IsZero() bool {
	return b.Basic.IsZero() && b.Housing.IsZero() && b.Vehicle.IsZero() &&
		b.Fuel.IsZero() && b.Other.IsZero()
}

// Ledger is the ordered compensation history of one employee. Periods are
// kept in insertion order, most recently added first; they are never
// re-sorted, so display order and chronological order may diverge after
// deletions or backfilled edits.
type Ledger struct {
	EmployeeID uuid.UUID
	CompanyID  uuid.UUID
	Version    int64
	Periods    []Period
	Baseline   Baseline
}

func (l Ledger) Empty() bool {
	return len(l.Periods) == 0
}

// ActivePeriod returns the period with no end date. When every period is
// closed it falls back to the one with the latest EffectiveFrom; ok is false
// only for an empty ledger.
func (l Ledger) ActivePeriod() (Period, bool) {
	if len(l.Periods) == 0 {
		return Period{}, false
	}

	for _, p := range l.Periods {
		if p.Active() {
			return p, true
		}
	}

	latest := l.Periods[0]
	for _, p := range l.Periods[1:] {
		if p.EffectiveFrom.After(latest.EffectiveFrom) {
			latest = p
		}
	}
	return latest, true
}

// History yields periods in ledger order, newest-added first. The sequence
// is restartable and stops early when the caller does.
func (l Ledger) History() iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for _, p := range l.Periods {
			if !yield(p) {
				return
			}
		}
	}
}

// TotalFor recomputes a period's total from its components. The stored Total
// is never authoritative when the two disagree.
func (l Ledger) TotalFor(p Period) decimal.Decimal {
	return SumComponents(p.Basic, p.Housing, p.Vehicle, p.Fuel, p.Other)
}

func (l Ledger) findPeriod(id uuid.UUID) (int, bool) {
	for i, p := range l.Periods {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

// clone returns a ledger whose period slice can be mutated without touching
// the receiver. Mutator operations work on copies so callers can diff or
// roll back.
func (l Ledger) clone() Ledger {
	out := l
	out.Periods = slices.Clone(l.Periods)
	return out
}

// refreshBaseline re-derives the mirrored employee fields from the active
// period, falling back to the most recently added one.
func (l *Ledger) refreshBaseline() {
	active, ok := l.ActivePeriod()
	if !ok {
		l.Baseline = Baseline{}
		return
	}
	if active.Active() {
		l.Baseline = baselineOf(active)
		return
	}
	// No open period: mirror the most recently added one.
	l.Baseline = baselineOf(l.Periods[0])
}

func baselineOf(p Period) Baseline {
	return Baseline{
		Basic:   p.Basic,
		Housing: p.Housing,
		Vehicle: p.Vehicle,
		Fuel:    p.Fuel,
		Other:   p.Other,
		Total:   SumComponents(p.Basic, p.Housing, p.Vehicle, p.Fuel, p.Other),
	}
}

// verifyIntegrity enforces the structural invariants after a mutation:
// at most one open period and no two periods sharing a month. A failure here
// means validation was bypassed.
func (l Ledger) verifyIntegrity() error {
	var open int
	months := make(map[MonthKey]struct{}, len(l.Periods))

	for _, p := range l.Periods {
		if p.Active() {
			open++
		}
		key := p.MonthKey()
		if key.IsZero() {
			continue
		}
		if _, dup := months[key]; dup {
			return &IntegrityError{Reason: fmt.Sprintf("two periods resolve to %s", key)}
		}
		months[key] = struct{}{}
	}

	if open > 1 {
		return &IntegrityError{Reason: fmt.Sprintf("%d periods have no end date", open)}
	}
	return nil
}

// EmployeeBaseline is the slice of the employee aggregate the ledger needs
// to synthesize the initial period.
type EmployeeBaseline struct {
	JoinDate  time.Time
	CreatedAt time.Time
	Basic     decimal.Decimal
	Housing   decimal.Decimal
	Vehicle   decimal.Decimal
	Fuel      decimal.Decimal
	Other     decimal.Decimal
}

func (b EmployeeBaseline) isZero() bool {
	return b.Basic.IsZero() && b.Housing.IsZero() && b.Vehicle.IsZero() &&
		b.Fuel.IsZero() && b.Other.IsZero()
}
