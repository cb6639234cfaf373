package compensation

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Mutator owns the ledger write operations. Every operation takes a ledger
// value and returns a new one; the input is never mutated, so callers can
// diff or discard the result.
type Mutator struct {
	// Now stamps CreatedAt on new periods. Defaults to time.Now.
	Now func() time.Time

	// RethreadOnDelete re-links the chronological predecessor of a deleted
	// period instead of leaving a gap. The source system never closed this
	// gap; the flag is an opt-in hardening and off by default.
	RethreadOnDelete bool
}

func (m Mutator) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

// AddInitial synthesizes the first period from the employee's baseline
// fields. It only applies to an empty ledger with non-zero baseline pay;
// callers check emptiness before invoking it, and the guard here makes a
// repeated call fail rather than duplicate the period.
func (m Mutator) AddInitial(led Ledger, emp EmployeeBaseline) (Ledger, error) {
	if !led.Empty() {
		return led, ErrLedgerNotEmpty
	}
	if emp.isZero() {
		return led, ErrNoBaseline
	}

	start := emp.JoinDate
	if start.IsZero() {
		start = emp.CreatedAt
	}
	from := firstOfMonth(start)

	out := led.clone()
	out.Periods = []Period{{
		ID:            uuid.New(),
		Label:         monthLabel(from),
		EffectiveFrom: from,
		EffectiveTo:   nil,
		Basic:         emp.Basic,
		Housing:       emp.Housing,
		Vehicle:       emp.Vehicle,
		Fuel:          emp.Fuel,
		Other:         emp.Other,
		Total:         SumComponents(emp.Basic, emp.Housing, emp.Vehicle, emp.Fuel, emp.Other),
		Initial:       true,
		CreatedAt:     m.now(),
	}}
	return m.commit(out)
}

// AddNew validates the candidate, closes the currently active period and
// inserts the candidate at the head of the ledger as the new active period.
func (m Mutator) AddNew(led Ledger, c Candidate) (Ledger, error) {
	return m.supersede(led, c, ModeAddNew, uuid.Nil)
}

// Increment is AddNew with a mandatory fresh letter and an explicit target:
// the candidate must postdate the period being incremented.
func (m Mutator) Increment(led Ledger, c Candidate, targetID uuid.UUID) (Ledger, error) {
	return m.supersede(led, c, ModeIncrement, targetID)
}

func (m Mutator) supersede(led Ledger, c Candidate, mode Mode, targetID uuid.UUID) (Ledger, error) {
	if err := Validate(c, led, mode, targetID); err != nil {
		return led, err
	}

	from, _ := time.Parse(dateLayout, c.EffectiveFrom)
	out := led.clone()
	m.closeActive(&out, from)
	out.Periods = slices.Insert(out.Periods, 0, m.buildPeriod(c, from, false))
	return m.commit(out)
}

// closeActive sets the active period's end date to one calendar month before
// the incoming start date. Closing is terminal: the period's dates are never
// touched again.
func (m Mutator) closeActive(led *Ledger, newFrom time.Time) {
	if led.Empty() {
		return
	}

	idx := 0
	for i, p := range led.Periods {
		if p.Active() {
			idx = i
			break
		}
	}
	to := oneMonthBefore(newFrom)
	led.Periods[idx].EffectiveTo = &to
}

// Edit replaces a period's non-date fields in place. When the target is the
// synthetic initial period and the candidate carries a different start date,
// the edit becomes a structural change: the stored initial period is closed
// and a fresh initial-flagged period is inserted at the head, so historical
// start dates are never silently rewritten.
func (m Mutator) Edit(led Ledger, targetID uuid.UUID, c Candidate) (Ledger, error) {
	idx, ok := led.findPeriod(targetID)
	if !ok {
		return led, ErrPeriodNotFound
	}

	if err := Validate(c, led, ModeEdit, targetID); err != nil {
		return led, err
	}

	target := led.Periods[idx]
	if target.Initial && c.EffectiveFrom != "" {
		from, _ := time.Parse(dateLayout, c.EffectiveFrom)
		if !from.Equal(target.EffectiveFrom) {
			// The date change closes the stored initial period and opens a
			// new one, so the candidate is held to the same ordering and
			// month-uniqueness rules as any superseding period.
			if err := validateSupersession(c, led, target); err != nil {
				return led, err
			}
			out := led.clone()
			to := oneMonthBefore(from)
			out.Periods[idx].EffectiveTo = &to
			out.Periods = slices.Insert(out.Periods, 0, m.buildPeriod(c, from, true))
			return m.commit(out)
		}
	}

	out := led.clone()
	out.Periods[idx] = m.applyEdit(target, c)
	return m.commit(out)
}

// applyEdit rewrites everything but identity, dates and the initial flag.
func (m Mutator) applyEdit(target Period, c Candidate) Period {
	p := target
	if !c.metadataOnly() {
		p.Basic = ParseAmount(c.Basic)
		p.Housing = ParseAmount(c.Housing)
		p.Vehicle = ParseAmount(c.Vehicle)
		p.Fuel = ParseAmount(c.Fuel)
		p.Other = ParseAmount(c.Other)
	}
	p.Total = SumComponents(p.Basic, p.Housing, p.Vehicle, p.Fuel, p.Other)
	if c.Attachment != nil {
		p.Attachment = c.Attachment
	}
	if c.Label != "" {
		p.Label = c.Label
	}
	return p
}

// Delete removes a period by identity. By default no neighbor is re-linked:
// deleting the active period leaves the ledger without an open period, which
// mirrors the source system (see ActivePeriod's fallback). With
// RethreadOnDelete the chronological predecessor inherits the deleted
// period's end date, reopening it when the deleted period was active.
func (m Mutator) Delete(led Ledger, targetID uuid.UUID) (Ledger, error) {
	idx, ok := led.findPeriod(targetID)
	if !ok {
		return led, ErrPeriodNotFound
	}

	out := led.clone()
	removed := out.Periods[idx]
	out.Periods = slices.Delete(out.Periods, idx, idx+1)

	if m.RethreadOnDelete {
		if pi, ok := chronologicalPredecessor(out, removed.EffectiveFrom); ok {
			out.Periods[pi].EffectiveTo = removed.EffectiveTo
		}
	}
	return m.commit(out)
}

func chronologicalPredecessor(led Ledger, before time.Time) (int, bool) {
	best, found := 0, false
	for i, p := range led.Periods {
		if !p.EffectiveFrom.Before(before) {
			continue
		}
		if !found || p.EffectiveFrom.After(led.Periods[best].EffectiveFrom) {
			best, found = i, true
		}
	}
	return best, found
}

func (m Mutator) buildPeriod(c Candidate, from time.Time, initial bool) Period {
	label := c.Label
	if label == "" {
		label = monthLabel(from)
	}
	return Period{
		ID:            uuid.New(),
		Label:         label,
		EffectiveFrom: from,
		EffectiveTo:   nil,
		Basic:         ParseAmount(c.Basic),
		Housing:       ParseAmount(c.Housing),
		Vehicle:       ParseAmount(c.Vehicle),
		Fuel:          ParseAmount(c.Fuel),
		Other:         ParseAmount(c.Other),
		Total:         ComputeTotal(c.Basic, c.Housing, c.Vehicle, c.Fuel, c.Other),
		Attachment:    c.Attachment,
		Initial:       initial,
		CreatedAt:     m.now(),
	}
}

// commit re-derives the baseline mirror and verifies the structural
// invariants before handing the new ledger back.
func (m Mutator) commit(led Ledger) (Ledger, error) {
	led.refreshBaseline()
	if err := led.verifyIntegrity(); err != nil {
		return led, err
	}
	return led, nil
}
