package compensation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testMutator() Mutator {
	return Mutator{Now: func() time.Time { return fixedNow }}
}

func TestMutator_AddInitial(t *testing.T) {
	m := testMutator()

	t.Run("Synthesizes first period from baseline", func(t *testing.T) {
		// Scenario: baseline basic=5000, join date mid-March.
		led := Ledger{EmployeeID: uuid.New()}
		emp := EmployeeBaseline{
			JoinDate: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
			Basic:    decimal.NewFromInt(5000),
		}

		out, err := m.AddInitial(led, emp)
		assert.NoError(t, err)
		assert.Len(t, out.Periods, 1)

		p := out.Periods[0]
		assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), p.EffectiveFrom)
		assert.Nil(t, p.EffectiveTo)
		assert.Equal(t, "5000", p.Basic.String())
		assert.True(t, p.Initial)
		assert.Equal(t, "March 2023", p.Label)
		assert.Equal(t, "5000", out.Baseline.Total.String())
	})

	t.Run("Falls back to created date without join date", func(t *testing.T) {
		led := Ledger{EmployeeID: uuid.New()}
		emp := EmployeeBaseline{
			CreatedAt: time.Date(2022, 11, 30, 9, 0, 0, 0, time.UTC),
			Basic:     decimal.NewFromInt(4000),
		}

		out, err := m.AddInitial(led, emp)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC), out.Periods[0].EffectiveFrom)
	})

	t.Run("Rejects non-empty ledger", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		_, err := m.AddInitial(led, EmployeeBaseline{Basic: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, ErrLedgerNotEmpty)
	})

	t.Run("Rejects all-zero baseline", func(t *testing.T) {
		_, err := m.AddInitial(Ledger{}, EmployeeBaseline{})
		assert.ErrorIs(t, err, ErrNoBaseline)
	})
}

func TestMutator_Increment(t *testing.T) {
	m := testMutator()

	t.Run("Closes the active period one month before the new start", func(t *testing.T) {
		// Scenario: active period starts 2023-03-01; increment effective
		// 2024-01-01 must close it at 2023-12-01.
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		oldID := led.Periods[0].ID

		out, err := m.Increment(led, Candidate{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
			Attachment:    URLAttachment{Name: "l.pdf", URL: "/api/v1/documents/x"},
		}, oldID)
		assert.NoError(t, err)
		assert.Len(t, out.Periods, 2)

		head := out.Periods[0]
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), head.EffectiveFrom)
		assert.Nil(t, head.EffectiveTo)
		assert.Equal(t, "6000", head.Basic.String())
		assert.False(t, head.Initial)

		closed := out.Periods[1]
		assert.Equal(t, oldID, closed.ID)
		assert.NotNil(t, closed.EffectiveTo)
		assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), *closed.EffectiveTo)

		// Input ledger is untouched.
		assert.Nil(t, led.Periods[0].EffectiveTo)
	})

	t.Run("Baseline mirrors the new head", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))

		out, err := m.Increment(led, Candidate{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
			Housing:       "1000",
			Attachment:    URLAttachment{Name: "l.pdf", URL: "/api/v1/documents/x"},
		}, led.Periods[0].ID)
		assert.NoError(t, err)
		assert.Equal(t, "6000", out.Baseline.Basic.String())
		assert.Equal(t, "7000", out.Baseline.Total.String())
	})
}

func TestMutator_AddNew(t *testing.T) {
	m := testMutator()

	t.Run("Inserts at the head", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))

		out, err := m.AddNew(led, Candidate{
			EffectiveFrom: "2023-06-01",
			Basic:         "5500",
		})
		assert.NoError(t, err)
		assert.Len(t, out.Periods, 2)
		assert.Equal(t, "5500", out.Periods[0].Basic.String())
	})

	t.Run("Rejects start on or before the active period", func(t *testing.T) {
		// Scenario: candidate predates the active period.
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))

		_, err := m.AddNew(led, Candidate{
			EffectiveFrom: "2023-01-01",
			Basic:         "5500",
		})

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields["effective_from"], "must be later than the current period")
	})

	t.Run("End-of-month start clamps the close date", func(t *testing.T) {
		// New period starting March 31 closes the predecessor on the last
		// day of February, not on a normalized March date.
		led := singlePeriodLedger(time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC))

		out, err := m.AddNew(led, Candidate{
			EffectiveFrom: "2023-03-31",
			Basic:         "5500",
		})
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), *out.Periods[1].EffectiveTo)
	})
}

func TestMutator_Edit(t *testing.T) {
	m := testMutator()

	t.Run("Unknown target", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		_, err := m.Edit(led, uuid.New(), Candidate{Basic: "6000"})
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})

	t.Run("Rewrites amounts and recomputes the total", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		target := led.Periods[0]

		out, err := m.Edit(led, target.ID, Candidate{
			Basic:   "5200",
			Housing: "800",
			Total:   "999999", // caller-supplied total is ignored
		})
		assert.NoError(t, err)

		p := out.Periods[0]
		assert.Equal(t, target.ID, p.ID)
		assert.Equal(t, target.EffectiveFrom, p.EffectiveFrom)
		assert.Equal(t, "5200", p.Basic.String())
		assert.Equal(t, "6000", p.Total.String())
	})

	t.Run("Metadata-only edit keeps amounts", func(t *testing.T) {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		target := led.Periods[0]

		out, err := m.Edit(led, target.ID, Candidate{Label: "March 2023 (reissued)"})
		assert.NoError(t, err)
		assert.Equal(t, "5000", out.Periods[0].Basic.String())
		assert.Equal(t, "March 2023 (reissued)", out.Periods[0].Label)
	})

	t.Run("Changing the initial period's date is structural", func(t *testing.T) {
		led := Ledger{EmployeeID: uuid.New()}
		out, err := m.AddInitial(led, EmployeeBaseline{
			JoinDate: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
			Basic:    decimal.NewFromInt(5000),
		})
		assert.NoError(t, err)
		initialID := out.Periods[0].ID

		out2, err := m.Edit(out, initialID, Candidate{
			EffectiveFrom: "2023-06-01",
			Basic:         "5000",
			Attachment:    URLAttachment{Name: "l.pdf", URL: "/api/v1/documents/x"},
		})
		assert.NoError(t, err)
		assert.Len(t, out2.Periods, 2)

		// The fresh head is initial-flagged, the stored one is closed.
		assert.True(t, out2.Periods[0].Initial)
		assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), out2.Periods[0].EffectiveFrom)
		assert.Equal(t, initialID, out2.Periods[1].ID)
		assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), *out2.Periods[1].EffectiveTo)
	})

	t.Run("Backdating the initial period is rejected", func(t *testing.T) {
		led := Ledger{EmployeeID: uuid.New()}
		out, err := m.AddInitial(led, EmployeeBaseline{
			JoinDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Basic:    decimal.NewFromInt(5000),
		})
		assert.NoError(t, err)
		initialID := out.Periods[0].ID

		_, err = m.Edit(out, initialID, Candidate{
			EffectiveFrom: "2023-01-01",
			Basic:         "5000",
			Attachment:    URLAttachment{Name: "l.pdf", URL: "/api/v1/documents/x"},
		})

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields["effective_from"], "must be later")

		// The stored period is untouched on rejection.
		assert.Nil(t, out.Periods[0].EffectiveTo)
	})

	t.Run("Moving the initial period within its month is a duplicate", func(t *testing.T) {
		led := Ledger{EmployeeID: uuid.New()}
		out, err := m.AddInitial(led, EmployeeBaseline{
			JoinDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			Basic:    decimal.NewFromInt(5000),
		})
		assert.NoError(t, err)
		initialID := out.Periods[0].ID

		_, err = m.Edit(out, initialID, Candidate{
			EffectiveFrom: "2023-03-15",
			Basic:         "5000",
			Attachment:    URLAttachment{Name: "l.pdf", URL: "/api/v1/documents/x"},
		})

		var derr *DuplicatePeriodError
		assert.ErrorAs(t, err, &derr)
		assert.Equal(t, "March 2023", derr.Month.String())
	})
}

func TestMutator_Delete(t *testing.T) {
	m := testMutator()

	buildTwoPeriods := func() Ledger {
		led := singlePeriodLedger(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))
		out, err := m.AddNew(led, Candidate{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
		})
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	t.Run("Removes without re-threading by default", func(t *testing.T) {
		// Scenario: deleting the active head leaves the predecessor closed;
		// the active-period query falls back to the latest start date.
		led := buildTwoPeriods()
		activeID := led.Periods[0].ID

		out, err := m.Delete(led, activeID)
		assert.NoError(t, err)
		assert.Len(t, out.Periods, 1)
		assert.NotNil(t, out.Periods[0].EffectiveTo)

		fallback, ok := out.ActivePeriod()
		assert.True(t, ok)
		assert.Equal(t, out.Periods[0].ID, fallback.ID)
	})

	t.Run("RethreadOnDelete reopens the predecessor", func(t *testing.T) {
		led := buildTwoPeriods()
		activeID := led.Periods[0].ID

		strict := m
		strict.RethreadOnDelete = true

		out, err := strict.Delete(led, activeID)
		assert.NoError(t, err)
		assert.Len(t, out.Periods, 1)
		assert.Nil(t, out.Periods[0].EffectiveTo)
	})

	t.Run("Unknown target", func(t *testing.T) {
		led := buildTwoPeriods()
		_, err := m.Delete(led, uuid.New())
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})
}

func TestOneMonthBefore(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"First of month",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"Mid month",
			time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"March 31 clamps to end of February",
			time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"Leap year February",
			time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"January rolls into previous year",
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, oneMonthBefore(tc.in))
		})
	}
}
