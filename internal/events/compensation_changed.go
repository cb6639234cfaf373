package events

import "time"

const CompensationChangedTopic = "hr.compensation.ledger.v1"

// Actions carried by CompensationChangedEvent.
const (
	CompensationInitialSeeded = "initial_seeded"
	CompensationPeriodAdded   = "period_added"
	CompensationIncremented   = "incremented"
	CompensationPeriodEdited  = "period_edited"
	CompensationPeriodDeleted = "period_deleted"
)

type CompensationChangedEvent struct {
	EventType  string    `json:"event_type"`
	Action     string    `json:"action"`
	EmployeeID string    `json:"employee_id"`
	CompanyID  string    `json:"company_id"`
	PeriodID   string    `json:"period_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
