package models

// Cadence is how often a subscription recurs.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Valid reports whether the cadence is one of the known values.
func (c Cadence) Valid() bool {
	return c == CadenceDaily || c == CadenceWeekly || c == CadenceMonthly
}

// Subscription is a recurring-expense template. The worker
// materializes due subscriptions into real ledger entries and advances
// NextDueAt by one cadence step.
type Subscription struct {
	ID          string
	HouseholdID string
	Description string
	Category    string
	Amount      float64

	// PayerIDs and BeneficiaryIDs are copied onto each materialized
	// entry.
	PayerIDs       []string
	BeneficiaryIDs []string

	Cadence Cadence

	// NextDueAt is the Unix timestamp of the next materialization.
	NextDueAt int64

	// Active subscriptions are scanned by the worker; paused ones are
	// kept for history.
	Active bool

	CreatedBy string
	CreatedAt int64
}
