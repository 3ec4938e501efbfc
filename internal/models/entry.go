package models

// ExpenseEntry is a single recorded household expense. It is immutable
// once read by the settlement engine: updates replace the stored row,
// they never mutate a snapshot already handed out.
type ExpenseEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// HouseholdID is the household this entry belongs to.
	HouseholdID string

	// Description is a short human-readable label (e.g. "Groceries").
	Description string

	// Category is an optional free-form category tag.
	Category string

	// Amount is the expense total in currency major units. Never
	// negative.
	Amount float64

	// PayerIDs lists the members who advanced the money. Entries
	// recorded before multi-payer support leave this empty and carry
	// the single payer in PaidBy instead; balance calculations fall
	// back accordingly.
	PayerIDs []string

	// PaidBy is the legacy single-payer field.
	PaidBy string

	// BeneficiaryIDs lists the members who consumed the expense. Empty
	// means the whole household at calculation time.
	BeneficiaryIDs []string

	// ReceiptPath is an opaque pointer to an attached receipt. The
	// file itself lives outside this system.
	ReceiptPath string

	// SubscriptionID links entries materialized from a recurring
	// subscription back to their template. Empty for manual entries.
	SubscriptionID string

	// EntryDate is the Unix timestamp of the expense itself, used to
	// window balance queries (e.g. "since last audit").
	EntryDate int64

	// CreatedBy is the user who recorded the entry.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the row was written.
	CreatedAt int64
}
