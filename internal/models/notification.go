package models

// NotificationKind classifies in-app notifications.
type NotificationKind string

const (
	// NotificationDebtReminder nudges a member whose balance has
	// drifted too far negative.
	NotificationDebtReminder NotificationKind = "debt-reminder"

	// NotificationSubscriptionPosted reports a recurring expense that
	// was materialized into the ledger.
	NotificationSubscriptionPosted NotificationKind = "subscription-posted"
)

// Notification is an in-app message for one user. Delivery to external
// push channels is out of scope; rows here are polled by clients.
type Notification struct {
	ID          string
	UserID      string
	HouseholdID string
	Kind        NotificationKind
	Body        string
	CreatedAt   int64

	// ReadAt is zero until the user acknowledges the notification.
	ReadAt int64
}
