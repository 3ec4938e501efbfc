// Package jobs runs the background work behind the ledger: turning due
// recurring subscriptions into real entries and nudging members whose
// debt has grown too large.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every nestsplit task runs on.
	QueueDefault = "default"

	// TaskMaterializeSubscriptions scans all due subscriptions and
	// posts them to their household ledgers.
	TaskMaterializeSubscriptions = "subscriptions:materialize"

	// TaskDebtReminders scans household balances and notifies members
	// whose debt exceeds the configured threshold.
	TaskDebtReminders = "reminders:debt"
)

// NewMaterializeSubscriptionsTask constructs the periodic subscription
// scan task. The scan is global, so the task carries no payload.
func NewMaterializeSubscriptionsTask() *asynq.Task {
	return asynq.NewTask(TaskMaterializeSubscriptions, nil)
}

// NewDebtRemindersTask constructs the periodic debt reminder task.
func NewDebtRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskDebtReminders, nil)
}
