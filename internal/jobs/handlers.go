package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/service"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// Handlers processes background tasks against the store.
type Handlers struct {
	store    storage.Store
	expenses *service.ExpenseService

	// debtThreshold is how far negative a balance may drift before a
	// reminder notification is created.
	debtThreshold float64
}

// NewHandlers creates the task handlers.
func NewHandlers(store storage.Store, expenses *service.ExpenseService, debtThreshold float64) *Handlers {
	return &Handlers{store: store, expenses: expenses, debtThreshold: debtThreshold}
}

// HandleMaterializeSubscriptions posts every due subscription to its
// household ledger, advances its schedule and notifies the household.
// One failing subscription does not block the rest.
func (h *Handlers) HandleMaterializeSubscriptions(ctx context.Context, _ *asynq.Task) error {
	now := time.Now().Unix()
	due, err := h.store.ListDueSubscriptions(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due subscriptions: %w", err)
	}

	var failed int
	for _, sub := range due {
		if err := h.materialize(ctx, sub, now); err != nil {
			slog.Error("Failed to materialize subscription", "subscription_id", sub.ID, "error", err)
			failed++
		}
	}
	slog.Info("Subscription scan complete", "due", len(due), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d due subscriptions failed", failed, len(due))
	}
	return nil
}

func (h *Handlers) materialize(ctx context.Context, sub *models.Subscription, now int64) error {
	entry := &models.ExpenseEntry{
		HouseholdID:    sub.HouseholdID,
		Description:    sub.Description,
		Category:       sub.Category,
		Amount:         sub.Amount,
		PayerIDs:       sub.PayerIDs,
		BeneficiaryIDs: sub.BeneficiaryIDs,
		SubscriptionID: sub.ID,
		EntryDate:      sub.NextDueAt,
		CreatedBy:      sub.CreatedBy,
	}
	if err := h.store.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to post entry: %w", err)
	}

	// Step forward until the next due date is in the future, so a
	// subscription that sat overdue does not fire once per scan.
	next := sub.NextDueAt
	for next <= now {
		next = advance(next, sub.Cadence)
	}
	sub.NextDueAt = next
	if err := h.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to advance schedule: %w", err)
	}

	members, err := h.store.ListMembers(ctx, sub.HouseholdID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	body := fmt.Sprintf("%s (%.2f) was posted to the ledger", sub.Description, sub.Amount)
	for _, m := range members {
		n := &models.Notification{
			UserID:      m.UserID,
			HouseholdID: sub.HouseholdID,
			Kind:        models.NotificationSubscriptionPosted,
			Body:        body,
		}
		if err := h.store.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	slog.Info("Subscription materialized",
		"subscription_id", sub.ID, "entry_id", entry.ID, "next_due_at", sub.NextDueAt)
	return nil
}

// advance returns the due timestamp one cadence step after ts.
func advance(ts int64, cadence models.Cadence) int64 {
	t := time.Unix(ts, 0).UTC()
	switch cadence {
	case models.CadenceDaily:
		return t.AddDate(0, 0, 1).Unix()
	case models.CadenceWeekly:
		return t.AddDate(0, 0, 7).Unix()
	case models.CadenceMonthly:
		return t.AddDate(0, 1, 0).Unix()
	default:
		// Unknown cadence rows cannot exist via the service layer;
		// treat them as monthly rather than looping forever.
		return t.AddDate(0, 1, 0).Unix()
	}
}

// HandleDebtReminders notifies members whose outstanding balance is
// below the negative threshold. Balances are windowed to the latest
// audit checkpoint, matching the leave guard.
func (h *Handlers) HandleDebtReminders(ctx context.Context, _ *asynq.Task) error {
	households, err := h.store.ListHouseholds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list households: %w", err)
	}

	var reminded int
	for _, household := range households {
		balances, err := h.expenses.OutstandingBalances(ctx, household.ID)
		if err != nil {
			return fmt.Errorf("failed to compute balances for household %s: %w", household.ID, err)
		}
		for _, b := range balances {
			if b.Value >= -h.debtThreshold {
				continue
			}
			n := &models.Notification{
				UserID:      b.MemberID,
				HouseholdID: household.ID,
				Kind:        models.NotificationDebtReminder,
				Body:        fmt.Sprintf("you owe %.2f in %s; time to settle up", -b.Value, household.Name),
			}
			if err := h.store.CreateNotification(ctx, n); err != nil {
				return fmt.Errorf("failed to create reminder: %w", err)
			}
			reminded++
		}
	}
	slog.Info("Debt reminder scan complete", "households", len(households), "reminders", reminded)
	return nil
}
