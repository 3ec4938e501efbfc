package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// ExpenseService manages the expense ledger and exposes the settlement
// engine's views over it.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// requireMember loads the acting user's membership or fails with
// ErrNotMember.
func (s *ExpenseService) requireMember(ctx context.Context, householdID, userID string) error {
	if _, err := s.store.GetHousehold(ctx, householdID); err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, householdID, userID); err != nil {
		return ErrNotMember
	}
	return nil
}

// validateEntry enforces entry shape before anything reaches the
// ledger: the engine itself degrades gracefully, persistence must not.
func (s *ExpenseService) validateEntry(ctx context.Context, entry *models.ExpenseEntry) error {
	if entry.Amount < 0 || math.IsNaN(entry.Amount) || math.IsInf(entry.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidInput)
	}
	if len(entry.PayerIDs) == 0 && entry.PaidBy == "" {
		return fmt.Errorf("%w: at least one payer is required", ErrInvalidInput)
	}

	members, err := s.store.ListMembers(ctx, entry.HouseholdID)
	if err != nil {
		return err
	}
	inHousehold := make(map[string]bool, len(members))
	for _, m := range members {
		inHousehold[m.UserID] = true
	}
	for _, id := range entry.PayerIDs {
		if !inHousehold[id] {
			return fmt.Errorf("%w: payer %s is not a household member", ErrInvalidInput, id)
		}
	}
	for _, id := range entry.BeneficiaryIDs {
		if !inHousehold[id] {
			return fmt.Errorf("%w: beneficiary %s is not a household member", ErrInvalidInput, id)
		}
	}
	return nil
}

// CreateEntry validates and persists a new expense entry.
func (s *ExpenseService) CreateEntry(ctx context.Context, actorID string, entry *models.ExpenseEntry) error {
	if err := s.requireMember(ctx, entry.HouseholdID, actorID); err != nil {
		return err
	}
	if err := s.validateEntry(ctx, entry); err != nil {
		return err
	}
	entry.CreatedBy = actorID
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return err
	}
	slog.Info("Entry created", "entry_id", entry.ID, "household_id", entry.HouseholdID, "amount", entry.Amount)
	return nil
}

// GetEntry retrieves an entry, checking the actor belongs to its
// household.
func (s *ExpenseService) GetEntry(ctx context.Context, actorID, entryID string) (*models.ExpenseEntry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, entry.HouseholdID, actorID); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry replaces an entry's editable fields.
func (s *ExpenseService) UpdateEntry(ctx context.Context, actorID string, entry *models.ExpenseEntry) error {
	existing, err := s.store.GetEntry(ctx, entry.ID)
	if err != nil {
		return err
	}
	entry.HouseholdID = existing.HouseholdID
	if err := s.requireMember(ctx, entry.HouseholdID, actorID); err != nil {
		return err
	}
	if err := s.validateEntry(ctx, entry); err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, entry)
}

// DeleteEntry removes an entry.
func (s *ExpenseService) DeleteEntry(ctx context.Context, actorID, entryID string) error {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, entry.HouseholdID, actorID); err != nil {
		return err
	}
	return s.store.DeleteEntry(ctx, entryID)
}

// ListEntries returns the household ledger, newest first.
func (s *ExpenseService) ListEntries(ctx context.Context, actorID, householdID string) ([]*models.ExpenseEntry, error) {
	if err := s.requireMember(ctx, householdID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, householdID)
}

// Preview computes the reimbursement breakdown for a draft entry that
// has not been persisted. It never touches the ledger.
func (s *ExpenseService) Preview(amount float64, payerIDs, beneficiaryIDs []string) []engine.Share {
	return engine.Preview(amount, payerIDs, beneficiaryIDs)
}

// Balances folds the household ledger into one balance per current
// member. When membership data is empty, the union of payers seen in
// the ledger is used instead.
func (s *ExpenseService) Balances(ctx context.Context, actorID, householdID string) ([]engine.Balance, error) {
	if err := s.requireMember(ctx, householdID, actorID); err != nil {
		return nil, err
	}
	return s.householdBalances(ctx, householdID)
}

func (s *ExpenseService) householdBalances(ctx context.Context, householdID string) ([]engine.Balance, error) {
	entries, err := s.store.ListEntries(ctx, householdID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return engine.Balances(entriesToEngine(entries), memberIDs(members, entries)), nil
}

// OutstandingBalances computes balances over the entries recorded
// since the latest audit checkpoint. The background worker uses it to
// find members whose debt has drifted past the reminder threshold.
func (s *ExpenseService) OutstandingBalances(ctx context.Context, householdID string) ([]engine.Balance, error) {
	return balancesSinceLatestAudit(ctx, s.store, householdID)
}

// SettlementPlan turns the current balances into a small set of
// transfers that zero them out.
func (s *ExpenseService) SettlementPlan(ctx context.Context, actorID, householdID string) ([]engine.Transfer, error) {
	balances, err := s.Balances(ctx, actorID, householdID)
	if err != nil {
		return nil, err
	}
	return engine.Plan(balances), nil
}

// WritePlanCSV renders a settlement plan as CSV for export.
func (s *ExpenseService) WritePlanCSV(w io.Writer, transfers []engine.Transfer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "amount"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range transfers {
		record := []string{t.FromMemberID, t.ToMemberID, strconv.FormatFloat(t.Amount, 'f', 2, 64)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
