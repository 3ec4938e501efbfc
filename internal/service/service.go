// Package service implements the business workflows over storage and
// the settlement engine.
package service

import (
	"context"
	"errors"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

var (
	// ErrNotMember is returned when the acting user does not belong to
	// the household they are operating on.
	ErrNotMember = errors.New("you must be a member of this household")

	// ErrNotOwner is returned when an operation requires the owner role.
	ErrNotOwner = errors.New("only a household owner can do this")

	// ErrInvalidInput is returned for request data that fails business
	// validation (unknown participants, negative amounts, bad roles).
	ErrInvalidInput = errors.New("invalid input")
)

// entryToEngine maps a stored expense entry to its engine snapshot.
func entryToEngine(e *models.ExpenseEntry) engine.Entry {
	return engine.Entry{
		Amount:         e.Amount,
		PayerIDs:       e.PayerIDs,
		PaidBy:         e.PaidBy,
		BeneficiaryIDs: e.BeneficiaryIDs,
	}
}

func entriesToEngine(entries []*models.ExpenseEntry) []engine.Entry {
	out := make([]engine.Entry, len(entries))
	for i, e := range entries {
		out[i] = entryToEngine(e)
	}
	return out
}

// memberIDs returns the settlement participant set for a household.
// When membership data is empty the union of payers seen in the
// ledger, in ledger order, is used as a fallback.
func memberIDs(members []*models.Member, entries []*models.ExpenseEntry) []string {
	if len(members) > 0 {
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.UserID
		}
		return ids
	}

	var ids []string
	seen := make(map[string]bool)
	for _, e := range entries {
		payers := e.PayerIDs
		if len(payers) == 0 && e.PaidBy != "" {
			payers = []string{e.PaidBy}
		}
		for _, id := range payers {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// balancesSinceLatestAudit computes the household balances over the
// entries recorded since the latest audit checkpoint. Entries before
// the checkpoint are considered settled by that audit; without a
// checkpoint the whole ledger counts.
func balancesSinceLatestAudit(ctx context.Context, store storage.Store, householdID string) ([]engine.Balance, error) {
	var since int64
	audit, err := store.LatestAudit(ctx, householdID)
	switch {
	case err == nil:
		since = audit.CreatedAt
	case errors.Is(err, storage.ErrNotFound):
		// No audit yet.
	default:
		return nil, err
	}

	entries, err := store.ListEntriesSince(ctx, householdID, since)
	if err != nil {
		return nil, err
	}
	members, err := store.ListMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return engine.Balances(entriesToEngine(entries), memberIDs(members, entries)), nil
}
