package service

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

func TestEntryLifecycle(t *testing.T) {
	store := newTestStore(t)
	households := NewHouseholdService(store)
	svc := NewExpenseService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	eve := createTestUser(t, store, "eve@example.com")
	household := newTestHousehold(t, store, households, alice, bob)

	entry := &models.ExpenseEntry{
		HouseholdID: household.ID,
		Description: "Groceries",
		Category:    "food",
		Amount:      60,
		PayerIDs:    []string{alice.ID},
	}
	require.NoError(t, svc.CreateEntry(ctx, alice.ID, entry))
	require.NotEmpty(t, entry.ID)
	assert.Equal(t, alice.ID, entry.CreatedBy)

	// Outsiders cannot read the ledger.
	_, err := svc.GetEntry(ctx, eve.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	got, err := svc.GetEntry(ctx, bob.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Description)

	got.Description = "Weekly groceries"
	got.Amount = 75
	got.BeneficiaryIDs = []string{alice.ID, bob.ID}
	require.NoError(t, svc.UpdateEntry(ctx, bob.ID, got))

	updated, err := svc.GetEntry(ctx, alice.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.Amount)
	assert.Equal(t, []string{alice.ID, bob.ID}, updated.BeneficiaryIDs)

	entries, err := svc.ListEntries(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.DeleteEntry(ctx, alice.ID, entry.ID))
	_, err = svc.GetEntry(ctx, alice.ID, entry.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEntryValidation(t *testing.T) {
	store := newTestStore(t)
	households := NewHouseholdService(store)
	svc := NewExpenseService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, households, alice)

	tests := []struct {
		name  string
		entry *models.ExpenseEntry
	}{
		{"negative amount", &models.ExpenseEntry{HouseholdID: household.ID, Amount: -5, PayerIDs: []string{alice.ID}}},
		{"nan amount", &models.ExpenseEntry{HouseholdID: household.ID, Amount: math.NaN(), PayerIDs: []string{alice.ID}}},
		{"no payer", &models.ExpenseEntry{HouseholdID: household.ID, Amount: 10}},
		{"payer not a member", &models.ExpenseEntry{HouseholdID: household.ID, Amount: 10, PayerIDs: []string{bob.ID}}},
		{"beneficiary not a member", &models.ExpenseEntry{HouseholdID: household.ID, Amount: 10, PayerIDs: []string{alice.ID}, BeneficiaryIDs: []string{bob.ID}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateEntry(ctx, alice.ID, tt.entry)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Legacy single-payer entries are still accepted.
	legacy := &models.ExpenseEntry{HouseholdID: household.ID, Amount: 10, PaidBy: alice.ID}
	require.NoError(t, svc.CreateEntry(ctx, alice.ID, legacy))
}

func TestBalancesAndSettlementPlan(t *testing.T) {
	store := newTestStore(t)
	households := NewHouseholdService(store)
	svc := NewExpenseService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	carol := createTestUser(t, store, "carol@example.com")
	household := newTestHousehold(t, store, households, alice, bob, carol)

	// Alice fronts 90 for everyone, Bob fronts 30 for everyone.
	require.NoError(t, svc.CreateEntry(ctx, alice.ID, &models.ExpenseEntry{
		HouseholdID: household.ID, Description: "Utilities", Amount: 90, PayerIDs: []string{alice.ID},
	}))
	require.NoError(t, svc.CreateEntry(ctx, bob.ID, &models.ExpenseEntry{
		HouseholdID: household.ID, Description: "Internet", Amount: 30, PayerIDs: []string{bob.ID},
	}))

	balances, err := svc.Balances(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	byMember := make(map[string]float64, len(balances))
	var sum float64
	for _, b := range balances {
		byMember[b.MemberID] = b.Value
		sum += b.Value
	}
	assert.InDelta(t, 50, byMember[alice.ID], 1e-9)
	assert.InDelta(t, -10, byMember[bob.ID], 1e-9)
	assert.InDelta(t, -40, byMember[carol.ID], 1e-9)
	assert.InDelta(t, 0, sum, engine.Tolerance)

	plan, err := svc.SettlementPlan(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, carol.ID, plan[0].FromMemberID)
	assert.Equal(t, alice.ID, plan[0].ToMemberID)
	assert.InDelta(t, 40, plan[0].Amount, 1e-9)
	assert.Equal(t, bob.ID, plan[1].FromMemberID)
	assert.Equal(t, alice.ID, plan[1].ToMemberID)
	assert.InDelta(t, 10, plan[1].Amount, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, svc.WritePlanCSV(&buf, plan))
	want := "from,to,amount\n" +
		carol.ID + "," + alice.ID + ",40.00\n" +
		bob.ID + "," + alice.ID + ",10.00\n"
	assert.Equal(t, want, buf.String())

	_, err = svc.Balances(ctx, "stranger", household.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestPreviewDoesNotTouchLedger(t *testing.T) {
	store := newTestStore(t)
	households := NewHouseholdService(store)
	svc := NewExpenseService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, households, alice, bob)

	shares := svc.Preview(100, []string{alice.ID}, []string{alice.ID, bob.ID})
	require.Len(t, shares, 1)
	assert.Equal(t, alice.ID, shares[0].MemberID)
	assert.InDelta(t, 50, shares[0].Value, 1e-9)

	entries, err := svc.ListEntries(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
