package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
	"github.com/nestsplit/nestsplit/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, email, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// newTestHousehold creates a household with the first user as owner and
// the rest as plain members.
func newTestHousehold(t *testing.T, store storage.Store, svc *HouseholdService, users ...*models.User) *models.Household {
	t.Helper()
	ctx := context.Background()
	household, err := svc.Create(ctx, users[0].ID, "Test Household")
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, svc.AddMember(ctx, users[0].ID, household.ID, u.ID, models.RoleMember))
	}
	return household
}

func TestHouseholdCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")

	household, err := svc.Create(ctx, alice.ID, "Elm Street Flat")
	require.NoError(t, err)
	require.NotEmpty(t, household.ID)

	member, err := store.GetMember(ctx, household.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, member.Role)

	got, err := svc.Get(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	assert.Equal(t, "Elm Street Flat", got.Name)

	_, err = svc.Get(ctx, bob.ID, household.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.Create(ctx, alice.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddMember(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	carol := createTestUser(t, store, "carol@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	// Plain members cannot invite.
	err := svc.AddMember(ctx, bob.ID, household.ID, carol.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Unknown target user.
	err = svc.AddMember(ctx, alice.ID, household.ID, "nope", models.RoleMember)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Unknown role.
	err = svc.AddMember(ctx, alice.ID, household.ID, carol.ID, models.Role("admin"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.AddMember(ctx, alice.ID, household.ID, carol.ID, models.RoleMember))

	// Re-inviting an existing member fails.
	err = svc.AddMember(ctx, alice.ID, household.ID, bob.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrInvalidInput)

	members, err := svc.Members(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestLeaveBlockedByOutstandingBalance(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	// Alice paid 100 for both, so Bob owes 50.
	require.NoError(t, store.CreateEntry(ctx, &models.ExpenseEntry{
		HouseholdID: household.ID,
		Description: "Groceries",
		Amount:      100,
		PayerIDs:    []string{alice.ID},
		CreatedBy:   alice.ID,
	}))

	err := svc.Leave(ctx, bob.ID, household.ID)
	require.Error(t, err)
	v := engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationBalanceNotZero, v.Kind)

	// Bob is still a member.
	_, err = store.GetMember(ctx, household.ID, bob.ID)
	require.NoError(t, err)
}

func TestLeaveAfterAuditCheckpoint(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	old := time.Now().Unix() - 3600
	require.NoError(t, store.CreateEntry(ctx, &models.ExpenseEntry{
		HouseholdID: household.ID,
		Description: "Rent",
		Amount:      800,
		PayerIDs:    []string{alice.ID},
		EntryDate:   old,
		CreatedBy:   alice.ID,
	}))

	// Blocked before the audit.
	err := svc.Leave(ctx, bob.ID, household.ID)
	require.NotNil(t, engine.AsViolation(err))

	// A cash audit settles everything recorded before it.
	require.NoError(t, store.CreateAudit(ctx, &models.Audit{
		HouseholdID: household.ID,
		CreatedBy:   alice.ID,
		CreatedAt:   old + 1800,
	}))

	require.NoError(t, svc.Leave(ctx, bob.ID, household.ID))
	_, err = store.GetMember(ctx, household.ID, bob.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLeaveLastOwner(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	err := svc.Leave(ctx, alice.ID, household.ID)
	v := engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationLastOwnerCannotLeave, v.Kind)

	// After promoting Bob, Alice is free to go.
	require.NoError(t, svc.SetRole(ctx, alice.ID, household.ID, bob.ID, models.RoleOwner))
	require.NoError(t, svc.Leave(ctx, alice.ID, household.ID))
}

func TestRemoveMember(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	err := svc.RemoveMember(ctx, bob.ID, household.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Alice is the only owner; she cannot be removed even by herself.
	require.NoError(t, svc.SetRole(ctx, alice.ID, household.ID, bob.ID, models.RoleOwner))
	require.NoError(t, svc.SetRole(ctx, alice.ID, household.ID, alice.ID, models.RoleMember))
	err = svc.RemoveMember(ctx, bob.ID, household.ID, bob.ID)
	v := engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationLastOwnerCannotBeRemoved, v.Kind)

	require.NoError(t, svc.RemoveMember(ctx, bob.ID, household.ID, alice.ID))
	_, err = store.GetMember(ctx, household.ID, alice.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetRoleKeepsAnOwner(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	err := svc.SetRole(ctx, alice.ID, household.ID, alice.ID, models.RoleMember)
	v := engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationOwnerMustRemain, v.Kind)

	require.NoError(t, svc.SetRole(ctx, alice.ID, household.ID, bob.ID, models.RoleOwner))
	require.NoError(t, svc.SetRole(ctx, alice.ID, household.ID, alice.ID, models.RoleMember))

	member, err := store.GetMember(ctx, household.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
}

func TestDissolve(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	household := newTestHousehold(t, store, svc, alice, bob)

	err := svc.Dissolve(ctx, bob.ID, household.ID)
	v := engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationOwnerOnly, v.Kind)

	err = svc.Dissolve(ctx, alice.ID, household.ID)
	v = engine.AsViolation(err)
	require.NotNil(t, v)
	assert.Equal(t, engine.ViolationNotLastMember, v.Kind)

	require.NoError(t, svc.Leave(ctx, bob.ID, household.ID))
	require.NoError(t, svc.Dissolve(ctx, alice.ID, household.ID))

	_, err = store.GetHousehold(ctx, household.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordAudit(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	outsider := createTestUser(t, store, "eve@example.com")
	household := newTestHousehold(t, store, svc, alice)

	_, err := svc.RecordAudit(ctx, outsider.ID, household.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	audit, err := svc.RecordAudit(ctx, alice.ID, household.ID)
	require.NoError(t, err)
	require.NotEmpty(t, audit.ID)

	latest, err := store.LatestAudit(ctx, household.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.ID, latest.ID)
}

func TestLeaveNotMember(t *testing.T) {
	store := newTestStore(t)
	svc := NewHouseholdService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	eve := createTestUser(t, store, "eve@example.com")
	household := newTestHousehold(t, store, svc, alice)

	err := svc.Leave(ctx, eve.ID, household.ID)
	assert.True(t, errors.Is(err, ErrNotMember))
}
