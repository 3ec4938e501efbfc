package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("got %+v, want id=%s name=Alice", byEmail, user.ID)
	}

	if _, err := store.GetUserByID(ctx, user.ID); err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHouseholdMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	household := &models.Household{Name: "Elm Street Flat"}
	if err := store.CreateHousehold(ctx, household); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}
	if household.ID == "" || household.CreatedAt == 0 {
		t.Fatal("expected generated ID and CreatedAt")
	}

	members := []*models.Member{
		{HouseholdID: household.ID, UserID: "u1", Role: models.RoleOwner, JoinedAt: 100},
		{HouseholdID: household.ID, UserID: "u2", Role: models.RoleMember, JoinedAt: 200},
	}
	for _, m := range members {
		if err := store.AddMember(ctx, m); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}

	t.Run("ListMembers ordered by join time", func(t *testing.T) {
		got, err := store.ListMembers(ctx, household.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(got) != 2 || got[0].UserID != "u1" || got[1].UserID != "u2" {
			t.Errorf("unexpected member order: %+v", got)
		}
		if got[0].Role != models.RoleOwner {
			t.Errorf("u1 role = %s, want owner", got[0].Role)
		}
	})

	t.Run("ListHouseholdsByUser", func(t *testing.T) {
		got, err := store.ListHouseholdsByUser(ctx, "u2")
		if err != nil {
			t.Fatalf("ListHouseholdsByUser failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != household.ID {
			t.Errorf("expected one household %s, got %+v", household.ID, got)
		}
	})

	t.Run("ListHouseholds", func(t *testing.T) {
		got, err := store.ListHouseholds(ctx)
		if err != nil {
			t.Fatalf("ListHouseholds failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != household.ID {
			t.Errorf("expected one household %s, got %+v", household.ID, got)
		}
	})

	t.Run("UpdateMemberRole", func(t *testing.T) {
		if err := store.UpdateMemberRole(ctx, household.ID, "u2", models.RoleOwner); err != nil {
			t.Fatalf("UpdateMemberRole failed: %v", err)
		}
		m, err := store.GetMember(ctx, household.ID, "u2")
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if m.Role != models.RoleOwner {
			t.Errorf("role = %s, want owner", m.Role)
		}
	})

	t.Run("RemoveMember", func(t *testing.T) {
		if err := store.RemoveMember(ctx, household.ID, "u2"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if _, err := store.GetMember(ctx, household.ID, "u2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after removal, got %v", err)
		}
	})

	t.Run("DeleteHousehold cascades membership", func(t *testing.T) {
		if err := store.DeleteHousehold(ctx, household.ID); err != nil {
			t.Fatalf("DeleteHousehold failed: %v", err)
		}
		if _, err := store.GetMember(ctx, household.ID, "u1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected membership to cascade, got %v", err)
		}
	})
}

func TestEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	household := &models.Household{Name: "Test"}
	if err := store.CreateHousehold(ctx, household); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	entry := &models.ExpenseEntry{
		HouseholdID:    household.ID,
		Description:    "Groceries",
		Category:       "food",
		Amount:         62.40,
		PayerIDs:       []string{"u2", "u1"},
		BeneficiaryIDs: []string{"u1", "u2", "u3"},
		EntryDate:      1000,
		CreatedBy:      "u1",
	}
	if err := store.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt == 0 {
		t.Fatal("expected generated ID and CreatedAt")
	}

	t.Run("GetEntry preserves participant order", func(t *testing.T) {
		got, err := store.GetEntry(ctx, entry.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if !reflect.DeepEqual(got.PayerIDs, []string{"u2", "u1"}) {
			t.Errorf("PayerIDs = %v, want [u2 u1]", got.PayerIDs)
		}
		if !reflect.DeepEqual(got.BeneficiaryIDs, []string{"u1", "u2", "u3"}) {
			t.Errorf("BeneficiaryIDs = %v, want [u1 u2 u3]", got.BeneficiaryIDs)
		}
		if got.Amount != 62.40 || got.Category != "food" {
			t.Errorf("unexpected entry: %+v", got)
		}
	})

	t.Run("legacy entry keeps paid_by", func(t *testing.T) {
		legacy := &models.ExpenseEntry{
			HouseholdID: household.ID,
			Description: "Old rent",
			Amount:      500,
			PaidBy:      "u1",
			EntryDate:   500,
			CreatedBy:   "u1",
		}
		if err := store.CreateEntry(ctx, legacy); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		got, err := store.GetEntry(ctx, legacy.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.PaidBy != "u1" || len(got.PayerIDs) != 0 {
			t.Errorf("legacy payer fields wrong: %+v", got)
		}
	})

	t.Run("ListEntriesSince windows by entry date", func(t *testing.T) {
		all, err := store.ListEntries(ctx, household.ID)
		if err != nil {
			t.Fatalf("ListEntries failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(all))
		}

		windowed, err := store.ListEntriesSince(ctx, household.ID, 1000)
		if err != nil {
			t.Fatalf("ListEntriesSince failed: %v", err)
		}
		if len(windowed) != 1 || windowed[0].ID != entry.ID {
			t.Errorf("expected only the recent entry, got %+v", windowed)
		}
	})

	t.Run("UpdateEntry replaces participants", func(t *testing.T) {
		entry.Amount = 70
		entry.PayerIDs = []string{"u3"}
		entry.BeneficiaryIDs = []string{"u3", "u1"}
		if err := store.UpdateEntry(ctx, entry); err != nil {
			t.Fatalf("UpdateEntry failed: %v", err)
		}
		got, err := store.GetEntry(ctx, entry.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.Amount != 70 || !reflect.DeepEqual(got.PayerIDs, []string{"u3"}) {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("DeleteEntry", func(t *testing.T) {
		if err := store.DeleteEntry(ctx, entry.ID); err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if _, err := store.GetEntry(ctx, entry.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAudits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	household := &models.Household{Name: "Test"}
	if err := store.CreateHousehold(ctx, household); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	if _, err := store.LatestAudit(ctx, household.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first audit, got %v", err)
	}

	for _, at := range []int64{100, 300, 200} {
		audit := &models.Audit{HouseholdID: household.ID, CreatedBy: "u1", CreatedAt: at}
		if err := store.CreateAudit(ctx, audit); err != nil {
			t.Fatalf("CreateAudit failed: %v", err)
		}
	}

	latest, err := store.LatestAudit(ctx, household.ID)
	if err != nil {
		t.Fatalf("LatestAudit failed: %v", err)
	}
	if latest.CreatedAt != 300 {
		t.Errorf("latest audit at %d, want 300", latest.CreatedAt)
	}
}

func TestSubscriptions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	household := &models.Household{Name: "Test"}
	if err := store.CreateHousehold(ctx, household); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	sub := &models.Subscription{
		HouseholdID:    household.ID,
		Description:    "Streaming",
		Amount:         15.99,
		PayerIDs:       []string{"u1"},
		BeneficiaryIDs: []string{"u1", "u2"},
		Cadence:        models.CadenceMonthly,
		NextDueAt:      1000,
		Active:         true,
		CreatedBy:      "u1",
	}
	if err := store.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		got, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if !reflect.DeepEqual(got.BeneficiaryIDs, []string{"u1", "u2"}) || got.Cadence != models.CadenceMonthly {
			t.Errorf("unexpected subscription: %+v", got)
		}
	})

	t.Run("due listing honours active flag and due date", func(t *testing.T) {
		due, err := store.ListDueSubscriptions(ctx, 1000)
		if err != nil {
			t.Fatalf("ListDueSubscriptions failed: %v", err)
		}
		if len(due) != 1 {
			t.Fatalf("expected 1 due subscription, got %d", len(due))
		}

		if due, _ = store.ListDueSubscriptions(ctx, 999); len(due) != 0 {
			t.Errorf("expected nothing due before 1000, got %d", len(due))
		}

		sub.Active = false
		if err := store.UpdateSubscription(ctx, sub); err != nil {
			t.Fatalf("UpdateSubscription failed: %v", err)
		}
		if due, _ = store.ListDueSubscriptions(ctx, 1000); len(due) != 0 {
			t.Errorf("paused subscription must not be due, got %d", len(due))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteSubscription(ctx, sub.ID); err != nil {
			t.Fatalf("DeleteSubscription failed: %v", err)
		}
		if _, err := store.GetSubscription(ctx, sub.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := &models.Notification{
		UserID:      "u1",
		HouseholdID: "h1",
		Kind:        models.NotificationDebtReminder,
		Body:        "You owe 12.50",
	}
	if err := store.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	list, err := store.ListNotifications(ctx, "u1")
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 1 || list[0].Kind != models.NotificationDebtReminder || list[0].ReadAt != 0 {
		t.Fatalf("unexpected notifications: %+v", list)
	}

	if err := store.MarkNotificationRead(ctx, n.ID, "u1"); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	list, _ = store.ListNotifications(ctx, "u1")
	if list[0].ReadAt == 0 {
		t.Error("expected ReadAt to be stamped")
	}

	// Another user cannot acknowledge it.
	if err := store.MarkNotificationRead(ctx, n.ID, "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong user, got %v", err)
	}
}
