// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/nestsplit/nestsplit/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations used by the services. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Households and membership.
	CreateHousehold(ctx context.Context, household *models.Household) error
	GetHousehold(ctx context.Context, householdID string) (*models.Household, error)
	ListHouseholdsByUser(ctx context.Context, userID string) ([]*models.Household, error)
	// ListHouseholds returns every household; the background worker
	// scans them for overdue debts.
	ListHouseholds(ctx context.Context) ([]*models.Household, error)
	DeleteHousehold(ctx context.Context, householdID string) error
	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, householdID, userID string) (*models.Member, error)
	ListMembers(ctx context.Context, householdID string) ([]*models.Member, error)
	RemoveMember(ctx context.Context, householdID, userID string) error
	UpdateMemberRole(ctx context.Context, householdID, userID string, role models.Role) error

	// Audit checkpoints.
	CreateAudit(ctx context.Context, audit *models.Audit) error
	LatestAudit(ctx context.Context, householdID string) (*models.Audit, error)

	// Expense entries.
	CreateEntry(ctx context.Context, entry *models.ExpenseEntry) error
	GetEntry(ctx context.Context, entryID string) (*models.ExpenseEntry, error)
	UpdateEntry(ctx context.Context, entry *models.ExpenseEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
	ListEntries(ctx context.Context, householdID string) ([]*models.ExpenseEntry, error)
	// ListEntriesSince returns entries with EntryDate >= since, used to
	// window the leave-guard balance to the latest audit checkpoint.
	ListEntriesSince(ctx context.Context, householdID string, since int64) ([]*models.ExpenseEntry, error)

	// Recurring subscriptions.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, subID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, subID string) error
	ListSubscriptions(ctx context.Context, householdID string) ([]*models.Subscription, error)
	// ListDueSubscriptions returns active subscriptions with
	// NextDueAt <= now, across all households.
	ListDueSubscriptions(ctx context.Context, now int64) ([]*models.Subscription, error)

	// Notifications.
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
