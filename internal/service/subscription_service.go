package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// SubscriptionService manages recurring-expense templates. The worker
// turns due templates into ledger entries; this service only owns the
// CRUD side.
type SubscriptionService struct {
	store storage.Store
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(store storage.Store) *SubscriptionService {
	return &SubscriptionService{store: store}
}

func (s *SubscriptionService) validate(ctx context.Context, sub *models.Subscription) error {
	if sub.Amount < 0 || math.IsNaN(sub.Amount) || math.IsInf(sub.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidInput)
	}
	if !sub.Cadence.Valid() {
		return fmt.Errorf("%w: unknown cadence %q", ErrInvalidInput, sub.Cadence)
	}
	if len(sub.PayerIDs) == 0 {
		return fmt.Errorf("%w: at least one payer is required", ErrInvalidInput)
	}

	members, err := s.store.ListMembers(ctx, sub.HouseholdID)
	if err != nil {
		return err
	}
	inHousehold := make(map[string]bool, len(members))
	for _, m := range members {
		inHousehold[m.UserID] = true
	}
	for _, id := range sub.PayerIDs {
		if !inHousehold[id] {
			return fmt.Errorf("%w: payer %s is not a household member", ErrInvalidInput, id)
		}
	}
	for _, id := range sub.BeneficiaryIDs {
		if !inHousehold[id] {
			return fmt.Errorf("%w: beneficiary %s is not a household member", ErrInvalidInput, id)
		}
	}
	return nil
}

// Create validates and persists a new subscription. The first
// materialization defaults to now when NextDueAt is unset.
func (s *SubscriptionService) Create(ctx context.Context, actorID string, sub *models.Subscription) error {
	if _, err := s.store.GetMember(ctx, sub.HouseholdID, actorID); err != nil {
		return ErrNotMember
	}
	if err := s.validate(ctx, sub); err != nil {
		return err
	}
	if sub.NextDueAt == 0 {
		sub.NextDueAt = time.Now().Unix()
	}
	sub.Active = true
	sub.CreatedBy = actorID
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return err
	}
	slog.Info("Subscription created", "subscription_id", sub.ID, "household_id", sub.HouseholdID, "cadence", sub.Cadence)
	return nil
}

// Get retrieves one subscription, checking membership.
func (s *SubscriptionService) Get(ctx context.Context, actorID, subID string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, sub.HouseholdID, actorID); err != nil {
		return nil, ErrNotMember
	}
	return sub, nil
}

// List retrieves the household's subscriptions.
func (s *SubscriptionService) List(ctx context.Context, actorID, householdID string) ([]*models.Subscription, error) {
	if _, err := s.store.GetMember(ctx, householdID, actorID); err != nil {
		return nil, ErrNotMember
	}
	return s.store.ListSubscriptions(ctx, householdID)
}

// Update replaces a subscription's editable fields. The household
// binding and next-due schedule are pinned from the stored row.
func (s *SubscriptionService) Update(ctx context.Context, actorID string, sub *models.Subscription) error {
	existing, err := s.store.GetSubscription(ctx, sub.ID)
	if err != nil {
		return err
	}
	sub.HouseholdID = existing.HouseholdID
	sub.NextDueAt = existing.NextDueAt
	sub.CreatedBy = existing.CreatedBy
	sub.CreatedAt = existing.CreatedAt
	if _, err := s.store.GetMember(ctx, sub.HouseholdID, actorID); err != nil {
		return ErrNotMember
	}
	if err := s.validate(ctx, sub); err != nil {
		return err
	}
	return s.store.UpdateSubscription(ctx, sub)
}

// Delete removes a subscription. Entries already materialized from it
// stay in the ledger.
func (s *SubscriptionService) Delete(ctx context.Context, actorID, subID string) error {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, sub.HouseholdID, actorID); err != nil {
		return ErrNotMember
	}
	return s.store.DeleteSubscription(ctx, subID)
}
