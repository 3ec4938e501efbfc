package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// HouseholdService manages households, membership and the guarded
// membership workflows (leave, remove, demote, dissolve).
type HouseholdService struct {
	store storage.Store
}

// NewHouseholdService creates a HouseholdService with the given
// storage backend.
func NewHouseholdService(store storage.Store) *HouseholdService {
	return &HouseholdService{store: store}
}

// Create creates a household with the actor as its first owner.
func (s *HouseholdService) Create(ctx context.Context, actorID, name string) (*models.Household, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: household name is required", ErrInvalidInput)
	}
	household := &models.Household{Name: name}
	if err := s.store.CreateHousehold(ctx, household); err != nil {
		return nil, err
	}
	member := &models.Member{
		HouseholdID: household.ID,
		UserID:      actorID,
		Role:        models.RoleOwner,
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, err
	}
	slog.Info("Household created", "household_id", household.ID, "owner", actorID)
	return household, nil
}

// Get retrieves a household the actor belongs to.
func (s *HouseholdService) Get(ctx context.Context, actorID, householdID string) (*models.Household, error) {
	household, err := s.store.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, householdID, actorID); err != nil {
		return nil, ErrNotMember
	}
	return household, nil
}

// ListForUser retrieves every household the user belongs to.
func (s *HouseholdService) ListForUser(ctx context.Context, userID string) ([]*models.Household, error) {
	return s.store.ListHouseholdsByUser(ctx, userID)
}

// Members lists the household's members.
func (s *HouseholdService) Members(ctx context.Context, actorID, householdID string) ([]*models.Member, error) {
	if _, err := s.Get(ctx, actorID, householdID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, householdID)
}

// AddMember adds a user to the household. Only owners may invite.
func (s *HouseholdService) AddMember(ctx context.Context, actorID, householdID, userID string, role models.Role) error {
	if err := s.requireOwner(ctx, householdID, actorID); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, householdID, userID); err == nil {
		return fmt.Errorf("%w: user is already a member", ErrInvalidInput)
	}
	return s.store.AddMember(ctx, &models.Member{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        role,
	})
}

// Leave removes the actor from the household. The departure is gated
// on two invariants: the actor's balance over entries since the last
// audit checkpoint must be numerically zero, and the household must
// not lose its last owner.
func (s *HouseholdService) Leave(ctx context.Context, actorID, householdID string) error {
	member, err := s.store.GetMember(ctx, householdID, actorID)
	if err != nil {
		return ErrNotMember
	}

	balance, err := s.balanceSinceAudit(ctx, householdID, actorID)
	if err != nil {
		return err
	}
	if err := engine.CheckLeaveBalance(balance); err != nil {
		return err
	}

	owners, err := s.ownerCount(ctx, householdID)
	if err != nil {
		return err
	}
	if err := engine.CheckLeaveAsOwner(member.Role == models.RoleOwner, owners); err != nil {
		return err
	}

	if err := s.store.RemoveMember(ctx, householdID, actorID); err != nil {
		return err
	}
	slog.Info("Member left household", "household_id", householdID, "user_id", actorID)
	return nil
}

// RemoveMember removes another user from the household. Only owners
// may remove, and the last owner cannot be removed.
func (s *HouseholdService) RemoveMember(ctx context.Context, actorID, householdID, targetID string) error {
	if err := s.requireOwner(ctx, householdID, actorID); err != nil {
		return err
	}
	target, err := s.store.GetMember(ctx, householdID, targetID)
	if err != nil {
		return err
	}
	owners, err := s.ownerCount(ctx, householdID)
	if err != nil {
		return err
	}
	if err := engine.CheckRemoveOwner(target.Role == models.RoleOwner, owners); err != nil {
		return err
	}
	return s.store.RemoveMember(ctx, householdID, targetID)
}

// SetRole promotes or demotes a member. Demoting the last owner is
// refused.
func (s *HouseholdService) SetRole(ctx context.Context, actorID, householdID, targetID string, role models.Role) error {
	if err := s.requireOwner(ctx, householdID, actorID); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	target, err := s.store.GetMember(ctx, householdID, targetID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner && role != models.RoleOwner {
		owners, err := s.ownerCount(ctx, householdID)
		if err != nil {
			return err
		}
		if err := engine.CheckDemoteOwner(true, owners); err != nil {
			return err
		}
	}
	return s.store.UpdateMemberRole(ctx, householdID, targetID, role)
}

// Dissolve deletes the household. Only the sole remaining owner can
// dissolve it.
func (s *HouseholdService) Dissolve(ctx context.Context, actorID, householdID string) error {
	member, err := s.store.GetMember(ctx, householdID, actorID)
	if err != nil {
		return ErrNotMember
	}
	members, err := s.store.ListMembers(ctx, householdID)
	if err != nil {
		return err
	}
	if err := engine.CheckDissolve(member.Role == models.RoleOwner, len(members)); err != nil {
		return err
	}
	if err := s.store.DeleteHousehold(ctx, householdID); err != nil {
		return err
	}
	slog.Info("Household dissolved", "household_id", householdID, "by", actorID)
	return nil
}

// RecordAudit stamps a cash-audit checkpoint. Entries before it are
// treated as settled by the leave guard.
func (s *HouseholdService) RecordAudit(ctx context.Context, actorID, householdID string) (*models.Audit, error) {
	if _, err := s.store.GetMember(ctx, householdID, actorID); err != nil {
		return nil, ErrNotMember
	}
	audit := &models.Audit{HouseholdID: householdID, CreatedBy: actorID}
	if err := s.store.CreateAudit(ctx, audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// balanceSinceAudit computes one member's balance over the entries
// recorded since the household's latest audit checkpoint.
func (s *HouseholdService) balanceSinceAudit(ctx context.Context, householdID, userID string) (float64, error) {
	balances, err := balancesSinceLatestAudit(ctx, s.store, householdID)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.MemberID == userID {
			return b.Value, nil
		}
	}
	return 0, nil
}

func (s *HouseholdService) requireOwner(ctx context.Context, householdID, actorID string) error {
	member, err := s.store.GetMember(ctx, householdID, actorID)
	if err != nil {
		return ErrNotMember
	}
	if member.Role != models.RoleOwner {
		return ErrNotOwner
	}
	return nil
}

func (s *HouseholdService) ownerCount(ctx context.Context, householdID string) (int, error) {
	members, err := s.store.ListMembers(ctx, householdID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range members {
		if m.Role == models.RoleOwner {
			count++
		}
	}
	return count, nil
}
