package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// CreateHousehold persists a new household, generating the ID and
// timestamp when unset.
func (s *SQLiteStore) CreateHousehold(ctx context.Context, household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if household.CreatedAt == 0 {
		household.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)",
		household.ID, household.Name, household.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// GetHousehold retrieves a household by ID.
func (s *SQLiteStore) GetHousehold(ctx context.Context, householdID string) (*models.Household, error) {
	household := &models.Household{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM households WHERE id = ?",
		householdID,
	).Scan(&household.ID, &household.Name, &household.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("household %s: %w", householdID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return household, nil
}

// ListHouseholdsByUser retrieves every household the user belongs to,
// oldest first.
func (s *SQLiteStore) ListHouseholdsByUser(ctx context.Context, userID string) ([]*models.Household, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id, h.name, h.created_at
		 FROM households h
		 JOIN household_members m ON m.household_id = h.id
		 WHERE m.user_id = ?
		 ORDER BY h.created_at, h.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []*models.Household
	for rows.Next() {
		h := &models.Household{}
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		households = append(households, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate households: %w", err)
	}
	return households, nil
}

// ListHouseholds retrieves every household, oldest first.
func (s *SQLiteStore) ListHouseholds(ctx context.Context) ([]*models.Household, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM households ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []*models.Household
	for rows.Next() {
		h := &models.Household{}
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		households = append(households, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate households: %w", err)
	}
	return households, nil
}

// DeleteHousehold removes a household; membership, entries, audits and
// subscriptions cascade.
func (s *SQLiteStore) DeleteHousehold(ctx context.Context, householdID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM households WHERE id = ?", householdID)
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("household %s: %w", householdID, storage.ErrNotFound)
	}
	return nil
}

// AddMember inserts a membership row.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO household_members (household_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		member.HouseholdID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetMember retrieves one membership row.
func (s *SQLiteStore) GetMember(ctx context.Context, householdID, userID string) (*models.Member, error) {
	member := &models.Member{}
	var role string
	err := s.db.QueryRowContext(ctx,
		"SELECT household_id, user_id, role, joined_at FROM household_members WHERE household_id = ? AND user_id = ?",
		householdID, userID,
	).Scan(&member.HouseholdID, &member.UserID, &role, &member.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s in household %s: %w", userID, householdID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.Role = models.Role(role)
	return member, nil
}

// ListMembers retrieves the household's members ordered by join time,
// then user id for a stable order.
func (s *SQLiteStore) ListMembers(ctx context.Context, householdID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT household_id, user_id, role, joined_at
		 FROM household_members
		 WHERE household_id = ?
		 ORDER BY joined_at, user_id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		var role string
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes a membership row.
func (s *SQLiteStore) RemoveMember(ctx context.Context, householdID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM household_members WHERE household_id = ? AND user_id = ?",
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s in household %s: %w", userID, householdID, storage.ErrNotFound)
	}
	return nil
}

// UpdateMemberRole changes a member's role.
func (s *SQLiteStore) UpdateMemberRole(ctx context.Context, householdID, userID string, role models.Role) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE household_members SET role = ? WHERE household_id = ? AND user_id = ?",
		string(role), householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s in household %s: %w", userID, householdID, storage.ErrNotFound)
	}
	return nil
}

// CreateAudit records a cash-audit checkpoint.
func (s *SQLiteStore) CreateAudit(ctx context.Context, audit *models.Audit) error {
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}
	if audit.CreatedAt == 0 {
		audit.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audits (id, household_id, created_by, created_at) VALUES (?, ?, ?, ?)",
		audit.ID, audit.HouseholdID, audit.CreatedBy, audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit: %w", err)
	}
	return nil
}

// LatestAudit returns the most recent audit checkpoint for a
// household, or ErrNotFound when none has been recorded.
func (s *SQLiteStore) LatestAudit(ctx context.Context, householdID string) (*models.Audit, error) {
	audit := &models.Audit{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, household_id, created_by, created_at
		 FROM audits WHERE household_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		householdID,
	).Scan(&audit.ID, &audit.HouseholdID, &audit.CreatedBy, &audit.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit for household %s: %w", householdID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest audit: %w", err)
	}
	return audit, nil
}
