package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// Subscription participant lists are stored as JSON text rather than
// join tables: they are only ever read back whole when materializing,
// never queried by member.

// CreateSubscription persists a recurring-expense template.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	payers, beneficiaries, err := marshalParticipants(sub)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, household_id, description, category, amount,
		                            payer_ids, beneficiary_ids, cadence, next_due_at,
		                            active, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.HouseholdID, sub.Description, sub.Category, sub.Amount,
		payers, beneficiaries, string(sub.Cadence), sub.NextDueAt,
		boolToInt(sub.Active), sub.CreatedBy, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID.
func (s *SQLiteStore) GetSubscription(ctx context.Context, subID string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		subscriptionColumns+" FROM subscriptions WHERE id = ?", subID)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", subID, storage.ErrNotFound)
	}
	return sub, err
}

// UpdateSubscription replaces a stored subscription.
func (s *SQLiteStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	payers, beneficiaries, err := marshalParticipants(sub)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET description = ?, category = ?, amount = ?,
		        payer_ids = ?, beneficiary_ids = ?, cadence = ?, next_due_at = ?, active = ?
		 WHERE id = ?`,
		sub.Description, sub.Category, sub.Amount,
		payers, beneficiaries, string(sub.Cadence), sub.NextDueAt, boolToInt(sub.Active),
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %s: %w", sub.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteSubscription removes a subscription template. Entries already
// materialized from it are kept.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, subID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", subID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %s: %w", subID, storage.ErrNotFound)
	}
	return nil
}

// ListSubscriptions retrieves all subscriptions for a household.
func (s *SQLiteStore) ListSubscriptions(ctx context.Context, householdID string) ([]*models.Subscription, error) {
	return s.querySubscriptions(ctx,
		subscriptionColumns+" FROM subscriptions WHERE household_id = ? ORDER BY created_at, id",
		householdID,
	)
}

// ListDueSubscriptions retrieves active subscriptions due at or before
// now, across all households, oldest due date first.
func (s *SQLiteStore) ListDueSubscriptions(ctx context.Context, now int64) ([]*models.Subscription, error) {
	return s.querySubscriptions(ctx,
		subscriptionColumns+" FROM subscriptions WHERE active = 1 AND next_due_at <= ? ORDER BY next_due_at, id",
		now,
	)
}

const subscriptionColumns = `SELECT id, household_id, description, category, amount,
	payer_ids, beneficiary_ids, cadence, next_due_at, active, created_by, created_at`

func (s *SQLiteStore) querySubscriptions(ctx context.Context, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var payers, beneficiaries, cadence string
	var active int
	err := scan(&sub.ID, &sub.HouseholdID, &sub.Description, &sub.Category, &sub.Amount,
		&payers, &beneficiaries, &cadence, &sub.NextDueAt, &active, &sub.CreatedBy, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	sub.Cadence = models.Cadence(cadence)
	sub.Active = active != 0
	if err := json.Unmarshal([]byte(payers), &sub.PayerIDs); err != nil {
		return nil, fmt.Errorf("failed to decode payer ids: %w", err)
	}
	if err := json.Unmarshal([]byte(beneficiaries), &sub.BeneficiaryIDs); err != nil {
		return nil, fmt.Errorf("failed to decode beneficiary ids: %w", err)
	}
	return sub, nil
}

func marshalParticipants(sub *models.Subscription) (payers, beneficiaries string, err error) {
	p, err := json.Marshal(sub.PayerIDs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode payer ids: %w", err)
	}
	b, err := json.Marshal(sub.BeneficiaryIDs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode beneficiary ids: %w", err)
	}
	return string(p), string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
