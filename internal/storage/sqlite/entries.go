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

// CreateEntry persists a new expense entry with its payer and
// beneficiary lists. ID, EntryDate and CreatedAt are generated when
// unset.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *models.ExpenseEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if entry.CreatedAt == 0 {
		entry.CreatedAt = now
	}
	if entry.EntryDate == 0 {
		entry.EntryDate = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, household_id, description, category, amount, paid_by,
		                      receipt_path, subscription_id, entry_date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.HouseholdID, entry.Description, entry.Category, entry.Amount, entry.PaidBy,
		entry.ReceiptPath, entry.SubscriptionID, entry.EntryDate, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := insertParticipants(ctx, tx, "entry_payers", entry.ID, entry.PayerIDs); err != nil {
		return err
	}
	if err := insertParticipants(ctx, tx, "entry_beneficiaries", entry.ID, entry.BeneficiaryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertParticipants writes an ordered id list for an entry. The
// position column preserves input order, duplicates included, because
// share calculations are order- and multiplicity-sensitive.
func insertParticipants(ctx context.Context, tx *sql.Tx, table, entryID string, userIDs []string) error {
	for i, id := range userIDs {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (entry_id, user_id, position) VALUES (?, ?, ?)", table),
			entryID, id, i,
		); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// GetEntry retrieves an entry by ID, including payers and
// beneficiaries in their recorded order.
func (s *SQLiteStore) GetEntry(ctx context.Context, entryID string) (*models.ExpenseEntry, error) {
	entry := &models.ExpenseEntry{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, household_id, description, category, amount, paid_by,
		        receipt_path, subscription_id, entry_date, created_by, created_at
		 FROM entries WHERE id = ?`,
		entryID,
	).Scan(&entry.ID, &entry.HouseholdID, &entry.Description, &entry.Category, &entry.Amount,
		&entry.PaidBy, &entry.ReceiptPath, &entry.SubscriptionID, &entry.EntryDate,
		&entry.CreatedBy, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	if entry.PayerIDs, err = s.listParticipants(ctx, "entry_payers", entry.ID); err != nil {
		return nil, err
	}
	if entry.BeneficiaryIDs, err = s.listParticipants(ctx, "entry_beneficiaries", entry.ID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *SQLiteStore) listParticipants(ctx context.Context, table, entryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT user_id FROM %s WHERE entry_id = ? ORDER BY position", table),
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return ids, nil
}

// UpdateEntry replaces an existing entry and its participant lists.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *models.ExpenseEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE entries SET description = ?, category = ?, amount = ?, paid_by = ?,
		        receipt_path = ?, entry_date = ?
		 WHERE id = ?`,
		entry.Description, entry.Category, entry.Amount, entry.PaidBy,
		entry.ReceiptPath, entry.EntryDate, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, storage.ErrNotFound)
	}

	for _, table := range []string{"entry_payers", "entry_beneficiaries"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE entry_id = ?", table), entry.ID,
		); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertParticipants(ctx, tx, "entry_payers", entry.ID, entry.PayerIDs); err != nil {
		return err
	}
	if err := insertParticipants(ctx, tx, "entry_beneficiaries", entry.ID, entry.BeneficiaryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry; participant rows cascade.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, entryID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	return nil
}

// ListEntries retrieves the full ledger for a household, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, householdID string) ([]*models.ExpenseEntry, error) {
	return s.listEntries(ctx, householdID, 0)
}

// ListEntriesSince retrieves entries with EntryDate >= since.
func (s *SQLiteStore) ListEntriesSince(ctx context.Context, householdID string, since int64) ([]*models.ExpenseEntry, error) {
	return s.listEntries(ctx, householdID, since)
}

func (s *SQLiteStore) listEntries(ctx context.Context, householdID string, since int64) ([]*models.ExpenseEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, description, category, amount, paid_by,
		        receipt_path, subscription_id, entry_date, created_by, created_at
		 FROM entries
		 WHERE household_id = ? AND entry_date >= ?
		 ORDER BY entry_date DESC, id`,
		householdID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ExpenseEntry
	for rows.Next() {
		entry := &models.ExpenseEntry{}
		if err := rows.Scan(&entry.ID, &entry.HouseholdID, &entry.Description, &entry.Category,
			&entry.Amount, &entry.PaidBy, &entry.ReceiptPath, &entry.SubscriptionID,
			&entry.EntryDate, &entry.CreatedBy, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for _, entry := range entries {
		if entry.PayerIDs, err = s.listParticipants(ctx, "entry_payers", entry.ID); err != nil {
			return nil, err
		}
		if entry.BeneficiaryIDs, err = s.listParticipants(ctx, "entry_beneficiaries", entry.ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
