/**
 * Copyright 2025-present Vanstra Capital Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApplyTransaction atomically records a ledger entry and, when the entry
// applies to the balance, mutates the balance in the same database
// transaction. A debit that would take the balance below zero is rejected
// before anything is written.
func (s *Service) ApplyTransaction(ctx context.Context, params store.ApplyTransactionParams) (*models.Transaction, error) {
	zap.L().Info("Processing transaction",
		zap.String("user_id", params.UserId),
		zap.String("type", params.Type),
		zap.String("amount", params.Amount.String()),
		zap.String("status", params.Status))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentBalanceStr string
	var version int64
	err = tx.QueryRowContext(ctx, queryGetBalanceForUpdate, params.UserId).Scan(&currentBalanceStr, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}

	currentBalance, err := decimal.NewFromString(currentBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current balance %q: %w", currentBalanceStr, err)
	}

	newBalance := currentBalance
	if params.ApplyToBalance {
		newBalance = currentBalance.Add(params.Amount)
		if newBalance.IsNegative() {
			return nil, store.ErrInsufficientFunds
		}
	}

	now := time.Now()
	transaction := &models.Transaction{
		Id:                 "TXN-" + uuid.New().String(),
		UserId:             params.UserId,
		Type:               params.Type,
		Subtype:            params.Subtype,
		Description:        params.Description,
		Amount:             params.Amount,
		Currency:           params.Currency,
		RecipientName:      params.RecipientName,
		RecipientAccount:   params.RecipientAccount,
		RecipientBank:      params.RecipientBank,
		Category:           params.Category,
		ReferenceNumber:    params.ReferenceNumber,
		Note:               params.Note,
		BalanceBefore:      currentBalance,
		BalanceAfter:       newBalance,
		Status:             params.Status,
		Reference:          params.Reference,
		Timestamp:          now,
		EstimatedClearance: params.EstimatedClearance,
	}

	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.UserId, transaction.Type, transaction.Subtype,
		transaction.Description, transaction.Amount.String(), transaction.Currency,
		transaction.RecipientName, transaction.RecipientAccount, transaction.RecipientBank,
		transaction.Category, transaction.ReferenceNumber, transaction.Note,
		transaction.BalanceBefore.String(), transaction.BalanceAfter.String(),
		transaction.Status, transaction.Reference, now,
		nullableTime(transaction.EstimatedClearance))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if params.ApplyToBalance {
		// Optimistic locking on the user row version
		result, err := tx.ExecContext(ctx, queryUpdateBalance, newBalance.String(), params.UserId, version)
		if err != nil {
			return nil, fmt.Errorf("failed to update balance: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction processed successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", params.UserId),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

// SettleDeposit flips a pending deposit to completed and credits the balance
// atomically. Nothing settles deposits automatically; this is an explicit
// operator action.
func (s *Service) SettleDeposit(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transaction, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransaction, transactionId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if transaction.Type != models.TransactionTypeDeposit || transaction.Status != models.TransactionStatusPending {
		return nil, store.ErrDepositNotPending
	}

	var currentBalanceStr string
	var version int64
	if err := tx.QueryRowContext(ctx, queryGetBalanceForUpdate, userId).Scan(&currentBalanceStr, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}
	currentBalance, err := decimal.NewFromString(currentBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current balance %q: %w", currentBalanceStr, err)
	}
	newBalance := currentBalance.Add(transaction.Amount)

	result, err := tx.ExecContext(ctx, querySettleDeposit, transactionId, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to settle deposit: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, store.ErrDepositNotPending
	}

	result, err = tx.ExecContext(ctx, queryUpdateBalance, newBalance.String(), userId, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	transaction.Status = models.TransactionStatusCompleted
	zap.L().Info("Deposit settled",
		zap.String("transaction_id", transactionId),
		zap.String("user_id", userId),
		zap.String("amount", transaction.Amount.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var amountStr, balanceBeforeStr, balanceAfterStr string
	var subtype, description, recipientName, recipientAccount, recipientBank sql.NullString
	var category, referenceNumber, note sql.NullString
	var estimatedClearance sql.NullTime

	err := row.Scan(&t.Id, &t.UserId, &t.Type, &subtype, &description,
		&amountStr, &t.Currency, &recipientName, &recipientAccount, &recipientBank,
		&category, &referenceNumber, &note, &balanceBeforeStr, &balanceAfterStr,
		&t.Status, &t.Reference, &t.Timestamp, &estimatedClearance)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
	}
	if t.BalanceBefore, err = decimal.NewFromString(balanceBeforeStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance_before %q: %w", balanceBeforeStr, err)
	}
	if t.BalanceAfter, err = decimal.NewFromString(balanceAfterStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance_after %q: %w", balanceAfterStr, err)
	}
	t.Subtype = subtype.String
	t.Description = description.String
	t.RecipientName = recipientName.String
	t.RecipientAccount = recipientAccount.String
	t.RecipientBank = recipientBank.String
	t.Category = category.String
	t.ReferenceNumber = referenceNumber.String
	t.Note = note.String
	if estimatedClearance.Valid {
		ec := estimatedClearance.Time
		t.EstimatedClearance = &ec
	}

	return &t, nil
}

// GetTransactions returns paginated transaction history for a user, newest first.
func (s *Service) GetTransactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// ReconcileBalance recomputes the balance as the opening balance plus the
// sum of completed transaction amounts and corrects the stored balance on
// drift. Pending deposits are excluded until settled. The opening balance is
// taken from the earliest ledger entry's balance_before; an account with no
// history has nothing to reconcile.
func (s *Service) ReconcileBalance(ctx context.Context, userId string) error {
	user, err := s.GetUserById(ctx, userId)
	if err != nil {
		return err
	}

	var openingStr string
	err = s.db.QueryRowContext(ctx, queryOpeningBalance, userId).Scan(&openingStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query opening balance: %w", err)
	}
	calculated, err := decimal.NewFromString(openingStr)
	if err != nil {
		return fmt.Errorf("failed to parse opening balance %q: %w", openingStr, err)
	}

	rows, err := s.db.QueryContext(ctx, queryCompletedAmounts, userId)
	if err != nil {
		return fmt.Errorf("failed to query completed amounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		calculated = calculated.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating amount rows: %w", err)
	}

	if calculated.Equal(user.Balance) {
		return nil
	}

	zap.L().Warn("Balance drift detected, reconciling",
		zap.String("user_id", userId),
		zap.String("stored_balance", user.Balance.String()),
		zap.String("calculated_balance", calculated.String()))

	_, err = s.db.ExecContext(ctx, `UPDATE users SET balance = ?, version = version + 1 WHERE id = ?`,
		calculated.String(), userId)
	if err != nil {
		return fmt.Errorf("failed to reconcile balance: %w", err)
	}
	return nil
}
