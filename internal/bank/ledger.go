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

package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const depositClearanceDelay = 48 * time.Hour

// TransferParams carries one outgoing transfer request.
type TransferParams struct {
	Pin              string
	Amount           decimal.Decimal
	RecipientName    string
	RecipientAccount string
	RecipientBank    string
	Note             string
}

// PayBillParams carries one bill payment request.
type PayBillParams struct {
	Pin             string
	Amount          decimal.Decimal
	BillerName      string
	Category        string
	ReferenceNumber string
}

// DepositParams carries one incoming deposit declaration.
type DepositParams struct {
	Amount decimal.Decimal
	Source string
	Note   string
}

// Transfer debits the account and records a completed transfer entry.
// The PIN gate runs first; the debit and the ledger entry land atomically.
func (s *Service) Transfer(ctx context.Context, tokenString string, params TransferParams) (*models.Transaction, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := s.lockUser(user.Id)
	defer unlock()

	// Re-read under the lock so the PIN state and balance are current.
	user, err = s.store.GetUserById(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPin(ctx, user, params.Pin); err != nil {
		return nil, err
	}
	if params.Amount.GreaterThan(user.Balance) {
		return nil, ErrInsufficientFunds
	}

	transaction, err := s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:           user.Id,
		Type:             models.TransactionTypeTransfer,
		Subtype:          "outgoing",
		Description:      fmt.Sprintf("Transfer to %s", params.RecipientName),
		Amount:           params.Amount.Neg(),
		Currency:         user.Currency,
		RecipientName:    params.RecipientName,
		RecipientAccount: params.RecipientAccount,
		RecipientBank:    params.RecipientBank,
		Note:             params.Note,
		Status:           models.TransactionStatusCompleted,
		Reference:        newReference(),
		ApplyToBalance:   true,
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	s.bus.Emit("transaction", map[string]any{
		"userId":      user.Id,
		"transaction": transaction,
		"newBalance":  transaction.BalanceAfter,
	})
	s.mirrorQ.TransactionCreated(user.Id, *transaction)
	s.mirrorQ.UserUpdated(user.Id, map[string]any{"balance": transaction.BalanceAfter})

	zap.L().Info("Transfer completed",
		zap.String("user_id", user.Id),
		zap.String("transaction_id", transaction.Id),
		zap.String("amount", params.Amount.String()),
		zap.String("recipient", params.RecipientName))
	return transaction, nil
}

// PayBill debits the account against a biller from the directory.
func (s *Service) PayBill(ctx context.Context, tokenString string, params PayBillParams) (*models.Transaction, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !s.knownBillerCategory(params.Category) {
		return nil, ErrUnknownBillerCategory
	}

	unlock := s.lockUser(user.Id)
	defer unlock()

	user, err = s.store.GetUserById(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPin(ctx, user, params.Pin); err != nil {
		return nil, err
	}
	if params.Amount.GreaterThan(user.Balance) {
		return nil, ErrInsufficientFunds
	}

	transaction, err := s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:          user.Id,
		Type:            models.TransactionTypePayment,
		Subtype:         "bill",
		Description:     fmt.Sprintf("Bill payment to %s", params.BillerName),
		Amount:          params.Amount.Neg(),
		Currency:        user.Currency,
		RecipientName:   params.BillerName,
		Category:        params.Category,
		ReferenceNumber: params.ReferenceNumber,
		Status:          models.TransactionStatusCompleted,
		Reference:       newReference(),
		ApplyToBalance:  true,
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	s.bus.Emit("transaction", map[string]any{
		"userId":      user.Id,
		"transaction": transaction,
		"newBalance":  transaction.BalanceAfter,
	})
	s.mirrorQ.TransactionCreated(user.Id, *transaction)
	s.mirrorQ.UserUpdated(user.Id, map[string]any{"balance": transaction.BalanceAfter})

	zap.L().Info("Bill payment completed",
		zap.String("user_id", user.Id),
		zap.String("transaction_id", transaction.Id),
		zap.String("amount", params.Amount.String()),
		zap.String("biller", params.BillerName))
	return transaction, nil
}

// SubmitDeposit records a pending incoming deposit. The balance is untouched
// until the deposit is cleared; no PIN is required for incoming funds.
func (s *Service) SubmitDeposit(ctx context.Context, tokenString string, params DepositParams) (*models.Transaction, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := s.lockUser(user.Id)
	defer unlock()

	clearance := time.Now().Add(depositClearanceDelay)
	transaction, err := s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:             user.Id,
		Type:               models.TransactionTypeDeposit,
		Subtype:            "incoming",
		Description:        fmt.Sprintf("Deposit from %s", params.Source),
		Amount:             params.Amount,
		Currency:           user.Currency,
		RecipientName:      params.Source,
		Note:               params.Note,
		Status:             models.TransactionStatusPending,
		Reference:          newReference(),
		EstimatedClearance: &clearance,
		ApplyToBalance:     false,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Emit("deposit_submitted", map[string]any{
		"userId":      user.Id,
		"transaction": transaction,
		"newBalance":  transaction.BalanceAfter,
	})
	s.mirrorQ.TransactionCreated(user.Id, *transaction)

	zap.L().Info("Deposit submitted",
		zap.String("user_id", user.Id),
		zap.String("transaction_id", transaction.Id),
		zap.String("amount", params.Amount.String()),
		zap.Time("estimated_clearance", clearance))
	return transaction, nil
}

// ClearDeposit settles a pending deposit: the entry flips to completed and the
// balance is credited in the same store transaction. Operator surface only.
func (s *Service) ClearDeposit(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	unlock := s.lockUser(userId)
	defer unlock()

	transaction, err := s.store.SettleDeposit(ctx, userId, transactionId)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTransactionNotFound):
			return nil, ErrTransactionNotFound
		case errors.Is(err, store.ErrDepositNotPending):
			return nil, ErrDepositNotPending
		}
		return nil, err
	}

	s.bus.Emit("deposit_cleared", map[string]any{
		"userId":      userId,
		"transaction": transaction,
		"newBalance":  transaction.BalanceAfter,
	})
	s.mirrorQ.UserUpdated(userId, map[string]any{"balance": transaction.BalanceAfter})

	zap.L().Info("Deposit cleared",
		zap.String("user_id", userId),
		zap.String("transaction_id", transaction.Id),
		zap.String("amount", transaction.Amount.String()))
	return transaction, nil
}

// Transactions returns the caller's history, newest first.
func (s *Service) Transactions(ctx context.Context, tokenString string, limit, offset int) ([]models.Transaction, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > transactionHistoryLimit {
		limit = transactionHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetTransactions(ctx, user.Id, limit, offset)
}

// Billers returns the biller directory loaded at startup.
func (s *Service) Billers() []models.Biller {
	return s.billers
}

// knownBillerCategory validates against the directory; with no directory
// configured every category passes.
func (s *Service) knownBillerCategory(category string) bool {
	if len(s.billers) == 0 {
		return true
	}
	for _, b := range s.billers {
		if b.Category == category {
			return true
		}
	}
	return false
}
