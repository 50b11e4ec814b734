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

package store

import (
	"context"
	"errors"
	"time"

	"vanstra-bank-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailTaken             = errors.New("email already registered")
	ErrSessionNotFound        = errors.New("session not found")
	ErrResetTokenNotFound     = errors.New("reset token not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrDepositNotPending      = errors.New("deposit is not pending")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// ApplyTransactionParams captures one funds-moving operation: an immutable
// ledger entry plus, when ApplyToBalance is set, the balance mutation it
// implies. Both are written atomically or not at all.
type ApplyTransactionParams struct {
	UserId             string
	Type               string
	Subtype            string
	Description        string
	Amount             decimal.Decimal // signed: negative = debit, positive = credit
	Currency           string
	RecipientName      string
	RecipientAccount   string
	RecipientBank      string
	Category           string
	ReferenceNumber    string
	Note               string
	Status             string
	Reference          string
	EstimatedClearance *time.Time
	ApplyToBalance     bool
}

// ProfileUpdate carries optional profile field changes; empty fields are left untouched.
type ProfileUpdate struct {
	FullName string
	Email    string
	Phone    string
}

// CredentialUpdate carries optional credential hash changes; empty fields are left untouched.
type CredentialUpdate struct {
	PasswordHash string
	PinHash      string
}

// BankStore defines the contract the banking core depends on.
// database.Service implements it over SQLite.
type BankStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, user *models.User) error
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	SetOnline(ctx context.Context, userId string, online bool, lastLogin *time.Time) error
	UpdatePinState(ctx context.Context, userId string, failedAttempts int, lockedUntil *time.Time) error
	UpdateProfile(ctx context.Context, userId string, update ProfileUpdate) error
	UpdateAvatar(ctx context.Context, userId, avatar string) error
	UpdateCredentials(ctx context.Context, userId string, update CredentialUpdate) error

	// --- Sessions ---
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, tokenId string) (*models.Session, error)
	DeleteSession(ctx context.Context, tokenId string) error

	// --- Password reset ---
	CreateResetRequest(ctx context.Context, req *models.PasswordResetRequest) error
	GetResetRequest(ctx context.Context, token string) (*models.PasswordResetRequest, error)
	DeleteResetRequest(ctx context.Context, token string) error

	// --- Ledger ---
	ApplyTransaction(ctx context.Context, params ApplyTransactionParams) (*models.Transaction, error)
	SettleDeposit(ctx context.Context, userId, transactionId string) (*models.Transaction, error)
	GetTransactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)
	ReconcileBalance(ctx context.Context, userId string) error

	// --- Admin event log ---
	AppendEvent(ctx context.Context, name string, payload []byte) error
	GetEvents(ctx context.Context) ([]models.Event, error)

	// --- Support chat ---
	AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatMessages(ctx context.Context, userId string) ([]models.ChatMessage, error)
	HasUserChatMessage(ctx context.Context, userId string) (bool, error)

	// --- Sent mail ---
	RecordEmail(ctx context.Context, email *models.Email) error
	GetSentEmails(ctx context.Context) ([]models.Email, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
