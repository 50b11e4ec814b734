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
	"math/rand/v2"
	"regexp"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// CreateAccountParams carries the signup form fields.
type CreateAccountParams struct {
	FullName    string
	Email       string
	DateOfBirth string
	Phone       string
	Password    string
	Pin         string
}

// AuthResult is returned by CreateAccount and Login: the sanitized account
// view plus an open session token.
type AuthResult struct {
	User         models.ClientUser
	SessionToken string
}

// CreateAccount validates the signup data, provisions the account with the
// starting balance, and opens a session for the new user.
func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (*AuthResult, error) {
	// Uniqueness is reported before any credential complaint.
	if _, err := s.store.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}
	if len(params.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if !pinPattern.MatchString(params.Pin) {
		return nil, ErrInvalidPin
	}
	if params.Password == params.Pin {
		return nil, ErrCredentialReuse
	}

	passwordHash, err := hashCredential(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	pinHash, err := hashCredential(params.Pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := &models.User{
		Id:            "USR-" + uuid.NewString(),
		FullName:      params.FullName,
		Email:         params.Email,
		DateOfBirth:   params.DateOfBirth,
		Phone:         params.Phone,
		AccountNumber: newAccountNumber(),
		AccountType:   "Premium Checking",
		Tier:          "unlimited",
		Medal:         "gold",
		Balance:       s.startingBalance,
		Currency:      s.currency,
		Status:        models.UserStatusActive,
		CreatedAt:     time.Now(),
		PasswordHash:  passwordHash,
		PinHash:       pinHash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.bus.Emit("user_created", map[string]any{"userId": user.Id, "user": user.SanitizeForAdmin()})
	s.mailer.Send(ctx, user.Email, "Welcome to Vanstra Capital",
		fmt.Sprintf("Hi %s,\n\nWelcome to Vanstra Capital. Your account has been created successfully.", user.FullName), nil)
	s.mirrorQ.UserCreated(user.SanitizeForAdmin())

	token, err := s.openSession(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user.SanitizeForClient(nil), SessionToken: token}, nil
}

// Login authenticates by email and password and opens a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same error as a wrong password so accounts cannot be enumerated.
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if user.Status == models.UserStatusLocked {
		return nil, ErrAccountDisabled
	}

	if !verifyCredential(user.PasswordHash, password) {
		s.bus.Emit("login_failed", map[string]any{"email": email, "reason": "invalid_password"})
		return nil, ErrBadCredentials
	}

	now := time.Now()
	if err := s.store.SetOnline(ctx, user.Id, true, &now); err != nil {
		return nil, err
	}
	// A successful login clears the PIN failure streak.
	if err := s.store.UpdatePinState(ctx, user.Id, 0, user.LockedUntil); err != nil {
		return nil, err
	}
	user.IsOnline = true
	user.LastLogin = &now
	user.FailedPinAttempts = 0

	token, err := s.openSession(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	s.bus.Emit("user_login", map[string]any{"userId": user.Id, "user": user.SanitizeForAdmin()})
	s.mailer.Send(ctx, user.Email, "Sign-in notification",
		fmt.Sprintf("Hi %s,\n\nWe noticed a sign-in to your Vanstra account. If this wasn't you, contact support immediately.", user.FullName), nil)
	s.mirrorQ.UserUpdated(user.Id, map[string]any{
		"isOnline":  true,
		"lastLogin": now,
		"balance":   user.Balance,
	})

	transactions, err := s.store.GetTransactions(ctx, user.Id, transactionHistoryLimit, 0)
	if err != nil {
		zap.L().Warn("Failed to load transaction history", zap.String("user_id", user.Id), zap.Error(err))
	}

	return &AuthResult{User: user.SanitizeForClient(transactions), SessionToken: token}, nil
}

func newAccountNumber() string {
	return fmt.Sprintf("DE%d", 1000000000+rand.Int64N(9000000000))
}
