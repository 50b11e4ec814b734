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
	"strings"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var balanceStr string
	var dateOfBirth, phone, avatar sql.NullString
	var lastLogin, lockedUntil sql.NullTime

	err := row.Scan(&user.Id, &user.FullName, &user.Email, &dateOfBirth, &phone,
		&user.AccountNumber, &user.AccountType, &user.Tier, &user.Medal,
		&balanceStr, &user.Currency, &user.Status, &user.CreatedAt, &lastLogin,
		&user.IsOnline, &avatar, &user.PasswordHash, &user.PinHash,
		&user.FailedPinAttempts, &lockedUntil)
	if err != nil {
		return nil, err
	}

	user.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	user.DateOfBirth = dateOfBirth.String
	user.Phone = phone.String
	user.Avatar = avatar.String
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}

	return &user, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func isEmailConflict(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "users.email")
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	zap.L().Info("Creating user",
		zap.String("id", user.Id),
		zap.String("email", user.Email),
		zap.String("account_number", user.AccountNumber))

	_, err := s.db.ExecContext(ctx, queryInsertUser,
		user.Id, user.FullName, user.Email, user.DateOfBirth, user.Phone,
		user.AccountNumber, user.AccountType, user.Tier, user.Medal,
		user.Balance.String(), user.Currency, user.Status, user.CreatedAt,
		nullableTime(user.LastLogin), user.IsOnline, user.Avatar,
		user.PasswordHash, user.PinHash, user.FailedPinAttempts,
		nullableTime(user.LockedUntil))
	if err != nil {
		// The UNIQUE index on email is the authority on uniqueness; a
		// duplicate id still surfaces as a generic insert failure.
		if isEmailConflict(err) {
			return store.ErrEmailTaken
		}
		zap.L().Error("Failed to insert user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("unable to insert user: %w", err)
	}

	zap.L().Info("User created successfully", zap.String("id", user.Id), zap.String("email", user.Email))
	return nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}
	return user, nil
}

func (s *Service) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAllUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Service) SetOnline(ctx context.Context, userId string, online bool, lastLogin *time.Time) error {
	return s.execForUser(ctx, querySetOnline, online, nullableTime(lastLogin), userId)
}

func (s *Service) UpdatePinState(ctx context.Context, userId string, failedAttempts int, lockedUntil *time.Time) error {
	return s.execForUser(ctx, queryUpdatePinState, failedAttempts, nullableTime(lockedUntil), userId)
}

func (s *Service) UpdateProfile(ctx context.Context, userId string, update store.ProfileUpdate) error {
	return s.execForUser(ctx, queryUpdateProfile,
		update.FullName, update.FullName,
		update.Email, update.Email,
		update.Phone, update.Phone,
		userId)
}

func (s *Service) UpdateAvatar(ctx context.Context, userId, avatar string) error {
	return s.execForUser(ctx, queryUpdateAvatar, avatar, userId)
}

func (s *Service) UpdateCredentials(ctx context.Context, userId string, update store.CredentialUpdate) error {
	return s.execForUser(ctx, queryUpdateCredentials,
		update.PasswordHash, update.PasswordHash,
		update.PinHash, update.PinHash,
		userId)
}

// execForUser runs an update whose last argument is the user id and maps a
// zero-row result to ErrUserNotFound.
func (s *Service) execForUser(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("unable to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
