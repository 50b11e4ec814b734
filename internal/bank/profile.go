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

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"go.uber.org/zap"
)

// SecurityUpdateParams carries credential changes. The current password
// authorizes the change; empty new values leave that credential untouched.
type SecurityUpdateParams struct {
	CurrentPassword string
	NewPassword     string
	NewPin          string
}

// UpdateProfile applies partial profile changes and returns the fresh view.
func (s *Service) UpdateProfile(ctx context.Context, tokenString string, update store.ProfileUpdate) (models.ClientUser, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return models.ClientUser{}, err
	}

	if update.Email != "" && update.Email != user.Email {
		if _, err := s.store.GetUserByEmail(ctx, update.Email); err == nil {
			return models.ClientUser{}, ErrEmailTaken
		} else if !errors.Is(err, store.ErrUserNotFound) {
			return models.ClientUser{}, err
		}
	}

	if err := s.store.UpdateProfile(ctx, user.Id, update); err != nil {
		return models.ClientUser{}, err
	}
	user, err = s.store.GetUserById(ctx, user.Id)
	if err != nil {
		return models.ClientUser{}, err
	}

	s.bus.Emit("profile_updated", map[string]any{"userId": user.Id, "user": user.SanitizeForAdmin()})
	s.mirrorQ.UserUpdated(user.Id, map[string]any{
		"fullName": user.FullName,
		"email":    user.Email,
		"phone":    user.Phone,
	})

	transactions, err := s.store.GetTransactions(ctx, user.Id, transactionHistoryLimit, 0)
	if err != nil {
		zap.L().Warn("Failed to load transaction history", zap.String("user_id", user.Id), zap.Error(err))
	}
	return user.SanitizeForClient(transactions), nil
}

// UpdateAvatar replaces the account's avatar image reference.
func (s *Service) UpdateAvatar(ctx context.Context, tokenString, avatar string) error {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if err := s.store.UpdateAvatar(ctx, user.Id, avatar); err != nil {
		return err
	}
	s.bus.Emit("avatar_updated", map[string]any{"userId": user.Id})
	s.mirrorQ.UserUpdated(user.Id, map[string]any{"avatar": avatar})
	return nil
}

// UpdateSecuritySettings rotates the password and/or PIN after verifying the
// current password. The password and PIN must stay distinct from each other.
func (s *Service) UpdateSecuritySettings(ctx context.Context, tokenString string, params SecurityUpdateParams) error {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if !verifyCredential(user.PasswordHash, params.CurrentPassword) {
		return ErrWrongPassword
	}

	var update store.CredentialUpdate

	if params.NewPassword != "" {
		if len(params.NewPassword) < 8 {
			return ErrWeakPassword
		}
		newPin := params.NewPin
		if newPin == "" && verifyCredential(user.PinHash, params.NewPassword) {
			return ErrCredentialReuse
		}
		if newPin != "" && params.NewPassword == newPin {
			return ErrCredentialReuse
		}
		hash, err := hashCredential(params.NewPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = hash
	}

	if params.NewPin != "" {
		if !pinPattern.MatchString(params.NewPin) {
			return ErrInvalidPin
		}
		if params.NewPassword == "" && verifyCredential(user.PasswordHash, params.NewPin) {
			return ErrCredentialReuse
		}
		hash, err := hashCredential(params.NewPin)
		if err != nil {
			return fmt.Errorf("failed to hash PIN: %w", err)
		}
		update.PinHash = hash
	}

	if update.PasswordHash == "" && update.PinHash == "" {
		return nil
	}

	if err := s.store.UpdateCredentials(ctx, user.Id, update); err != nil {
		return err
	}

	s.bus.Emit("security_updated", map[string]any{"userId": user.Id})
	s.mailer.Send(ctx, user.Email, "Security settings updated",
		fmt.Sprintf("Hi %s,\n\nYour Vanstra security settings were just updated. If this wasn't you, contact support immediately.", user.FullName), nil)

	zap.L().Info("Security settings updated", zap.String("user_id", user.Id))
	return nil
}
