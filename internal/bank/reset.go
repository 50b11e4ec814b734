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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resetTokenTTL = time.Hour

// RequestPasswordReset issues a single-use recovery token and mails it to the
// account holder. It reports success whether or not the email is registered,
// so the endpoint cannot be used to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			zap.L().Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	now := time.Now()
	req := &models.PasswordResetRequest{
		Token:     uuid.NewString(),
		UserId:    user.Id,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(resetTokenTTL),
	}
	if err := s.store.CreateResetRequest(ctx, req); err != nil {
		return err
	}

	s.bus.Emit("password_reset_requested", map[string]any{"userId": user.Id})
	s.mailer.Send(ctx, user.Email, "Reset your Vanstra password",
		fmt.Sprintf("Hi %s,\n\nUse the code below to reset your password. It expires in one hour.\n\n%s", user.FullName, req.Token),
		map[string]string{"reset_token": req.Token})
	return nil
}

// ValidateResetToken reports whether a recovery token is still usable.
// Expired tokens are removed when observed.
func (s *Service) ValidateResetToken(ctx context.Context, token string) error {
	req, err := s.store.GetResetRequest(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if time.Now().After(req.ExpiresAt) {
		if err := s.store.DeleteResetRequest(ctx, token); err != nil {
			zap.L().Warn("Failed to remove expired reset token", zap.Error(err))
		}
		return ErrInvalidResetToken
	}
	return nil
}

// ResetPasswordWithToken consumes a recovery token and installs a new
// password. The token is single use: it is deleted on success.
func (s *Service) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	req, err := s.store.GetResetRequest(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if time.Now().After(req.ExpiresAt) {
		if err := s.store.DeleteResetRequest(ctx, token); err != nil {
			zap.L().Warn("Failed to remove expired reset token", zap.Error(err))
		}
		return ErrInvalidResetToken
	}

	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	user, err := s.store.GetUserById(ctx, req.UserId)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if verifyCredential(user.PinHash, newPassword) {
		return ErrCredentialReuse
	}

	passwordHash, err := hashCredential(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdateCredentials(ctx, user.Id, store.CredentialUpdate{PasswordHash: passwordHash}); err != nil {
		return err
	}
	if err := s.store.DeleteResetRequest(ctx, token); err != nil {
		zap.L().Warn("Failed to remove used reset token", zap.Error(err))
	}

	s.bus.Emit("password_reset_completed", map[string]any{"userId": user.Id})
	s.mailer.Send(ctx, user.Email, "Your password was changed",
		fmt.Sprintf("Hi %s,\n\nYour Vanstra password was just changed. If this wasn't you, contact support immediately.", user.FullName), nil)

	zap.L().Info("Password reset completed", zap.String("user_id", user.Id))
	return nil
}
