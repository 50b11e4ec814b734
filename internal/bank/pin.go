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
	"math"
	"time"

	"vanstra-bank-go/internal/models"

	"go.uber.org/zap"
)

// verifyPin enforces the PIN failure policy on every funds-moving operation:
// a locked account rejects even a correct PIN until the lock expires, and the
// configured failure count triggers a fresh lock with the counter reset.
func (s *Service) verifyPin(ctx context.Context, user *models.User, pin string) error {
	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		minutes := int(math.Ceil(user.LockedUntil.Sub(now).Minutes()))
		return &AccountLockedError{MinutesRemaining: minutes}
	}

	if verifyCredential(user.PinHash, pin) {
		if user.FailedPinAttempts != 0 || user.LockedUntil != nil {
			if err := s.store.UpdatePinState(ctx, user.Id, 0, nil); err != nil {
				return err
			}
			user.FailedPinAttempts = 0
			user.LockedUntil = nil
		}
		return nil
	}

	attempts := user.FailedPinAttempts + 1
	if attempts >= s.pin.MaxAttempts {
		lockedUntil := now.Add(s.pin.LockoutDuration)
		if err := s.store.UpdatePinState(ctx, user.Id, 0, &lockedUntil); err != nil {
			return err
		}
		user.FailedPinAttempts = 0
		user.LockedUntil = &lockedUntil

		zap.L().Warn("Account locked after repeated PIN failures",
			zap.String("user_id", user.Id),
			zap.Time("locked_until", lockedUntil))
		s.bus.Emit("pin_failed", map[string]any{
			"userId":   user.Id,
			"attempts": attempts,
			"locked":   true,
		})
		return ErrTooManyAttempts
	}

	if err := s.store.UpdatePinState(ctx, user.Id, attempts, user.LockedUntil); err != nil {
		return err
	}
	user.FailedPinAttempts = attempts

	s.bus.Emit("pin_failed", map[string]any{
		"userId":   user.Id,
		"attempts": attempts,
		"locked":   false,
	})
	return ErrIncorrectPin
}
