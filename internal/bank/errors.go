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
	"errors"
	"fmt"
)

// Domain errors returned verbatim to callers. Credential and lockout errors
// are terminal for the calling operation; mirror and mail failures are never
// surfaced here.
var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrWeakPassword          = errors.New("password must be at least 8 characters")
	ErrInvalidPin            = errors.New("PIN must be exactly 4 digits")
	ErrCredentialReuse       = errors.New("login password cannot be the same as transaction PIN")
	ErrBadCredentials        = errors.New("invalid email or password")
	ErrAccountDisabled       = errors.New("account locked, contact support")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrUserNotFound          = errors.New("user not found")
	ErrIncorrectPin          = errors.New("incorrect PIN, please try again")
	ErrTooManyAttempts       = errors.New("too many failed attempts, account temporarily locked")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrUnknownBillerCategory = errors.New("unknown biller category")
	ErrWrongPassword         = errors.New("current password is incorrect")
	ErrInvalidResetToken     = errors.New("invalid or expired reset token")
	ErrDepositNotPending     = errors.New("deposit is not pending")
	ErrTransactionNotFound   = errors.New("transaction not found")
)

// AccountLockedError reports a PIN lockout that is still in force.
type AccountLockedError struct {
	MinutesRemaining int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.MinutesRemaining)
}
