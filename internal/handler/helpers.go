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

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vanstra-bank-go/internal/bank"

	"go.uber.org/zap"
)

// sendJSON writes a success envelope with the payload under "data".
func sendJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

// sendJSONError writes a failure envelope with a client-safe message.
func sendJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}

// sendBankError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a generic 500 so internals never leak to clients.
func sendBankError(w http.ResponseWriter, err error) {
	var locked *bank.AccountLockedError
	if errors.As(err, &locked) {
		sendJSONError(w, locked.Error(), http.StatusForbidden)
		return
	}

	switch {
	case errors.Is(err, bank.ErrNotAuthenticated):
		sendJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, bank.ErrBadCredentials),
		errors.Is(err, bank.ErrIncorrectPin),
		errors.Is(err, bank.ErrWrongPassword):
		sendJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, bank.ErrAccountDisabled),
		errors.Is(err, bank.ErrTooManyAttempts):
		sendJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, bank.ErrEmailTaken),
		errors.Is(err, bank.ErrDepositNotPending):
		sendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, bank.ErrWeakPassword),
		errors.Is(err, bank.ErrInvalidPin),
		errors.Is(err, bank.ErrCredentialReuse),
		errors.Is(err, bank.ErrInvalidAmount),
		errors.Is(err, bank.ErrUnknownBillerCategory),
		errors.Is(err, bank.ErrInsufficientFunds),
		errors.Is(err, bank.ErrInvalidResetToken):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, bank.ErrUserNotFound),
		errors.Is(err, bank.ErrTransactionNotFound):
		sendJSONError(w, err.Error(), http.StatusNotFound)
	default:
		zap.L().Error("Unhandled service error", zap.Error(err))
		sendJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
