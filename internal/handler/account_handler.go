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
	"net/http"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/middleware"
	"vanstra-bank-go/internal/store"
)

type AccountHandler struct {
	bankService *bank.Service
}

func NewAccountHandler(bankService *bank.Service) *AccountHandler {
	return &AccountHandler{bankService: bankService}
}

type ProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

type SecurityRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	NewPin          string `json:"newPin"`
}

// UpdateProfile applies partial profile changes
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.bankService.UpdateProfile(r.Context(), middleware.ExtractToken(r), store.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// UpdateAvatar replaces the account avatar
func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req AvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Avatar == "" {
		sendJSONError(w, "avatar is required", http.StatusBadRequest)
		return
	}

	if err := h.bankService.UpdateAvatar(r.Context(), middleware.ExtractToken(r), req.Avatar); err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Avatar updated"})
}

// UpdateSecurity rotates the password and/or PIN
func (h *AccountHandler) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var req SecurityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" {
		sendJSONError(w, "currentPassword is required", http.StatusBadRequest)
		return
	}

	err := h.bankService.UpdateSecuritySettings(r.Context(), middleware.ExtractToken(r), bank.SecurityUpdateParams{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		NewPin:          req.NewPin,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Security settings updated"})
}
