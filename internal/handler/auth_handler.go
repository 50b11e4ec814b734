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
)

type AuthHandler struct {
	bankService *bank.Service
}

func NewAuthHandler(bankService *bank.Service) *AuthHandler {
	return &AuthHandler{bankService: bankService}
}

type SignupRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Pin         string `json:"pin"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetRequestBody struct {
	Email string `json:"email"`
}

type ResetCompleteBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Signup handles account creation
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Pin == "" {
		sendJSONError(w, "fullName, email, password and pin are required", http.StatusBadRequest)
		return
	}

	result, err := h.bankService.CreateAccount(r.Context(), bank.CreateAccountParams{
		FullName:    req.FullName,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Password:    req.Password,
		Pin:         req.Pin,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, map[string]any{
		"user":  result.User,
		"token": result.SessionToken,
	})
}

// Login handles authentication and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.bankService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		sendBankError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"user":  result.User,
		"token": result.SessionToken,
	})
}

// Logout revokes the caller's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		sendJSONError(w, "No token provided", http.StatusUnauthorized)
		return
	}

	if err := h.bankService.Logout(r.Context(), token); err != nil {
		sendBankError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the caller's sanitized account view
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.bankService.CurrentUser(r.Context(), middleware.ExtractToken(r))
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// RequestReset issues a password recovery token
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		sendJSONError(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.bankService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		sendBankError(w, err)
		return
	}

	// Always the same answer, known email or not.
	sendJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset code has been sent",
	})
}

// ValidateReset checks whether a recovery token is still usable
func (h *AuthHandler) ValidateReset(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		sendJSONError(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.bankService.ValidateResetToken(r.Context(), token); err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Token is valid"})
}

// CompleteReset consumes a recovery token and installs a new password
func (h *AuthHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req ResetCompleteBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		sendJSONError(w, "token and newPassword are required", http.StatusBadRequest)
		return
	}

	if err := h.bankService.ResetPasswordWithToken(r.Context(), req.Token, req.NewPassword); err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}
