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
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	bankService *bank.Service
	adminToken  string
}

func NewAdminHandler(bankService *bank.Service, adminToken string) *AdminHandler {
	return &AdminHandler{bankService: bankService, adminToken: adminToken}
}

// RequireAdmin gates the operator surface behind a shared token.
// With no token configured the surface is disabled entirely.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			sendJSONError(w, "admin surface disabled", http.StatusNotFound)
			return
		}
		token := middleware.ExtractToken(r)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			sendJSONError(w, "not authorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Users lists every account in the admin view
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.bankService.AllUsers(r.Context())
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, users)
}

// Events returns the audit log, newest first
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.bankService.AdminEvents(r.Context())
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, events)
}

// Emails returns every locally recorded outbound notification
func (h *AdminHandler) Emails(w http.ResponseWriter, r *http.Request) {
	emails, err := h.bankService.SentEmails(r.Context())
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, emails)
}

// UserTransactions returns one account's ledger
func (h *AdminHandler) UserTransactions(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.bankService.UserTransactions(r.Context(), userId, limit, offset)
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, transactions)
}

// ClearDeposit settles one pending deposit
func (h *AdminHandler) ClearDeposit(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")
	transactionId := chi.URLParam(r, "transactionId")

	txn, err := h.bankService.ClearDeposit(r.Context(), userId, transactionId)
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, txn)
}

type AdminReplyRequest struct {
	Message string `json:"message"`
}

// Reply appends an operator message to one account's support chat
func (h *AdminHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req AdminReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		sendJSONError(w, "message is required", http.StatusBadRequest)
		return
	}

	msg, err := h.bankService.AdminReply(r.Context(), chi.URLParam(r, "userId"), req.Message)
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, msg)
}

// UserChat returns one account's support chat log
func (h *AdminHandler) UserChat(w http.ResponseWriter, r *http.Request) {
	messages, err := h.bankService.UserChatMessages(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, messages)
}

// Reconcile recomputes one account's balance from its ledger
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")
	if err := h.bankService.Reconcile(r.Context(), userId); err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Reconciliation complete"})
}
