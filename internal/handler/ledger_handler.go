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
	"strconv"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/middleware"

	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	bankService *bank.Service
}

func NewLedgerHandler(bankService *bank.Service) *LedgerHandler {
	return &LedgerHandler{bankService: bankService}
}

type TransferRequest struct {
	Pin              string          `json:"pin"`
	Amount           decimal.Decimal `json:"amount"`
	RecipientName    string          `json:"recipientName"`
	RecipientAccount string          `json:"recipientAccount"`
	RecipientBank    string          `json:"recipientBank"`
	Note             string          `json:"note"`
}

type BillPayRequest struct {
	Pin             string          `json:"pin"`
	Amount          decimal.Decimal `json:"amount"`
	BillerName      string          `json:"billerName"`
	Category        string          `json:"category"`
	ReferenceNumber string          `json:"referenceNumber"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
	Note   string          `json:"note"`
}

// Transfer debits the account towards an external recipient
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RecipientName == "" || req.RecipientAccount == "" {
		sendJSONError(w, "recipientName and recipientAccount are required", http.StatusBadRequest)
		return
	}

	txn, err := h.bankService.Transfer(r.Context(), middleware.ExtractToken(r), bank.TransferParams{
		Pin:              req.Pin,
		Amount:           req.Amount,
		RecipientName:    req.RecipientName,
		RecipientAccount: req.RecipientAccount,
		RecipientBank:    req.RecipientBank,
		Note:             req.Note,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, txn)
}

// PayBill debits the account against a biller from the directory
func (h *LedgerHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req BillPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.BillerName == "" || req.Category == "" {
		sendJSONError(w, "billerName and category are required", http.StatusBadRequest)
		return
	}

	txn, err := h.bankService.PayBill(r.Context(), middleware.ExtractToken(r), bank.PayBillParams{
		Pin:             req.Pin,
		Amount:          req.Amount,
		BillerName:      req.BillerName,
		Category:        req.Category,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, txn)
}

// Deposit records a pending incoming deposit
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		sendJSONError(w, "source is required", http.StatusBadRequest)
		return
	}

	txn, err := h.bankService.SubmitDeposit(r.Context(), middleware.ExtractToken(r), bank.DepositParams{
		Amount: req.Amount,
		Source: req.Source,
		Note:   req.Note,
	})
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, txn)
}

// Transactions lists the caller's history, newest first
func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.bankService.Transactions(r.Context(), middleware.ExtractToken(r), limit, offset)
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, transactions)
}

// Billers returns the biller directory
func (h *LedgerHandler) Billers(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.bankService.Billers())
}
