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
	"strings"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/middleware"
)

type ChatHandler struct {
	bankService *bank.Service
}

func NewChatHandler(bankService *bank.Service) *ChatHandler {
	return &ChatHandler{bankService: bankService}
}

type ChatRequest struct {
	Message string `json:"message"`
}

// Send appends a support chat message from the account holder
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		sendJSONError(w, "message is required", http.StatusBadRequest)
		return
	}

	messages, err := h.bankService.SendChatMessage(r.Context(), middleware.ExtractToken(r), req.Message)
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, messages)
}

// History returns the caller's chat log, oldest first
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.bankService.ChatMessages(r.Context(), middleware.ExtractToken(r))
	if err != nil {
		sendBankError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, messages)
}
