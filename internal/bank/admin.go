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

	"vanstra-bank-go/internal/models"
)

// AllUsers returns the admin view of every account. The local store is the
// only source consulted; the remote mirror is never read back.
func (s *Service) AllUsers(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.AdminUser, 0, len(users))
	for i := range users {
		views = append(views, users[i].SanitizeForAdmin())
	}
	return views, nil
}

// AdminEvents returns the audit log, newest first, capped at the store limit.
func (s *Service) AdminEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.GetEvents(ctx)
}

// SentEmails returns every locally recorded outbound notification.
func (s *Service) SentEmails(ctx context.Context) ([]models.Email, error) {
	return s.store.GetSentEmails(ctx)
}

// UserTransactions returns one account's ledger for the admin surface.
func (s *Service) UserTransactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > transactionHistoryLimit {
		limit = transactionHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetTransactions(ctx, userId, limit, offset)
}

// Reconcile recomputes one account's balance from its ledger entries and
// corrects any drift.
func (s *Service) Reconcile(ctx context.Context, userId string) error {
	unlock := s.lockUser(userId)
	defer unlock()
	return s.store.ReconcileBalance(ctx, userId)
}
