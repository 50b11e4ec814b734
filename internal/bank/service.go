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
	"fmt"
	"strings"
	"sync"

	"vanstra-bank-go/internal/events"
	"vanstra-bank-go/internal/mailer"
	"vanstra-bank-go/internal/mirror"
	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transactionHistoryLimit bounds the history attached to client user views.
const transactionHistoryLimit = 50

// Service is the banking core: identity and sessions, the transaction PIN
// gate, the ledger, and the supporting admin/chat surfaces. All state lives
// in the injected store; the event bus, mail sender, and mirror queue are
// notified after local state has been committed.
type Service struct {
	store   store.BankStore
	bus     *events.Bus
	mailer  *mailer.Sender
	mirrorQ *mirror.Queue

	session models.SessionConfig
	pin     models.PinConfig

	startingBalance decimal.Decimal
	currency        string
	billers         []models.Biller

	// Per-user locks serialize funds-moving operations so a verify-then-debit
	// sequence never interleaves with another operation on the same account.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(bankStore store.BankStore, bus *events.Bus, sender *mailer.Sender, mirrorQ *mirror.Queue, cfg *models.Config, billers []models.Biller) (*Service, error) {
	startingBalance, err := decimal.NewFromString(cfg.Bank.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid starting balance %q: %w", cfg.Bank.StartingBalance, err)
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if cfg.Pin.MaxAttempts <= 0 {
		return nil, fmt.Errorf("pin max attempts must be positive, got %d", cfg.Pin.MaxAttempts)
	}

	return &Service{
		store:           bankStore,
		bus:             bus,
		mailer:          sender,
		mirrorQ:         mirrorQ,
		session:         cfg.Session,
		pin:             cfg.Pin,
		startingBalance: startingBalance,
		currency:        cfg.Bank.Currency,
		billers:         billers,
		locks:           make(map[string]*sync.Mutex),
	}, nil
}

// lockUser acquires the per-user mutex and returns its release func.
func (s *Service) lockUser(userId string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[userId]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userId] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// newReference produces an opaque 8-character reference code.
func newReference() string {
	return "REF-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
