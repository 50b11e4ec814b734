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

package mirror

import (
	"context"
	"sync"
	"time"

	"vanstra-bank-go/internal/models"

	"go.uber.org/zap"
)

type task struct {
	name string
	op   func(ctx context.Context) error
}

// Queue replicates local state changes to the remote mirror asynchronously.
// Enqueueing never blocks the caller; each task is retried a bounded number
// of times with exponential backoff, then dropped with a log line. The
// primary operation has already succeeded by the time a task exists, so a
// dropped task only means the mirror lags.
type Queue struct {
	store       Store
	tasks       chan task
	maxAttempts int
	backoff     time.Duration
	wg          sync.WaitGroup
}

// NewQueue starts the replication worker. A nil store disables the mirror:
// every enqueue becomes a no-op and no worker is started.
func NewQueue(store Store, cfg models.MirrorConfig) *Queue {
	q := &Queue{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
	}
	if store == nil {
		return q
	}
	if q.maxAttempts <= 0 {
		q.maxAttempts = 1
	}

	q.tasks = make(chan task, cfg.QueueSize)
	q.wg.Add(1)
	go q.run()

	zap.L().Info("Mirror replication queue started",
		zap.Int("queue_size", cfg.QueueSize),
		zap.Int("max_attempts", q.maxAttempts))
	return q
}

// Enabled reports whether a remote mirror is configured.
func (q *Queue) Enabled() bool {
	return q.store != nil
}

// Close stops the worker after draining queued tasks.
func (q *Queue) Close() {
	if q.store == nil {
		return
	}
	close(q.tasks)
	q.wg.Wait()
}

func (q *Queue) enqueue(name string, op func(ctx context.Context) error) {
	if q.store == nil {
		return
	}
	select {
	case q.tasks <- task{name: name, op: op}:
	default:
		zap.L().Warn("Mirror queue full, dropping task", zap.String("task", name))
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for t := range q.tasks {
		q.process(t)
	}
}

func (q *Queue) process(t task) {
	delay := q.backoff
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := t.op(ctx)
		cancel()
		if err == nil {
			return
		}

		zap.L().Warn("Mirror task failed",
			zap.String("task", t.name),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < q.maxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	zap.L().Error("Mirror task dropped after retries", zap.String("task", t.name))
}

// UserCreated mirrors a newly created user.
func (q *Queue) UserCreated(user models.AdminUser) {
	q.enqueue("create_user", func(ctx context.Context) error {
		return q.store.CreateUser(ctx, user)
	})
}

// UserUpdated mirrors field changes for an existing user.
func (q *Queue) UserUpdated(userId string, changes map[string]any) {
	q.enqueue("update_user", func(ctx context.Context) error {
		return q.store.UpdateUser(ctx, userId, changes)
	})
}

// TransactionCreated mirrors a ledger entry.
func (q *Queue) TransactionCreated(userId string, txn models.Transaction) {
	q.enqueue("create_transaction", func(ctx context.Context) error {
		return q.store.CreateTransaction(ctx, userId, txn)
	})
}

// EmailStored mirrors an outbound mail record.
func (q *Queue) EmailStored(email models.Email) {
	q.enqueue("store_email", func(ctx context.Context) error {
		return q.store.StoreEmail(ctx, email)
	})
}
