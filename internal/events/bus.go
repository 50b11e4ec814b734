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

package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Handler receives the payload of an emitted event.
type Handler func(payload any)

// AuditLog receives every emission for the admin-visible event log,
// independent of subscriber presence. database.Service satisfies it.
type AuditLog interface {
	AppendEvent(ctx context.Context, name string, payload []byte) error
}

// Bus is an in-process publish/subscribe hub keyed by event name.
// Delivery is synchronous and in registration order; a panicking handler is
// isolated so it cannot stop later handlers or the emitter.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	audit    AuditLog
}

func NewBus(audit AuditLog) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		audit:    audit,
	}
}

// On registers a handler for the named event.
func (b *Bus) On(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Emit delivers the payload to every handler registered for name and appends
// the emission to the audit log.
func (b *Bus) Emit(name string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(name, handler, payload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("Failed to marshal event payload", zap.String("event", name), zap.Error(err))
		data = []byte("{}")
	}
	if err := b.audit.AppendEvent(context.Background(), name, data); err != nil {
		zap.L().Warn("Failed to append event to audit log", zap.String("event", name), zap.Error(err))
	}
}

func (b *Bus) dispatch(name string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Event handler panicked", zap.String("event", name), zap.Any("panic", r))
		}
	}()
	handler(payload)
}
