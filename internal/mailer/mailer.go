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

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vanstra-bank-go/internal/events"
	"vanstra-bank-go/internal/mirror"
	"vanstra-bank-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder persists outbound mail locally. database.Service satisfies it.
type Recorder interface {
	RecordEmail(ctx context.Context, email *models.Email) error
}

// Sender records outbound notifications locally and dispatches them to the
// configured mail API on a best-effort basis. The local record is written
// before delivery is attempted, and delivery failures never reach the caller.
type Sender struct {
	recorder   Recorder
	bus        *events.Bus
	mirrorQ    *mirror.Queue
	cfg        models.MailConfig
	httpClient *http.Client
}

func NewSender(recorder Recorder, bus *events.Bus, mirrorQ *mirror.Queue, cfg models.MailConfig) *Sender {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		recorder:   recorder,
		bus:        bus,
		mirrorQ:    mirrorQ,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send records the mail, emits email_sent, mirrors the record, and hands the
// message to the mail API without waiting for the outcome.
func (s *Sender) Send(ctx context.Context, to, subject, body string, vars map[string]string) {
	email := models.Email{
		Id:        "MAIL-" + uuid.New().String(),
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now(),
	}

	if err := s.recorder.RecordEmail(ctx, &email); err != nil {
		zap.L().Warn("Failed to record outbound email", zap.String("to", to), zap.Error(err))
	}

	s.bus.Emit("email_sent", email)
	s.mirrorQ.EmailStored(email)

	if s.cfg.APIURL == "" {
		return
	}
	go s.deliver(email, vars)
}

func (s *Sender) deliver(email models.Email, vars map[string]string) {
	params := map[string]string{
		"to_email": email.To,
		"subject":  email.Subject,
		"message":  email.Body,
		"reply_to": s.cfg.FromAddress,
	}
	for k, v := range vars {
		params[k] = v
	}

	payload, err := json.Marshal(map[string]any{"template_params": params})
	if err != nil {
		zap.L().Warn("Failed to marshal mail payload", zap.Error(err))
		return
	}

	resp, err := s.httpClient.Post(s.cfg.APIURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		zap.L().Warn("Mail delivery failed", zap.String("to", email.To), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Warn("Mail API rejected message",
			zap.String("to", email.To),
			zap.String("status", fmt.Sprintf("%d", resp.StatusCode)))
		return
	}

	zap.L().Debug("Mail delivered", zap.String("to", email.To), zap.String("subject", email.Subject))
}
