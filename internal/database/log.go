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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vanstra-bank-go/internal/models"

	"go.uber.org/zap"
)

// adminEventCap bounds the admin event log to the most recent entries.
const adminEventCap = 100

func (s *Service) AppendEvent(ctx context.Context, name string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, queryInsertEvent, name, string(payload), time.Now()); err != nil {
		return fmt.Errorf("unable to insert event: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryTrimEvents, adminEventCap); err != nil {
		return fmt.Errorf("unable to trim event log: %w", err)
	}
	return nil
}

// GetEvents returns the admin event log, newest first.
func (s *Service) GetEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, queryGetEvents)
	if err != nil {
		return nil, fmt.Errorf("unable to query events: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var payload sql.NullString
		if err := rows.Scan(&event.Id, &event.Name, &payload, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("unable to scan event row: %w", err)
		}
		if payload.Valid {
			event.Payload = []byte(payload.String)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (s *Service) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	_, err := s.db.ExecContext(ctx, queryInsertChatMessage,
		msg.Id, msg.UserId, msg.Message, msg.From, msg.System, msg.Read, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("unable to insert chat message: %w", err)
	}
	return nil
}

func (s *Service) GetChatMessages(ctx context.Context, userId string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, queryGetChatMessages, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query chat messages: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.Id, &msg.UserId, &msg.Message, &msg.From, &msg.System, &msg.Read, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("unable to scan chat message row: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	return messages, nil
}

func (s *Service) HasUserChatMessage(ctx context.Context, userId string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, queryHasUserChatMessage, userId).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to check chat messages: %w", err)
	}
	return true, nil
}

func (s *Service) RecordEmail(ctx context.Context, email *models.Email) error {
	_, err := s.db.ExecContext(ctx, queryInsertEmail,
		email.Id, email.To, email.Subject, email.Body, email.Timestamp)
	if err != nil {
		return fmt.Errorf("unable to insert email: %w", err)
	}
	return nil
}

func (s *Service) GetSentEmails(ctx context.Context) ([]models.Email, error) {
	rows, err := s.db.QueryContext(ctx, queryGetSentEmails)
	if err != nil {
		return nil, fmt.Errorf("unable to query sent emails: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var emails []models.Email
	for rows.Next() {
		var email models.Email
		if err := rows.Scan(&email.Id, &email.To, &email.Subject, &email.Body, &email.Timestamp); err != nil {
			return nil, fmt.Errorf("unable to scan email row: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email rows: %w", err)
	}

	return emails, nil
}
