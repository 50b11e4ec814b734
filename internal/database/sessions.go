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

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, queryInsertSession,
		session.TokenId, session.UserId, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		zap.L().Error("Failed to insert session", zap.String("user_id", session.UserId), zap.Error(err))
		return fmt.Errorf("unable to insert session: %w", err)
	}
	return nil
}

func (s *Service) GetSession(ctx context.Context, tokenId string) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRowContext(ctx, queryGetSession, tokenId).Scan(
		&session.TokenId, &session.UserId, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("unable to query session: %w", err)
	}
	return &session, nil
}

func (s *Service) DeleteSession(ctx context.Context, tokenId string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteSession, tokenId); err != nil {
		return fmt.Errorf("unable to delete session: %w", err)
	}
	return nil
}

func (s *Service) CreateResetRequest(ctx context.Context, req *models.PasswordResetRequest) error {
	_, err := s.db.ExecContext(ctx, queryInsertResetRequest,
		req.Token, req.UserId, req.Email, req.CreatedAt, req.ExpiresAt)
	if err != nil {
		zap.L().Error("Failed to insert reset request", zap.String("user_id", req.UserId), zap.Error(err))
		return fmt.Errorf("unable to insert reset request: %w", err)
	}
	return nil
}

func (s *Service) GetResetRequest(ctx context.Context, token string) (*models.PasswordResetRequest, error) {
	var req models.PasswordResetRequest
	err := s.db.QueryRowContext(ctx, queryGetResetRequest, token).Scan(
		&req.Token, &req.UserId, &req.Email, &req.CreatedAt, &req.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("unable to query reset request: %w", err)
	}
	return &req, nil
}

func (s *Service) DeleteResetRequest(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteResetRequest, token); err != nil {
		return fmt.Errorf("unable to delete reset request: %w", err)
	}
	return nil
}
