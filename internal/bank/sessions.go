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
	"errors"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// openSession issues a signed session token and stores the matching
// server-side record. The token id (jti) keys the record so a token can be
// revoked on logout.
func (s *Service) openSession(ctx context.Context, userId string) (string, error) {
	tokenId := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(s.session.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userId,
		"jti": tokenId,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.session.Secret))
	if err != nil {
		return "", err
	}

	err = s.store.CreateSession(ctx, &models.Session{
		TokenId:   tokenId,
		UserId:    userId,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", err
	}

	return signed, nil
}

// parseToken validates the token signature and returns its jti claim.
// Any parse or signature failure, including expiry, yields an empty id.
func (s *Service) parseToken(tokenString string) string {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrNotAuthenticated
		}
		return []byte(s.session.Secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	tokenId, _ := claims["jti"].(string)
	return tokenId
}

// userFromToken resolves the session token to its user. A session whose
// expiry has passed is treated as absent and removed on observation.
func (s *Service) userFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	tokenId := s.parseToken(tokenString)
	if tokenId == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.store.GetSession(ctx, tokenId)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		// Lazy expiry: no background sweep, stale rows go when noticed.
		if err := s.store.DeleteSession(ctx, tokenId); err != nil {
			zap.L().Warn("Failed to delete expired session", zap.Error(err))
		}
		return nil, ErrNotAuthenticated
	}

	user, err := s.store.GetUserById(ctx, session.UserId)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return user, nil
}

// CurrentUser returns the sanitized account view for a session token.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (models.ClientUser, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return models.ClientUser{}, err
	}
	transactions, err := s.store.GetTransactions(ctx, user.Id, transactionHistoryLimit, 0)
	if err != nil {
		return models.ClientUser{}, err
	}
	return user.SanitizeForClient(transactions), nil
}

// IsAuthenticated reports whether the token resolves to a live session.
func (s *Service) IsAuthenticated(ctx context.Context, tokenString string) bool {
	_, err := s.userFromToken(ctx, tokenString)
	return err == nil
}

// Logout closes the session and marks the owner offline. Unknown or expired
// tokens are a no-op success.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	tokenId := s.parseToken(tokenString)
	if tokenId == "" {
		return nil
	}

	session, err := s.store.GetSession(ctx, tokenId)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.store.SetOnline(ctx, session.UserId, false, nil); err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return err
	}
	s.bus.Emit("user_logout", map[string]any{"userId": session.UserId})
	s.mirrorQ.UserUpdated(session.UserId, map[string]any{"isOnline": false})

	return s.store.DeleteSession(ctx, tokenId)
}
