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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const chatGreeting = "Hi there — to help you faster, please confirm the email address associated with your account."

// SendChatMessage appends a support chat message from the account holder.
// The first message a user ever sends triggers an automated admin reply.
func (s *Service) SendChatMessage(ctx context.Context, tokenString, message string) ([]models.ChatMessage, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	first, err := s.store.HasUserChatMessage(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		Id:        "MSG-" + uuid.NewString(),
		UserId:    user.Id,
		Message:   message,
		From:      "user",
		Timestamp: time.Now(),
	}
	if err := s.store.AppendChatMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.bus.Emit("chat_message", map[string]any{"userId": user.Id, "message": msg})

	if !first {
		reply := &models.ChatMessage{
			Id:        "MSG-" + uuid.NewString(),
			UserId:    user.Id,
			Message:   chatGreeting,
			From:      "admin",
			System:    true,
			Timestamp: time.Now(),
		}
		if err := s.store.AppendChatMessage(ctx, reply); err != nil {
			zap.L().Warn("Failed to append automated chat reply", zap.String("user_id", user.Id), zap.Error(err))
		}
	}

	return s.store.GetChatMessages(ctx, user.Id)
}

// ChatMessages returns the caller's support chat history, oldest first.
func (s *Service) ChatMessages(ctx context.Context, tokenString string) ([]models.ChatMessage, error) {
	user, err := s.userFromToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return s.store.GetChatMessages(ctx, user.Id)
}

// AdminReply appends a support reply from the operator side.
func (s *Service) AdminReply(ctx context.Context, userId, message string) (*models.ChatMessage, error) {
	if _, err := s.store.GetUserById(ctx, userId); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	reply := &models.ChatMessage{
		Id:        "MSG-" + uuid.NewString(),
		UserId:    userId,
		Message:   message,
		From:      "admin",
		Timestamp: time.Now(),
	}
	if err := s.store.AppendChatMessage(ctx, reply); err != nil {
		return nil, err
	}

	s.bus.Emit("admin_reply", map[string]any{"userId": userId, "message": reply})
	return reply, nil
}

// UserChatMessages returns one account's chat log for the operator surface.
func (s *Service) UserChatMessages(ctx context.Context, userId string) ([]models.ChatMessage, error) {
	return s.store.GetChatMessages(ctx, userId)
}
