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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vanstra-bank-go/internal/models"
)

// Store is the remote mirror contract. Every call may fail independently;
// callers must never depend on success.
type Store interface {
	CreateUser(ctx context.Context, user models.AdminUser) error
	UpdateUser(ctx context.Context, userId string, changes map[string]any) error
	GetAllUsers(ctx context.Context) ([]models.AdminUser, error)
	CreateTransaction(ctx context.Context, userId string, txn models.Transaction) error
	StoreEmail(ctx context.Context, email models.Email) error
}

// Client talks to a PostgREST-style remote database over JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: *Client must satisfy Store.
var _ Store = (*Client)(nil)

func NewClient(cfg models.MirrorConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) CreateUser(ctx context.Context, user models.AdminUser) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/users", "", []models.AdminUser{user}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, userId string, changes map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/rest/v1/users", "id=eq."+url.QueryEscape(userId), changes, nil)
}

func (c *Client) GetAllUsers(ctx context.Context) ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := c.do(ctx, http.MethodGet, "/rest/v1/users", "select=*", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateTransaction(ctx context.Context, userId string, txn models.Transaction) error {
	payload := struct {
		UserId string `json:"userId"`
		models.Transaction
	}{UserId: userId, Transaction: txn}
	return c.do(ctx, http.MethodPost, "/rest/v1/transactions", "", []any{payload}, nil)
}

func (c *Client) StoreEmail(ctx context.Context, email models.Email) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/sent_emails", "", []models.Email{email}, nil)
}

func (c *Client) do(ctx context.Context, method, path, query string, body, out any) error {
	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal mirror payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build mirror request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if out == nil {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mirror request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mirror responded %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode mirror response: %w", err)
		}
	}
	return nil
}
