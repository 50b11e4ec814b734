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

const (
	// User queries
	userColumns = `id, full_name, email, date_of_birth, phone, account_number, account_type,
		tier, medal, balance, currency, status, created_at, last_login, is_online, avatar,
		password_hash, pin_hash, failed_pin_attempts, locked_until`

	queryInsertUser = `
		INSERT INTO users (
			id, full_name, email, date_of_birth, phone, account_number, account_type,
			tier, medal, balance, currency, status, created_at, last_login, is_online,
			avatar, password_hash, pin_hash, failed_pin_attempts, locked_until
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = ?`

	queryGetAllUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at`

	querySetOnline = `
		UPDATE users SET is_online = ?, last_login = COALESCE(?, last_login)
		WHERE id = ?`

	queryUpdatePinState = `
		UPDATE users SET failed_pin_attempts = ?, locked_until = ?
		WHERE id = ?`

	queryUpdateProfile = `
		UPDATE users SET
			full_name = CASE WHEN ? != '' THEN ? ELSE full_name END,
			email = CASE WHEN ? != '' THEN ? ELSE email END,
			phone = CASE WHEN ? != '' THEN ? ELSE phone END
		WHERE id = ?`

	queryUpdateAvatar = `
		UPDATE users SET avatar = ? WHERE id = ?`

	queryUpdateCredentials = `
		UPDATE users SET
			password_hash = CASE WHEN ? != '' THEN ? ELSE password_hash END,
			pin_hash = CASE WHEN ? != '' THEN ? ELSE pin_hash END
		WHERE id = ?`

	// Balance queries (inside the ledger transaction)
	queryGetBalanceForUpdate = `
		SELECT balance, version FROM users WHERE id = ?`

	queryUpdateBalance = `
		UPDATE users SET balance = ?, version = version + 1
		WHERE id = ? AND version = ?`

	// Session queries
	queryInsertSession = `
		INSERT INTO sessions (token_id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`

	queryGetSession = `
		SELECT token_id, user_id, created_at, expires_at
		FROM sessions
		WHERE token_id = ?`

	queryDeleteSession = `
		DELETE FROM sessions WHERE token_id = ?`

	// Password reset queries
	queryInsertResetRequest = `
		INSERT INTO password_reset_requests (token, user_id, email, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetResetRequest = `
		SELECT token, user_id, email, created_at, expires_at
		FROM password_reset_requests
		WHERE token = ?`

	queryDeleteResetRequest = `
		DELETE FROM password_reset_requests WHERE token = ?`

	// Transaction queries
	transactionColumns = `id, user_id, type, subtype, description, amount, currency,
		recipient_name, recipient_account, recipient_bank, category, reference_number, note,
		balance_before, balance_after, status, reference, created_at, estimated_clearance`

	queryInsertTransaction = `
		INSERT INTO transactions (
			id, user_id, type, subtype, description, amount, currency,
			recipient_name, recipient_account, recipient_bank, category, reference_number, note,
			balance_before, balance_after, status, reference, created_at, estimated_clearance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransaction = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ? AND user_id = ?`

	queryGetTransactionHistory = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	querySettleDeposit = `
		UPDATE transactions SET status = 'completed'
		WHERE id = ? AND user_id = ? AND status = 'pending'`

	queryCompletedAmounts = `
		SELECT amount FROM transactions
		WHERE user_id = ? AND status = 'completed'`

	queryOpeningBalance = `
		SELECT balance_before FROM transactions
		WHERE user_id = ?
		ORDER BY created_at ASC
		LIMIT 1`

	// Admin event queries
	queryInsertEvent = `
		INSERT INTO admin_events (name, payload, created_at) VALUES (?, ?, ?)`

	queryTrimEvents = `
		DELETE FROM admin_events
		WHERE id NOT IN (SELECT id FROM admin_events ORDER BY id DESC LIMIT ?)`

	queryGetEvents = `
		SELECT id, name, payload, created_at
		FROM admin_events
		ORDER BY id DESC`

	// Chat queries
	queryInsertChatMessage = `
		INSERT INTO chat_messages (id, user_id, message, sender, system, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetChatMessages = `
		SELECT id, user_id, message, sender, system, read, created_at
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY created_at`

	queryHasUserChatMessage = `
		SELECT 1 FROM chat_messages
		WHERE user_id = ? AND sender = 'user'
		LIMIT 1`

	// Sent mail queries
	queryInsertEmail = `
		INSERT INTO sent_emails (id, recipient, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetSentEmails = `
		SELECT id, recipient, subject, body, created_at
		FROM sent_emails
		ORDER BY created_at DESC`
)
