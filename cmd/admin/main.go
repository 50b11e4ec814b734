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

package main

import (
	"context"
	"flag"
	"fmt"

	"vanstra-bank-go/internal/common"
	"vanstra-bank-go/internal/config"
	"vanstra-bank-go/internal/database"
	"vanstra-bank-go/internal/models"

	"go.uber.org/zap"
)

type reportStats struct {
	totalUsers        int
	totalTransactions int
	pendingDeposits   int
}

func formatId(id string) string {
	if id == "" {
		return "none"
	}
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

func printTransaction(txn models.Transaction, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-10s %12s %s  %-9s ref:%s  %s\n",
		symbol,
		txn.Type,
		txn.Amount.StringFixed(2),
		txn.Currency,
		txn.Status,
		txn.Reference,
		txn.Timestamp.Format("2006-01-02 15:04:05"))
	if txn.Description != "" {
		fmt.Printf("%s   %s\n", common.BoxDetailPrefix(isLast), txn.Description)
	}
}

func printUserHeader(user models.User, transactionCount int) {
	fmt.Printf("\n┌─ Account: %s (%s)\n", user.FullName, user.Email)
	fmt.Printf("│  ID: %s\n", formatId(user.Id))
	fmt.Printf("│  Number: %s   Balance: %s %s   Status: %s\n",
		user.AccountNumber, user.Balance.StringFixed(2), user.Currency, user.Status)
	fmt.Printf("│  Transactions: %d\n", transactionCount)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user models.User, dbService *database.Service, logger *zap.Logger) (int, int, error) {
	transactions, err := dbService.GetTransactions(ctx, user.Id, 50, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get transactions: %w", err)
	}

	printUserHeader(user, len(transactions))

	pending := 0
	for i, txn := range transactions {
		if txn.Status == models.TransactionStatusPending {
			pending++
		}
		printTransaction(txn, i == len(transactions)-1)
	}
	if len(transactions) == 0 {
		fmt.Println(common.BoxPrefix(true) + "no activity")
	}

	return len(transactions), pending, nil
}

func printEventLog(ctx context.Context, dbService *database.Service, logger *zap.Logger) {
	events, err := dbService.GetEvents(ctx)
	if err != nil {
		logger.Error("Failed to load event log", zap.Error(err))
		return
	}

	// Payload lines run long, so the event log uses the wide layout.
	common.PrintHeader("EVENT LOG (newest first)", common.WideWidth)
	for i, event := range events {
		fmt.Printf("%s %-28s %s  %s\n",
			common.BoxPrefix(i == len(events)-1),
			event.Name,
			event.Timestamp.Format("2006-01-02 15:04:05"),
			string(event.Payload))
	}
}

func printSentEmails(ctx context.Context, dbService *database.Service, logger *zap.Logger) {
	emails, err := dbService.GetSentEmails(ctx)
	if err != nil {
		logger.Error("Failed to load sent emails", zap.Error(err))
		return
	}

	common.PrintHeader("SENT EMAILS", common.DefaultWidth)
	for i, email := range emails {
		fmt.Printf("%s %-35s %-30s %s\n",
			common.BoxPrefix(i == len(emails)-1),
			email.To,
			email.Subject,
			email.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific account email (optional)")
	eventsFlag := flag.Bool("events", false, "Include the admin event log")
	emailsFlag := flag.Bool("emails", false, "Include locally recorded outbound emails")
	flag.Parse()

	logger.Info("Starting account report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := dbService.GetAllUsers(ctx)
	if err != nil {
		logger.Fatal("Failed to load accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT REPORT", common.DefaultWidth)

	stats := reportStats{}
	for _, user := range users {
		if *emailFlag != "" && user.Email != *emailFlag {
			continue
		}
		stats.totalUsers++

		txnCount, pending, err := processUser(ctx, user, dbService, logger)
		if err != nil {
			logger.Error("Failed to process account",
				zap.String("user_id", user.Id),
				zap.String("email", user.Email),
				zap.Error(err))
			continue
		}
		stats.totalTransactions += txnCount
		stats.pendingDeposits += pending
	}

	if *eventsFlag {
		printEventLog(ctx, dbService, logger)
	}
	if *emailsFlag {
		printSentEmails(ctx, dbService, logger)
	}

	summary := fmt.Sprintf("SUMMARY: %d accounts, %d transactions, %d pending deposits",
		stats.totalUsers, stats.totalTransactions, stats.pendingDeposits)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Account report completed",
		zap.Int("accounts", stats.totalUsers),
		zap.Int("transactions", stats.totalTransactions),
		zap.Int("pending_deposits", stats.pendingDeposits))
}
