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

package common

import (
	"context"
	"errors"
	"log"
	"strings"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/database"
	"vanstra-bank-go/internal/events"
	"vanstra-bank-go/internal/mailer"
	"vanstra-bank-go/internal/mirror"
	"vanstra-bank-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService   *database.Service
	Bus         *events.Bus
	MirrorQueue *mirror.Queue
	Mailer      *mailer.Sender
	Bank        *bank.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(dbService)

	var mirrorStore mirror.Store
	if cfg.Mirror.URL != "" {
		zap.L().Info("Remote mirror enabled", zap.String("url", cfg.Mirror.URL))
		mirrorStore = mirror.NewClient(cfg.Mirror)
	} else {
		zap.L().Info("Remote mirror disabled, running local-only")
	}
	mirrorQueue := mirror.NewQueue(mirrorStore, cfg.Mirror)

	sender := mailer.NewSender(dbService, bus, mirrorQueue, cfg.Mail)

	billers, err := LoadBillers(cfg.Bank.BillersFile)
	if err != nil {
		dbService.Close()
		mirrorQueue.Close()
		return nil, err
	}
	zap.L().Info("Loaded biller directory", zap.Int("billers", len(billers)))

	bankService, err := bank.NewService(dbService, bus, sender, mirrorQueue, cfg, billers)
	if err != nil {
		dbService.Close()
		mirrorQueue.Close()
		return nil, err
	}

	services := &Services{
		DbService:   dbService,
		Bus:         bus,
		MirrorQueue: mirrorQueue,
		Mailer:      sender,
		Bank:        bankService,
	}

	if cfg.Database.CreateDemoUsers {
		seedDemoUsers(ctx, bankService)
	}

	return services, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for read-only operations like the admin report tool.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.MirrorQueue != nil {
		cs.MirrorQueue.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func seedDemoUsers(ctx context.Context, bankService *bank.Service) {
	demo := []bank.CreateAccountParams{
		{
			FullName:    "Marta Jansen",
			Email:       "marta.jansen@example.com",
			DateOfBirth: "1987-04-12",
			Phone:       "+31 6 1234 5678",
			Password:    "marta-demo-pass",
			Pin:         "4271",
		},
		{
			FullName:    "Pieter de Vries",
			Email:       "pieter.devries@example.com",
			DateOfBirth: "1992-11-03",
			Phone:       "+31 6 8765 4321",
			Password:    "pieter-demo-pass",
			Pin:         "9438",
		},
	}

	for _, params := range demo {
		if _, err := bankService.CreateAccount(ctx, params); err != nil {
			if errors.Is(err, bank.ErrEmailTaken) {
				continue
			}
			zap.L().Warn("Failed to seed demo user",
				zap.String("email", params.Email),
				zap.Error(err))
		}
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
