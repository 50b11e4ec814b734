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
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vanstra-bank-go/internal/common"
	"vanstra-bank-go/internal/config"
	"vanstra-bank-go/internal/handler"
	"vanstra-bank-go/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	_, cleanup := common.InitializeLogger()
	defer cleanup()

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	authHandler := handler.NewAuthHandler(services.Bank)
	accountHandler := handler.NewAccountHandler(services.Bank)
	ledgerHandler := handler.NewLedgerHandler(services.Bank)
	chatHandler := handler.NewChatHandler(services.Bank)
	adminHandler := handler.NewAdminHandler(services.Bank, cfg.Server.AdminToken)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RateLimiter())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := services.DbService.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("DB DOWN"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes with strict rate limiting
	r.Group(func(r chi.Router) {
		r.Use(middleware.StrictRateLimiter())
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/reset/request", authHandler.RequestReset)
		r.Get("/auth/reset/validate", authHandler.ValidateReset)
		r.Post("/auth/reset/complete", authHandler.CompleteReset)
	})

	// Session-scoped routes
	r.Group(func(r chi.Router) {
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.Patch("/me/profile", accountHandler.UpdateProfile)
		r.Put("/me/avatar", accountHandler.UpdateAvatar)
		r.Put("/me/security", accountHandler.UpdateSecurity)

		r.Post("/transactions/transfer", ledgerHandler.Transfer)
		r.Post("/transactions/billpay", ledgerHandler.PayBill)
		r.Post("/transactions/deposit", ledgerHandler.Deposit)
		r.Get("/transactions", ledgerHandler.Transactions)
		r.Get("/billers", ledgerHandler.Billers)

		r.Post("/chat", chatHandler.Send)
		r.Get("/chat", chatHandler.History)
	})

	// Operator surface
	r.Group(func(r chi.Router) {
		r.Use(adminHandler.RequireAdmin)
		r.Get("/admin/users", adminHandler.Users)
		r.Get("/admin/events", adminHandler.Events)
		r.Get("/admin/emails", adminHandler.Emails)
		r.Get("/admin/users/{userId}/transactions", adminHandler.UserTransactions)
		r.Get("/admin/users/{userId}/chat", adminHandler.UserChat)
		r.Post("/admin/users/{userId}/chat", adminHandler.Reply)
		r.Post("/admin/users/{userId}/deposits/{transactionId}/clear", adminHandler.ClearDeposit)
		r.Post("/admin/users/{userId}/reconcile", adminHandler.Reconcile)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited properly")
}
