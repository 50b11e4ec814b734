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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"vanstra-bank-go/internal/models"
)

func Load() (*models.Config, error) {
	sessionTTL, err := getEnvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	pinLockout, err := getEnvDuration("PIN_LOCKOUT_DURATION", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	mirrorBackoff, err := getEnvDuration("MIRROR_RETRY_BACKOFF", 2*time.Second)
	if err != nil {
		return nil, err
	}

	mailTimeout, err := getEnvDuration("MAIL_SEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	sessionSecret := getEnvString("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("missing required environment variable SESSION_SECRET")
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "vanstra.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			CreateDemoUsers: getEnvBool("CREATE_DEMO_USERS", false),
		},
		Server: models.ServerConfig{
			Port:            getEnvString("PORT", "8080"),
			AdminToken:      getEnvString("ADMIN_TOKEN", ""),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Session: models.SessionConfig{
			Secret: sessionSecret,
			TTL:    sessionTTL,
		},
		Pin: models.PinConfig{
			MaxAttempts:     getEnvInt("PIN_MAX_ATTEMPTS", 3),
			LockoutDuration: pinLockout,
		},
		Bank: models.BankConfig{
			StartingBalance: getEnvString("STARTING_BALANCE", "5000.00"),
			Currency:        getEnvString("CURRENCY", "EUR"),
			BillersFile:     getEnvString("BILLERS_FILE", "billers.yaml"),
		},
		Mirror: models.MirrorConfig{
			URL:          getEnvString("MIRROR_URL", ""),
			APIKey:       getEnvString("MIRROR_API_KEY", ""),
			QueueSize:    getEnvInt("MIRROR_QUEUE_SIZE", 256),
			MaxAttempts:  getEnvInt("MIRROR_MAX_ATTEMPTS", 3),
			RetryBackoff: mirrorBackoff,
		},
		Mail: models.MailConfig{
			APIURL:      getEnvString("MAIL_API_URL", ""),
			FromAddress: getEnvString("MAIL_FROM", "noreply@vanstracapital.com"),
			SendTimeout: mailTimeout,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
