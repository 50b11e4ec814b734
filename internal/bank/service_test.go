package bank

import (
	"context"
	"testing"
	"time"

	"vanstra-bank-go/internal/database"
	"vanstra-bank-go/internal/events"
	"vanstra-bank-go/internal/mailer"
	"vanstra-bank-go/internal/mirror"
	"vanstra-bank-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		Session: models.SessionConfig{
			Secret: "test-secret-key",
			TTL:    24 * time.Hour,
		},
		Pin: models.PinConfig{
			MaxAttempts:     3,
			LockoutDuration: 30 * time.Minute,
		},
		Bank: models.BankConfig{
			StartingBalance: "5000.00",
			Currency:        "EUR",
		},
		Mirror: models.MirrorConfig{QueueSize: 16, MaxAttempts: 1, RetryBackoff: time.Millisecond},
		Mail:   models.MailConfig{FromAddress: "noreply@test.local", SendTimeout: time.Second},
	}
}

func newTestService(t *testing.T, cfg *models.Config) (*Service, *database.Service) {
	t.Helper()

	db, err := database.NewMemoryService()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	bus := events.NewBus(db)
	queue := mirror.NewQueue(nil, cfg.Mirror)
	sender := mailer.NewSender(db, bus, queue, cfg.Mail)

	billers := []models.Biller{
		{Name: "Nuon Energie", Category: "utilities"},
		{Name: "KPN Telecom", Category: "telecom"},
	}

	service, err := NewService(db, bus, sender, queue, cfg, billers)
	require.NoError(t, err)
	return service, db
}

func signupParams(email string) CreateAccountParams {
	return CreateAccountParams{
		FullName:    "Anna Tester",
		Email:       email,
		DateOfBirth: "1990-01-01",
		Phone:       "+31 6 1111 2222",
		Password:    "correct horse battery",
		Pin:         "4271",
	}
}

func openTestAccount(t *testing.T, service *Service) *AuthResult {
	t.Helper()
	result, err := service.CreateAccount(context.Background(), signupParams(t.Name()+"@example.com"))
	require.NoError(t, err)
	return result
}
