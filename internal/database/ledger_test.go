package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"vanstra-bank-go/internal/models"
	"vanstra-bank-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	service, err := NewMemoryService()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		service.Close()
	}

	return service, cleanup
}

func createTestUser(t *testing.T, service *Service, balance string) *models.User {
	t.Helper()

	user := &models.User{
		Id:            "USR-test-" + time.Now().Format("150405.000000000"),
		FullName:      "Test User",
		Email:         testEmail(t),
		AccountNumber: "DE1234567890",
		AccountType:   "Premium Checking",
		Tier:          "unlimited",
		Medal:         "gold",
		Balance:       decimal.RequireFromString(balance),
		Currency:      "EUR",
		Status:        models.UserStatusActive,
		CreatedAt:     time.Now(),
		PasswordHash:  "hash",
		PinHash:       "pinhash",
	}
	if err := service.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func testEmail(t *testing.T) string {
	return t.Name() + "@example.com"
}

func TestApplyTransaction_Debit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	txn, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:         user.Id,
		Type:           models.TransactionTypeTransfer,
		Amount:         decimal.RequireFromString("-100.00"),
		Currency:       "EUR",
		Status:         models.TransactionStatusCompleted,
		Reference:      "REF-TEST0001",
		ApplyToBalance: true,
	})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	if !txn.BalanceBefore.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("Expected balance before 5000.00, got %s", txn.BalanceBefore.String())
	}
	if !txn.BalanceAfter.Equal(decimal.RequireFromString("4900.00")) {
		t.Errorf("Expected balance after 4900.00, got %s", txn.BalanceAfter.String())
	}

	// Stored balance must match the ledger entry
	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !fresh.Balance.Equal(txn.BalanceAfter) {
		t.Errorf("Expected stored balance %s, got %s", txn.BalanceAfter.String(), fresh.Balance.String())
	}
}

func TestApplyTransaction_InsufficientFunds(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "50.00")

	_, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:         user.Id,
		Type:           models.TransactionTypeTransfer,
		Amount:         decimal.RequireFromString("-100.00"),
		Currency:       "EUR",
		Status:         models.TransactionStatusCompleted,
		Reference:      "REF-TEST0002",
		ApplyToBalance: true,
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Balance and ledger must be untouched
	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !fresh.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected balance 50.00, got %s", fresh.Balance.String())
	}
	transactions, err := service.GetTransactions(ctx, user.Id, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("Expected no transactions, got %d", len(transactions))
	}
}

func TestApplyTransaction_PendingDepositLeavesBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	clearance := time.Now().Add(48 * time.Hour)
	txn, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:             user.Id,
		Type:               models.TransactionTypeDeposit,
		Amount:             decimal.RequireFromString("250.00"),
		Currency:           "EUR",
		Status:             models.TransactionStatusPending,
		Reference:          "REF-TEST0003",
		EstimatedClearance: &clearance,
		ApplyToBalance:     false,
	})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	if txn.Status != models.TransactionStatusPending {
		t.Errorf("Expected pending status, got %s", txn.Status)
	}
	if txn.EstimatedClearance == nil {
		t.Error("Expected estimated clearance to be set")
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !fresh.Balance.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("Expected balance 5000.00, got %s", fresh.Balance.String())
	}
}

func TestSettleDeposit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	clearance := time.Now().Add(48 * time.Hour)
	pending, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:             user.Id,
		Type:               models.TransactionTypeDeposit,
		Amount:             decimal.RequireFromString("250.00"),
		Currency:           "EUR",
		Status:             models.TransactionStatusPending,
		Reference:          "REF-TEST0004",
		EstimatedClearance: &clearance,
		ApplyToBalance:     false,
	})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	settled, err := service.SettleDeposit(ctx, user.Id, pending.Id)
	if err != nil {
		t.Fatalf("SettleDeposit failed: %v", err)
	}
	if settled.Status != models.TransactionStatusCompleted {
		t.Errorf("Expected completed status, got %s", settled.Status)
	}
	if !settled.BalanceAfter.Equal(decimal.RequireFromString("5250.00")) {
		t.Errorf("Expected balance after 5250.00, got %s", settled.BalanceAfter.String())
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !fresh.Balance.Equal(decimal.RequireFromString("5250.00")) {
		t.Errorf("Expected balance 5250.00, got %s", fresh.Balance.String())
	}

	// Settling twice must fail
	if _, err := service.SettleDeposit(ctx, user.Id, pending.Id); !errors.Is(err, store.ErrDepositNotPending) {
		t.Fatalf("Expected ErrDepositNotPending, got %v", err)
	}
}

func TestSettleDeposit_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	_, err := service.SettleDeposit(ctx, user.Id, "TXN-missing")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestGetTransactions_NewestFirst(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	for i := 0; i < 3; i++ {
		_, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
			UserId:         user.Id,
			Type:           models.TransactionTypeTransfer,
			Amount:         decimal.RequireFromString("-10.00"),
			Currency:       "EUR",
			Status:         models.TransactionStatusCompleted,
			Reference:      "REF-ORDER" + string(rune('0'+i)),
			ApplyToBalance: true,
		})
		if err != nil {
			t.Fatalf("ApplyTransaction %d failed: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	transactions, err := service.GetTransactions(ctx, user.Id, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(transactions))
	}
	for i := 1; i < len(transactions); i++ {
		if transactions[i].Timestamp.After(transactions[i-1].Timestamp) {
			t.Errorf("Expected newest first ordering at index %d", i)
		}
	}
}

func TestReconcileBalance_CorrectsDrift(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	_, err := service.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserId:         user.Id,
		Type:           models.TransactionTypeTransfer,
		Amount:         decimal.RequireFromString("-100.00"),
		Currency:       "EUR",
		Status:         models.TransactionStatusCompleted,
		Reference:      "REF-TEST0005",
		ApplyToBalance: true,
	})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	// Corrupt the stored balance out-of-band
	if _, err := service.db.ExecContext(ctx, "UPDATE users SET balance = '9999.00' WHERE id = ?", user.Id); err != nil {
		t.Fatalf("Failed to corrupt balance: %v", err)
	}

	if err := service.ReconcileBalance(ctx, user.Id); err != nil {
		t.Fatalf("ReconcileBalance failed: %v", err)
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !fresh.Balance.Equal(decimal.RequireFromString("4900.00")) {
		t.Errorf("Expected reconciled balance 4900.00, got %s", fresh.Balance.String())
	}
}
