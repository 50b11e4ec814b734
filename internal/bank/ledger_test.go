package bank

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"vanstra-bank-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferOf(amount, pin string) TransferParams {
	return TransferParams{
		Pin:              pin,
		Amount:           decimal.RequireFromString(amount),
		RecipientName:    "Jan Smit",
		RecipientAccount: "NL91ABNA0417164300",
		RecipientBank:    "ABN AMRO",
	}
}

func TestTransfer(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	txn, err := service.Transfer(ctx, account.SessionToken, transferOf("100.00", "4271"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeTransfer, txn.Type)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("-100.00")))
	assert.True(t, txn.BalanceAfter.Equal(decimal.RequireFromString("4900.00")))
	assert.Regexp(t, `^REF-[0-9A-F]{8}$`, txn.Reference)

	me, err := service.CurrentUser(ctx, account.SessionToken)
	require.NoError(t, err)
	assert.True(t, me.Balance.Equal(decimal.RequireFromString("4900.00")))
}

func TestTransfer_FailedPinLeavesBalance(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	_, err := service.Transfer(ctx, account.SessionToken, transferOf("100.00", "0000"))
	assert.ErrorIs(t, err, ErrIncorrectPin)

	me, err := service.CurrentUser(ctx, account.SessionToken)
	require.NoError(t, err)
	assert.True(t, me.Balance.Equal(decimal.RequireFromString("5000.00")))

	// A correct PIN afterwards still works and clears the streak
	txn, err := service.Transfer(ctx, account.SessionToken, transferOf("100.00", "4271"))
	require.NoError(t, err)
	assert.True(t, txn.BalanceAfter.Equal(decimal.RequireFromString("4900.00")))
}

func TestTransfer_Validation(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	_, err := service.Transfer(ctx, account.SessionToken, transferOf("0", "4271"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Transfer(ctx, account.SessionToken, transferOf("-50.00", "4271"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Transfer(ctx, account.SessionToken, transferOf("5000.01", "4271"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = service.Transfer(ctx, "bad-token", transferOf("10.00", "4271"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestPinLockout(t *testing.T) {
	service, db := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := service.Transfer(ctx, account.SessionToken, transferOf("10.00", "9999"))
		assert.ErrorIs(t, err, ErrIncorrectPin)
	}

	// Third failure trips the lock
	_, err := service.Transfer(ctx, account.SessionToken, transferOf("10.00", "9999"))
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// Even the correct PIN is rejected while locked
	_, err = service.Transfer(ctx, account.SessionToken, transferOf("10.00", "4271"))
	var locked *AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.MinutesRemaining, 0)
	assert.LessOrEqual(t, locked.MinutesRemaining, 30)

	// The failure counter was reset when the lock was placed
	user, err := db.GetUserById(ctx, account.User.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedPinAttempts)
	require.NotNil(t, user.LockedUntil)

	// Once the lock expires the correct PIN works again
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdatePinState(ctx, account.User.Id, 0, &past))
	_, err = service.Transfer(ctx, account.SessionToken, transferOf("10.00", "4271"))
	assert.NoError(t, err)
}

func TestPayBill(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	_, err := service.PayBill(ctx, account.SessionToken, PayBillParams{
		Pin:        "4271",
		Amount:     decimal.RequireFromString("75.50"),
		BillerName: "Casino Royale",
		Category:   "gambling",
	})
	assert.ErrorIs(t, err, ErrUnknownBillerCategory)

	txn, err := service.PayBill(ctx, account.SessionToken, PayBillParams{
		Pin:             "4271",
		Amount:          decimal.RequireFromString("75.50"),
		BillerName:      "Nuon Energie",
		Category:        "utilities",
		ReferenceNumber: "INV-2026-001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypePayment, txn.Type)
	assert.True(t, txn.BalanceAfter.Equal(decimal.RequireFromString("4924.50")))
}

func TestDepositLifecycle(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	txn, err := service.SubmitDeposit(ctx, account.SessionToken, DepositParams{
		Amount: decimal.RequireFromString("300.00"),
		Source: "Salary BV",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	require.NotNil(t, txn.EstimatedClearance)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *txn.EstimatedClearance, time.Minute)

	// Pending funds are not spendable
	me, err := service.CurrentUser(ctx, account.SessionToken)
	require.NoError(t, err)
	assert.True(t, me.Balance.Equal(decimal.RequireFromString("5000.00")))

	// Clearing credits the balance
	settled, err := service.ClearDeposit(ctx, account.User.Id, txn.Id)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, settled.Status)
	assert.True(t, settled.BalanceAfter.Equal(decimal.RequireFromString("5300.00")))

	// Clearing twice fails
	_, err = service.ClearDeposit(ctx, account.User.Id, txn.Id)
	assert.ErrorIs(t, err, ErrDepositNotPending)
}

func TestClearDeposit_Unknown(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)

	_, err := service.ClearDeposit(context.Background(), account.User.Id, "TXN-missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestBalanceMatchesLedger(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	_, err := service.Transfer(ctx, account.SessionToken, transferOf("120.00", "4271"))
	require.NoError(t, err)
	_, err = service.PayBill(ctx, account.SessionToken, PayBillParams{
		Pin:        "4271",
		Amount:     decimal.RequireFromString("30.25"),
		BillerName: "KPN Telecom",
		Category:   "telecom",
	})
	require.NoError(t, err)
	pending, err := service.SubmitDeposit(ctx, account.SessionToken, DepositParams{
		Amount: decimal.RequireFromString("500.00"),
		Source: "Salary BV",
	})
	require.NoError(t, err)
	_, err = service.ClearDeposit(ctx, account.User.Id, pending.Id)
	require.NoError(t, err)

	transactions, err := service.Transactions(ctx, account.SessionToken, 50, 0)
	require.NoError(t, err)

	sum := decimal.RequireFromString("5000.00")
	for _, txn := range transactions {
		if txn.Status == models.TransactionStatusCompleted {
			sum = sum.Add(txn.Amount)
		}
	}

	me, err := service.CurrentUser(ctx, account.SessionToken)
	require.NoError(t, err)
	assert.True(t, me.Balance.Equal(sum), "balance %s, ledger sum %s", me.Balance, sum)
	assert.True(t, me.Balance.Equal(decimal.RequireFromString("5349.75")))
}

func TestAdminViews(t *testing.T) {
	service, _ := newTestService(t, testConfig())
	account := openTestAccount(t, service)
	ctx := context.Background()

	users, err := service.AllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, account.User.Id, users[0].Id)

	_, err = service.Transfer(ctx, account.SessionToken, transferOf("100.00", "4271"))
	require.NoError(t, err)
	_, err = service.SubmitDeposit(ctx, account.SessionToken, DepositParams{
		Amount: decimal.RequireFromString("300.00"),
		Source: "Employer BV",
	})
	require.NoError(t, err)

	events, err := service.AdminEvents(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	seen := make(map[string]models.Event)
	for _, event := range events {
		seen[event.Name] = event
	}
	assert.Contains(t, seen, "user_created")
	require.Contains(t, seen, "transaction")
	require.Contains(t, seen, "deposit_submitted")

	// The ledger events carry the balance after the operation.
	var transferPayload struct {
		NewBalance decimal.Decimal `json:"newBalance"`
	}
	require.NoError(t, json.Unmarshal(seen["transaction"].Payload, &transferPayload))
	assert.True(t, transferPayload.NewBalance.Equal(decimal.RequireFromString("4900.00")))

	var depositPayload struct {
		NewBalance decimal.Decimal `json:"newBalance"`
	}
	require.NoError(t, json.Unmarshal(seen["deposit_submitted"].Payload, &depositPayload))
	assert.True(t, depositPayload.NewBalance.Equal(decimal.RequireFromString("4900.00")),
		"a pending deposit leaves the balance untouched")

	emails, err := service.SentEmails(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, emails)
}
