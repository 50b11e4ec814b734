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

func TestCreateUser_DuplicateEmail(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	createTestUser(t, service, "5000.00")

	dup := &models.User{
		Id:           "USR-dup",
		FullName:     "Dup User",
		Email:        testEmail(t),
		Balance:      decimal.RequireFromString("5000.00"),
		Currency:     "EUR",
		Status:       models.UserStatusActive,
		CreatedAt:    time.Now(),
		PasswordHash: "hash",
		PinHash:      "pinhash",
	}
	if err := service.CreateUser(ctx, dup); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUser_DuplicateId(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	dup := &models.User{
		Id:           user.Id,
		FullName:     "Dup User",
		Email:        "other-" + testEmail(t),
		Balance:      decimal.RequireFromString("5000.00"),
		Currency:     "EUR",
		Status:       models.UserStatusActive,
		CreatedAt:    time.Now(),
		PasswordHash: "hash",
		PinHash:      "pinhash",
	}
	err := service.CreateUser(ctx, dup)
	if err == nil {
		t.Fatal("Expected an error for a duplicate id")
	}
	if errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("A duplicate id must not be reported as an email conflict, got %v", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdatePinState(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	lockedUntil := time.Now().Add(30 * time.Minute)
	if err := service.UpdatePinState(ctx, user.Id, 0, &lockedUntil); err != nil {
		t.Fatalf("UpdatePinState failed: %v", err)
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if fresh.FailedPinAttempts != 0 {
		t.Errorf("Expected 0 failed attempts, got %d", fresh.FailedPinAttempts)
	}
	if fresh.LockedUntil == nil {
		t.Fatal("Expected locked_until to be set")
	}
	if fresh.LockedUntil.Unix() != lockedUntil.Unix() {
		t.Errorf("Expected locked_until %v, got %v", lockedUntil, *fresh.LockedUntil)
	}

	// Clearing the lock
	if err := service.UpdatePinState(ctx, user.Id, 2, nil); err != nil {
		t.Fatalf("UpdatePinState failed: %v", err)
	}
	fresh, err = service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if fresh.FailedPinAttempts != 2 {
		t.Errorf("Expected 2 failed attempts, got %d", fresh.FailedPinAttempts)
	}
	if fresh.LockedUntil != nil {
		t.Errorf("Expected locked_until to be cleared, got %v", *fresh.LockedUntil)
	}
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	if err := service.UpdateProfile(ctx, user.Id, store.ProfileUpdate{Phone: "+31 6 0000 0000"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if fresh.Phone != "+31 6 0000 0000" {
		t.Errorf("Expected updated phone, got %s", fresh.Phone)
	}
	if fresh.FullName != user.FullName {
		t.Errorf("Expected full name to be untouched, got %s", fresh.FullName)
	}
	if fresh.Email != user.Email {
		t.Errorf("Expected email to be untouched, got %s", fresh.Email)
	}
}

func TestUpdateCredentials_PartialFields(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	if err := service.UpdateCredentials(ctx, user.Id, store.CredentialUpdate{PinHash: "newpinhash"}); err != nil {
		t.Fatalf("UpdateCredentials failed: %v", err)
	}

	fresh, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if fresh.PinHash != "newpinhash" {
		t.Errorf("Expected updated pin hash, got %s", fresh.PinHash)
	}
	if fresh.PasswordHash != user.PasswordHash {
		t.Errorf("Expected password hash to be untouched, got %s", fresh.PasswordHash)
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.UpdateProfile(context.Background(), "USR-missing", store.ProfileUpdate{Phone: "x"})
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}
