package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vanstra-bank-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func TestAppendEvent_CapAndOrder(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	// Overflow the cap and verify only the newest entries survive
	for i := 0; i < adminEventCap+20; i++ {
		name := fmt.Sprintf("event_%03d", i)
		if err := service.AppendEvent(ctx, name, []byte(`{}`)); err != nil {
			t.Fatalf("AppendEvent %d failed: %v", i, err)
		}
	}

	events, err := service.GetEvents(ctx)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != adminEventCap {
		t.Fatalf("Expected %d events, got %d", adminEventCap, len(events))
	}

	// Newest first
	if events[0].Name != fmt.Sprintf("event_%03d", adminEventCap+19) {
		t.Errorf("Expected newest event first, got %s", events[0].Name)
	}
	// Oldest surviving entry is the one just inside the cap
	if events[len(events)-1].Name != fmt.Sprintf("event_%03d", 20) {
		t.Errorf("Expected oldest surviving event event_020, got %s", events[len(events)-1].Name)
	}
}

func TestChatMessages(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "5000.00")

	has, err := service.HasUserChatMessage(ctx, user.Id)
	if err != nil {
		t.Fatalf("HasUserChatMessage failed: %v", err)
	}
	if has {
		t.Error("Expected no chat messages yet")
	}

	msg := &models.ChatMessage{
		Id:        "MSG-1",
		UserId:    user.Id,
		Message:   "hello",
		From:      "user",
		Timestamp: time.Now(),
	}
	if err := service.AppendChatMessage(ctx, msg); err != nil {
		t.Fatalf("AppendChatMessage failed: %v", err)
	}

	has, err = service.HasUserChatMessage(ctx, user.Id)
	if err != nil {
		t.Fatalf("HasUserChatMessage failed: %v", err)
	}
	if !has {
		t.Error("Expected a user chat message to be recorded")
	}

	messages, err := service.GetChatMessages(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetChatMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Message != "hello" {
		t.Errorf("Expected message 'hello', got %s", messages[0].Message)
	}
}

func TestRecordEmail(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	email := &models.Email{
		Id:        "MAIL-1",
		To:        "user@example.com",
		Subject:   "Welcome",
		Body:      "Hello",
		Timestamp: time.Now(),
	}
	if err := service.RecordEmail(ctx, email); err != nil {
		t.Fatalf("RecordEmail failed: %v", err)
	}

	emails, err := service.GetSentEmails(ctx)
	if err != nil {
		t.Fatalf("GetSentEmails failed: %v", err)
	}
	if len(emails) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(emails))
	}
	if emails[0].Subject != "Welcome" {
		t.Errorf("Expected subject 'Welcome', got %s", emails[0].Subject)
	}
}
