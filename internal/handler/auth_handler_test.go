package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vanstra-bank-go/internal/bank"
	"vanstra-bank-go/internal/database"
	"vanstra-bank-go/internal/events"
	"vanstra-bank-go/internal/mailer"
	"vanstra-bank-go/internal/mirror"
	"vanstra-bank-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func newTestBank(t *testing.T) *bank.Service {
	t.Helper()

	db, err := database.NewMemoryService()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	cfg := &models.Config{
		Session: models.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Pin:     models.PinConfig{MaxAttempts: 3, LockoutDuration: 30 * time.Minute},
		Bank:    models.BankConfig{StartingBalance: "5000.00", Currency: "EUR"},
		Mirror:  models.MirrorConfig{QueueSize: 16, MaxAttempts: 1, RetryBackoff: time.Millisecond},
		Mail:    models.MailConfig{SendTimeout: time.Second},
	}

	bus := events.NewBus(db)
	queue := mirror.NewQueue(nil, cfg.Mirror)
	sender := mailer.NewSender(db, bus, queue, cfg.Mail)
	billers := []models.Biller{{Name: "Nuon Energie", Category: "utilities"}}

	service, err := bank.NewService(db, bus, sender, queue, cfg, billers)
	if err != nil {
		t.Fatalf("Failed to build bank service: %v", err)
	}
	return service
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body map[string]any, token string) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return envelope
}

func signupBody(email string) map[string]any {
	return map[string]any{
		"fullName": "Anna Tester",
		"email":    email,
		"password": "a good password",
		"pin":      "4271",
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	bankService := newTestBank(t)
	handler := NewAuthHandler(bankService)

	tests := []struct {
		name           string
		requestBody    map[string]any
		wantStatusCode int
		wantErr        bool
	}{
		{
			name:           "valid signup",
			requestBody:    signupBody("anna@example.com"),
			wantStatusCode: http.StatusCreated,
			wantErr:        false,
		},
		{
			name: "weak password",
			requestBody: map[string]any{
				"fullName": "Anna Tester",
				"email":    "weak@example.com",
				"password": "short",
				"pin":      "4271",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErr:        true,
		},
		{
			name: "bad pin",
			requestBody: map[string]any{
				"fullName": "Anna Tester",
				"email":    "pin@example.com",
				"password": "a good password",
				"pin":      "abc",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErr:        true,
		},
		{
			name:           "duplicate email",
			requestBody:    signupBody("anna@example.com"),
			wantStatusCode: http.StatusConflict,
			wantErr:        true,
		},
		{
			name: "missing fields",
			requestBody: map[string]any{
				"email": "empty@example.com",
			},
			wantStatusCode: http.StatusBadRequest,
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.Signup, "/auth/signup", tt.requestBody, "")

			if w.Code != tt.wantStatusCode {
				t.Errorf("got status %v, want %v", w.Code, tt.wantStatusCode)
			}

			envelope := decodeEnvelope(t, w)
			if tt.wantErr {
				if envelope["success"] != false || envelope["error"] == "" {
					t.Errorf("expected error envelope, got %v", envelope)
				}
			} else {
				if envelope["success"] != true {
					t.Errorf("expected success envelope, got %v", envelope)
				}
				data := envelope["data"].(map[string]any)
				if data["token"] == "" {
					t.Error("expected session token in response")
				}
			}
		})
	}
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	bankService := newTestBank(t)
	handler := NewAuthHandler(bankService)

	w := postJSON(t, handler.Signup, "/auth/signup", signupBody("login@example.com"), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed with status %d", w.Code)
	}

	// Wrong password
	w = postJSON(t, handler.Login, "/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "wrong password",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %v, want %v", w.Code, http.StatusUnauthorized)
	}

	// Correct password
	w = postJSON(t, handler.Login, "/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "a good password",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %v, want %v", w.Code, http.StatusOK)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("expected session token")
	}

	// Me with the fresh token
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %v, want %v", rec.Code, http.StatusOK)
	}

	// Me without a token
	req = httptest.NewRequest("GET", "/me", nil)
	rec = httptest.NewRecorder()
	handler.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got status %v, want %v", rec.Code, http.StatusUnauthorized)
	}
}

func TestLedgerHandler_Transfer(t *testing.T) {
	bankService := newTestBank(t)
	authHandler := NewAuthHandler(bankService)
	ledgerHandler := NewLedgerHandler(bankService)

	w := postJSON(t, authHandler.Signup, "/auth/signup", signupBody("funds@example.com"), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed with status %d", w.Code)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	token := data["token"].(string)

	tests := []struct {
		name           string
		requestBody    map[string]any
		wantStatusCode int
	}{
		{
			name: "valid transfer",
			requestBody: map[string]any{
				"pin":              "4271",
				"amount":           "100.00",
				"recipientName":    "Jan Smit",
				"recipientAccount": "NL91ABNA0417164300",
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "wrong pin",
			requestBody: map[string]any{
				"pin":              "0000",
				"amount":           "100.00",
				"recipientName":    "Jan Smit",
				"recipientAccount": "NL91ABNA0417164300",
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "insufficient funds",
			requestBody: map[string]any{
				"pin":              "4271",
				"amount":           "999999.00",
				"recipientName":    "Jan Smit",
				"recipientAccount": "NL91ABNA0417164300",
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "missing recipient",
			requestBody: map[string]any{
				"pin":    "4271",
				"amount": "10.00",
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, ledgerHandler.Transfer, "/transactions/transfer", tt.requestBody, token)
			if w.Code != tt.wantStatusCode {
				t.Errorf("got status %v, want %v: %s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
