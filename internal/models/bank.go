package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// User account statuses.
const (
	UserStatusActive = "active"
	UserStatusLocked = "locked"
)

// Transaction types and statuses.
const (
	TransactionTypeTransfer = "transfer"
	TransactionTypePayment  = "payment"
	TransactionTypeDeposit  = "deposit"

	TransactionStatusCompleted = "completed"
	TransactionStatusPending   = "pending"
)

// User represents a bank customer and their account record.
// Credential hashes never leave the store layer unsanitized.
type User struct {
	Id                string          `db:"id"`
	FullName          string          `db:"full_name"`
	Email             string          `db:"email"`
	DateOfBirth       string          `db:"date_of_birth"`
	Phone             string          `db:"phone"`
	AccountNumber     string          `db:"account_number"`
	AccountType       string          `db:"account_type"`
	Tier              string          `db:"tier"`
	Medal             string          `db:"medal"`
	Balance           decimal.Decimal `db:"balance"`
	Currency          string          `db:"currency"`
	Status            string          `db:"status"`
	CreatedAt         time.Time       `db:"created_at"`
	LastLogin         *time.Time      `db:"last_login"`
	IsOnline          bool            `db:"is_online"`
	Avatar            string          `db:"avatar"`
	PasswordHash      string          `db:"password_hash"`
	PinHash           string          `db:"pin_hash"`
	FailedPinAttempts int             `db:"failed_pin_attempts"`
	LockedUntil       *time.Time      `db:"locked_until"`
}

// Transaction represents an immutable ledger entry (audit trail, newest first).
type Transaction struct {
	Id                 string          `json:"id" db:"id"`
	UserId             string          `json:"userId" db:"user_id"`
	Type               string          `json:"type" db:"type"`
	Subtype            string          `json:"subtype" db:"subtype"`
	Description        string          `json:"description" db:"description"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	Currency           string          `json:"currency" db:"currency"`
	RecipientName      string          `json:"recipientName,omitempty" db:"recipient_name"`
	RecipientAccount   string          `json:"recipientAccount,omitempty" db:"recipient_account"`
	RecipientBank      string          `json:"recipientBank,omitempty" db:"recipient_bank"`
	Category           string          `json:"category,omitempty" db:"category"`
	ReferenceNumber    string          `json:"referenceNumber,omitempty" db:"reference_number"`
	Note               string          `json:"note,omitempty" db:"note"`
	BalanceBefore      decimal.Decimal `json:"-" db:"balance_before"`
	BalanceAfter       decimal.Decimal `json:"-" db:"balance_after"`
	Status             string          `json:"status" db:"status"`
	Reference          string          `json:"reference" db:"reference"`
	Timestamp          time.Time       `json:"timestamp" db:"created_at"`
	EstimatedClearance *time.Time      `json:"estimatedClearance,omitempty" db:"estimated_clearance"`
}

// Session links a token id to a user for a bounded lifetime.
// Expiry is checked lazily at read time; there is no background sweep.
type Session struct {
	TokenId   string    `db:"token_id"`
	UserId    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// PasswordResetRequest is a single-use recovery token.
type PasswordResetRequest struct {
	Token     string    `db:"token"`
	UserId    string    `db:"user_id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Event is one entry of the admin-visible audit log.
type Event struct {
	Id        int64           `json:"id" db:"id"`
	Name      string          `json:"event" db:"name"`
	Payload   json.RawMessage `json:"data" db:"payload"`
	Timestamp time.Time       `json:"timestamp" db:"created_at"`
}

// ChatMessage is one entry of the support chat log.
type ChatMessage struct {
	Id        string    `json:"id" db:"id"`
	UserId    string    `json:"userId" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	From      string    `json:"from" db:"sender"`
	System    bool      `json:"system,omitempty" db:"system"`
	Read      bool      `json:"read" db:"read"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// Email is a locally recorded outbound notification.
// It is stored before delivery is attempted and regardless of the outcome.
type Email struct {
	Id        string    `json:"id" db:"id"`
	To        string    `json:"to" db:"recipient"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// ClientUser is the user view returned to the account owner.
type ClientUser struct {
	Id            string          `json:"id"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	Tier          string          `json:"tier"`
	Medal         string          `json:"medal"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Avatar        string          `json:"avatar,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	Transactions  []Transaction   `json:"transactions"`
}

// AdminUser is the user view exposed on the admin surface.
// It carries account health fields but never credential material.
type AdminUser struct {
	Id                string          `json:"id"`
	FullName          string          `json:"fullName"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	AccountNumber     string          `json:"accountNumber"`
	Balance           decimal.Decimal `json:"balance"`
	Status            string          `json:"status"`
	IsOnline          bool            `json:"isOnline"`
	LastLogin         *time.Time      `json:"lastLogin"`
	CreatedAt         time.Time       `json:"createdAt"`
	FailedPinAttempts int             `json:"failedPinAttempts"`
}

// SanitizeForClient strips credential material for the account owner's view.
func (u *User) SanitizeForClient(transactions []Transaction) ClientUser {
	if transactions == nil {
		transactions = []Transaction{}
	}
	return ClientUser{
		Id:            u.Id,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		AccountNumber: u.AccountNumber,
		AccountType:   u.AccountType,
		Tier:          u.Tier,
		Medal:         u.Medal,
		Balance:       u.Balance,
		Currency:      u.Currency,
		Avatar:        u.Avatar,
		CreatedAt:     u.CreatedAt,
		Transactions:  transactions,
	}
}

// SanitizeForAdmin strips credential material for the admin surface.
func (u *User) SanitizeForAdmin() AdminUser {
	return AdminUser{
		Id:                u.Id,
		FullName:          u.FullName,
		Email:             u.Email,
		Phone:             u.Phone,
		AccountNumber:     u.AccountNumber,
		Balance:           u.Balance,
		Status:            u.Status,
		IsOnline:          u.IsOnline,
		LastLogin:         u.LastLogin,
		CreatedAt:         u.CreatedAt,
		FailedPinAttempts: u.FailedPinAttempts,
	}
}
