package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Session  SessionConfig
	Pin      PinConfig
	Bank     BankConfig
	Mirror   MirrorConfig
	Mail     MailConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	CreateDemoUsers bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	AdminToken      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SessionConfig holds session token settings
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// PinConfig holds transaction PIN policy settings
type PinConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// BankConfig holds account defaults and the biller directory location
type BankConfig struct {
	StartingBalance string
	Currency        string
	BillersFile     string
}

// Biller is one entry of the biller directory file.
type Biller struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// MirrorConfig holds the optional remote mirror settings.
// The mirror is disabled when URL or APIKey is empty.
type MirrorConfig struct {
	URL          string
	APIKey       string
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// MailConfig holds the optional outbound mail API settings.
// Delivery is skipped (but still recorded locally) when APIURL is empty.
type MailConfig struct {
	APIURL      string
	FromAddress string
	SendTimeout time.Duration
}
