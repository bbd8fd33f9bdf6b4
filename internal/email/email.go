// Package email sends transactional email over SMTP. In development it
// points at Mailhog; in production at any authenticated SMTP relay.
package email

import (
	"context"
	"time"
)

// EmailService defines the interface for sending transactional emails.
// All methods are context-aware for timeout and cancellation support.
type EmailService interface {
	// SendWeeklyDigest sends the weekly response digest to an account
	// owner.
	SendWeeklyDigest(ctx context.Context, to, name string, digest DigestData) error
}

// DigestData carries one account's weekly summary into the digest email.
type DigestData struct {
	AccountName       string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	TotalResponses    int64
	PreviousResponses int64
	AverageRating     *float64
	TopFormName       string
	TopFormResponses  int64
}

// Email represents a single email message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // empty for Mailhog
	Password string
	From     string
	FromName string
}

const (
	// DefaultFromEmail is the default sender for transactional emails.
	DefaultFromEmail = "noreply@formpulse.app"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Formpulse"
)
