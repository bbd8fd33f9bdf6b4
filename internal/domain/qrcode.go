package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShortCodeLength is the length of generated QR short codes.
const ShortCodeLength = 8

// QRCode is a generated QR code pointing at a form's public URL.
// Immutable once created except for scan telemetry.
type QRCode struct {
	ID             uuid.UUID
	FormID         uuid.UUID
	Label          string
	ShortCode      string
	DestinationURL string
	ScanCount      int64
	LastScannedAt  *time.Time
	CreatedAt      time.Time
}

// GenerateQRCodeParams holds input for generating a QR code.
type GenerateQRCodeParams struct {
	FormID uuid.UUID
	Label  string
}
