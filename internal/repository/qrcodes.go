package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// FormQRCode is a row in the form_qr_codes table.
type FormQRCode struct {
	ID             uuid.UUID
	FormID         uuid.UUID
	Label          string
	ShortCode      string
	DestinationURL string
	ScanCount      int64
	LastScannedAt  sql.NullTime
	CreatedAt      time.Time
}

const qrCodeColumns = `id, form_id, label, short_code, destination_url, scan_count, last_scanned_at, created_at`

func scanQRCode(row *sql.Row) (FormQRCode, error) {
	var c FormQRCode
	err := row.Scan(
		&c.ID, &c.FormID, &c.Label, &c.ShortCode, &c.DestinationURL,
		&c.ScanCount, &c.LastScannedAt, &c.CreatedAt,
	)
	return c, err
}

type CreateQRCodeParams struct {
	FormID         uuid.UUID
	Label          string
	ShortCode      string
	DestinationURL string
}

const createQRCode = `
INSERT INTO form_qr_codes (form_id, label, short_code, destination_url)
VALUES ($1, $2, $3, $4)
RETURNING ` + qrCodeColumns

func (q *Queries) CreateQRCode(ctx context.Context, arg CreateQRCodeParams) (FormQRCode, error) {
	return scanQRCode(q.db.QueryRowContext(ctx, createQRCode,
		arg.FormID, arg.Label, arg.ShortCode, arg.DestinationURL))
}

const getQRCodeByFormAndShortCode = `
SELECT ` + qrCodeColumns + ` FROM form_qr_codes WHERE form_id = $1 AND short_code = $2`

func (q *Queries) GetQRCodeByFormAndShortCode(ctx context.Context, formID uuid.UUID, shortCode string) (FormQRCode, error) {
	return scanQRCode(q.db.QueryRowContext(ctx, getQRCodeByFormAndShortCode, formID, shortCode))
}

const listQRCodesByFormID = `
SELECT ` + qrCodeColumns + ` FROM form_qr_codes WHERE form_id = $1 ORDER BY created_at`

func (q *Queries) ListQRCodesByFormID(ctx context.Context, formID uuid.UUID) ([]FormQRCode, error) {
	rows, err := q.db.QueryContext(ctx, listQRCodesByFormID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FormQRCode
	for rows.Next() {
		var c FormQRCode
		if err := rows.Scan(
			&c.ID, &c.FormID, &c.Label, &c.ShortCode, &c.DestinationURL,
			&c.ScanCount, &c.LastScannedAt, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const countQRCodesByFormID = `
SELECT count(*) FROM form_qr_codes WHERE form_id = $1`

func (q *Queries) CountQRCodesByFormID(ctx context.Context, formID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countQRCodesByFormID, formID).Scan(&n)
	return n, err
}

const incrementQRCodeScan = `
UPDATE form_qr_codes SET scan_count = scan_count + 1, last_scanned_at = now() WHERE id = $1`

func (q *Queries) IncrementQRCodeScan(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, incrementQRCodeScan, id)
	return err
}
