package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/repository"
	"github.com/calebreed/formpulse/internal/storage"
)

// qrImageSize is the rendered PNG edge length in pixels.
const qrImageSize = 512

// QRCodeService defines the interface for QR code operations.
type QRCodeService interface {
	// Generate creates a QR code for a form, enforcing the per-form ceiling.
	Generate(ctx context.Context, account *domain.Account, params domain.GenerateQRCodeParams) (*domain.QRCode, error)

	// List retrieves all QR codes for a form, scoped to the account.
	List(ctx context.Context, formID, accountID uuid.UUID) ([]domain.QRCode, error)

	// RenderPNG returns the PNG image for a short code and records the scan.
	// This is a public, unauthenticated read.
	RenderPNG(ctx context.Context, formID uuid.UUID, shortCode string) ([]byte, error)
}

type qrCodeService struct {
	queries *repository.Queries
	store   storage.Storage
	logger  *slog.Logger

	// baseURL is the public origin encoded into destination URLs.
	baseURL string
}

// NewQRCodeService creates a new QRCodeService. Rendered PNGs are cached in
// the given storage backend keyed by short code.
func NewQRCodeService(queries *repository.Queries, store storage.Storage, baseURL string, logger *slog.Logger) QRCodeService {
	return &qrCodeService{
		queries: queries,
		store:   store,
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Generate creates a QR code for a form.
func (s *qrCodeService) Generate(ctx context.Context, account *domain.Account, params domain.GenerateQRCodeParams) (*domain.QRCode, error) {
	const op = "QRCodeService.Generate"

	label := strings.TrimSpace(params.Label)
	if label == "" {
		return nil, domain.NewValidationError(op, "label", "QR code label is required")
	}

	repoForm, err := s.queries.GetFormByIDAndAccountID(ctx, params.FormID, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", params.FormID.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", params.FormID)
		return nil, domain.Internal(err, op, "Failed to generate QR code")
	}

	count, err := s.queries.CountQRCodesByFormID(ctx, repoForm.ID)
	if err != nil {
		s.logger.Error("failed to count QR codes", "error", err, "op", op, "form_id", repoForm.ID)
		return nil, domain.Internal(err, op, "Failed to generate QR code")
	}

	limits := domain.ParsePlanLimits(account.Plan)
	if err := domain.AssertQRLimit(limits, count); err != nil {
		s.logger.Info("QR code generation blocked by plan limit",
			"account_id", account.ID, "form_id", repoForm.ID,
			"current", count, "limit", limits.QRCodesPerForm)
		return nil, err
	}

	shortCode, err := newShortCode()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to generate QR code")
	}

	repoCode, err := s.queries.CreateQRCode(ctx, repository.CreateQRCodeParams{
		FormID:         repoForm.ID,
		Label:          label,
		ShortCode:      shortCode,
		DestinationURL: s.destinationURL(shortCode),
	})
	if err != nil {
		s.logger.Error("failed to create QR code", "error", err, "op", op, "form_id", repoForm.ID)
		return nil, domain.Internal(err, op, "Failed to generate QR code")
	}

	code := repoQRCodeToDomain(repoCode)
	s.logger.Info("QR code generated",
		"qr_code_id", code.ID, "form_id", code.FormID, "short_code", code.ShortCode)

	return &code, nil
}

// List retrieves all QR codes for a form, scoped to the account.
func (s *qrCodeService) List(ctx context.Context, formID, accountID uuid.UUID) ([]domain.QRCode, error) {
	const op = "QRCodeService.List"

	if _, err := s.queries.GetFormByIDAndAccountID(ctx, formID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "form", formID.String())
		}
		s.logger.Error("failed to get form", "error", err, "op", op, "form_id", formID)
		return nil, domain.Internal(err, op, "Failed to list QR codes")
	}

	repoCodes, err := s.queries.ListQRCodesByFormID(ctx, formID)
	if err != nil {
		s.logger.Error("failed to list QR codes", "error", err, "op", op, "form_id", formID)
		return nil, domain.Internal(err, op, "Failed to list QR codes")
	}

	codes := make([]domain.QRCode, len(repoCodes))
	for i, rc := range repoCodes {
		codes[i] = repoQRCodeToDomain(rc)
	}
	return codes, nil
}

// RenderPNG returns the PNG image for a short code and records the scan.
func (s *qrCodeService) RenderPNG(ctx context.Context, formID uuid.UUID, shortCode string) ([]byte, error) {
	const op = "QRCodeService.RenderPNG"

	repoCode, err := s.queries.GetQRCodeByFormAndShortCode(ctx, formID, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "qr code", shortCode)
		}
		s.logger.Error("failed to get QR code", "error", err, "op", op, "short_code", shortCode)
		return nil, domain.Internal(err, op, "Failed to load QR code")
	}

	// Telemetry only; a failed increment must not block the image.
	if err := s.queries.IncrementQRCodeScan(ctx, repoCode.ID); err != nil {
		s.logger.Warn("failed to record QR scan", "error", err, "qr_code_id", repoCode.ID)
	}

	key := qrStorageKey(shortCode)
	if png, ok := s.cachedPNG(ctx, key); ok {
		return png, nil
	}

	png, err := qrcode.Encode(repoCode.DestinationURL, qrcode.Medium, qrImageSize)
	if err != nil {
		s.logger.Error("failed to render QR code", "error", err, "op", op, "short_code", shortCode)
		return nil, domain.Internal(err, op, "Failed to render QR code")
	}

	if err := s.store.Put(ctx, key, bytes.NewReader(png), storage.PutOptions{
		ContentType: "image/png",
		Overwrite:   true,
		Public:      true,
	}); err != nil {
		// Cache miss next time; still serve the image.
		s.logger.Warn("failed to cache QR image", "error", err, "key", key)
	}

	return png, nil
}

func (s *qrCodeService) cachedPNG(ctx context.Context, key string) ([]byte, bool) {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.logger.Warn("failed to read cached QR image", "error", err, "key", key)
		}
		return nil, false
	}
	defer rc.Close()

	png, err := io.ReadAll(rc)
	if err != nil {
		s.logger.Warn("failed to read cached QR image", "error", err, "key", key)
		return nil, false
	}
	return png, true
}

func (s *qrCodeService) destinationURL(shortCode string) string {
	return fmt.Sprintf("%s/f/%s", s.baseURL, shortCode)
}

// newShortCode returns a fresh lowercase short code. The UNIQUE constraint
// on short_code catches the unlikely collision.
func newShortCode() (string, error) {
	id, err := gonanoid.New(domain.ShortCodeLength)
	if err != nil {
		return "", err
	}
	return strings.ToLower(id), nil
}

func qrStorageKey(shortCode string) string {
	return "qr/" + shortCode + ".png"
}
