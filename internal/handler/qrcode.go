package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/metrics"
	"github.com/calebreed/formpulse/internal/service"
)

// QRCodeHandler serves QR code generation for form owners and the public
// PNG endpoint scanned codes resolve to.
type QRCodeHandler struct {
	qrCodes service.QRCodeService
	logger  *slog.Logger
}

// NewQRCodeHandler creates a new QRCodeHandler.
func NewQRCodeHandler(qrCodes service.QRCodeService, logger *slog.Logger) *QRCodeHandler {
	return &QRCodeHandler{qrCodes: qrCodes, logger: logger}
}

type generateQRCodeRequest struct {
	Label string `json:"label"`
}

// Generate handles POST /api/forms/{formID}/qr.
func (h *QRCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req generateQRCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	code, err := h.qrCodes.Generate(r.Context(), account, domain.GenerateQRCodeParams{
		FormID: formID,
		Label:  req.Label,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.QRCodesGenerated.Inc()
	respondJSON(w, http.StatusCreated, map[string]interface{}{"qr_code": toQRCodeDTO(*code)})
}

// List handles GET /api/forms/{formID}/qr.
func (h *QRCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	codes, err := h.qrCodes.List(r.Context(), formID, account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	dtos := make([]qrCodeDTO, len(codes))
	for i, c := range codes {
		dtos[i] = toQRCodeDTO(c)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"qr_codes": dtos})
}

// Image handles GET /api/public/forms/{formID}/qr/{shortCode}.png. This
// is the unauthenticated endpoint printed QR codes point at.
func (h *QRCodeHandler) Image(w http.ResponseWriter, r *http.Request) {
	formID, err := pathUUID(r, "formID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shortCode := strings.TrimSuffix(r.PathValue("shortCode"), ".png")
	if shortCode == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	png, err := h.qrCodes.RenderPNG(r.Context(), formID, shortCode)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.QRScans.Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("qr image write failed", slog.String("error", err.Error()))
	}
}
