// Package handlers wires the four domain endpoints and /healthz onto
// chi, translating HTTP <-> the application-layer orchestration services.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/application/arbiter"
	appreceipt "github.com/dinnerarbiter/core/internal/application/receipt"
	"github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/middleware"
	"github.com/dinnerarbiter/core/internal/ports/inbound"
	apperrors "github.com/dinnerarbiter/core/pkg/errors"
)

// Handlers holds every application service the HTTP layer dispatches
// into, plus the shared request validator.
type Handlers struct {
	decisionSvc *arbiter.DecisionService
	feedbackSvc *arbiter.FeedbackService
	drmSvc      *arbiter.DRMService
	receiptSvc  *appreceipt.Service
	cfg         *config.Config
	logger      *zap.Logger
	validate    *validator.Validate
}

func New(
	decisionSvc *arbiter.DecisionService,
	feedbackSvc *arbiter.FeedbackService,
	drmSvc *arbiter.DRMService,
	receiptSvc *appreceipt.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		decisionSvc: decisionSvc,
		feedbackSvc: feedbackSvc,
		drmSvc:      drmSvc,
		receiptSvc:  receiptSvc,
		cfg:         cfg,
		logger:      logger.Named("handlers"),
		validate:    validator.New(),
	}
}

func (h *Handlers) decodeAndValidate(r *http.Request, dst interface{}) *apperrors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewBadRequestError("malformed JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	requestID := middleware.RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, requestID))
}

// Decision handles POST /decision.
func (h *Handlers) Decision(w http.ResponseWriter, r *http.Request) {
	var req inbound.DecisionRequest
	if appErr := h.decodeAndValidate(r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	householdKey := resolveHouseholdKey(r, req.HouseholdKey)
	now, err := time.Parse(time.RFC3339, req.NowISO)
	if err != nil {
		h.writeError(w, r, apperrors.NewBadRequestError("nowIso must be RFC3339"))
		return
	}

	sig := arbiter.Signal{
		TimeWindow:       req.SignalValue.TimeWindow,
		Energy:           req.SignalValue.Energy,
		CalendarConflict: req.SignalValue.CalendarConflict,
	}

	resp, err := h.decisionSvc.Decide(r.Context(), householdKey, now, sig)
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(err, "failed to compute decision"))
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Feedback handles POST /feedback.
func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var req inbound.FeedbackRequest
	if appErr := h.decodeAndValidate(r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	householdKey := resolveHouseholdKey(r, "")
	resp, err := h.feedbackSvc.Feedback(r.Context(), householdKey, req)
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(err, "failed to record feedback"))
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// DRM handles POST /drm.
func (h *Handlers) DRM(w http.ResponseWriter, r *http.Request) {
	var req inbound.DRMRequest
	if appErr := h.decodeAndValidate(r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	householdKey := resolveHouseholdKey(r, "")
	resp, err := h.drmSvc.Rescue(r.Context(), householdKey, req.TriggerReason, time.Now())
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(err, "failed to compute rescue"))
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ReceiptImport handles POST /receipt/import.
func (h *Handlers) ReceiptImport(w http.ResponseWriter, r *http.Request) {
	var req inbound.ReceiptImportRequest
	if appErr := h.decodeAndValidate(r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	householdKey := resolveHouseholdKey(r, req.HouseholdKey)

	imageBase64 := ""
	if req.ReceiptImageBase64 != nil {
		imageBase64 = *req.ReceiptImageBase64
	}

	ocrInput := h.cfg.OCR.APIKey
	if ocrInput == "" {
		ocrInput = imageBase64
	}

	svcReq := appreceipt.Request{
		HouseholdKey:       householdKey,
		Source:             receipt.Source(req.Source),
		ReceiptImageBase64: imageBase64,
		OCRKeyOrInput:      ocrInput,
		VendorNameHint:     req.VendorName,
		PurchasedAtHint:    req.PurchasedAtISO,
	}

	result, err := h.receiptSvc.Import(r.Context(), svcReq, time.Now())
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(err, "failed to import receipt"))
		return
	}

	h.writeJSON(w, http.StatusOK, inbound.ReceiptImportResponse{
		ReceiptImportID: result.Import.ID,
		Status:          string(result.Import.StatusValue),
		IsDuplicate:     result.Import.IsDuplicate,
	})
}

// resolveHouseholdKey prefers the key the auth middleware attached to the
// request context (the bearer token's household claim); the body field
// is only a fallback for unauthenticated local development.
func resolveHouseholdKey(r *http.Request, fallback string) string {
	if key := middleware.HouseholdKeyFromContext(r.Context()); key != "" {
		return key
	}
	return fallback
}
