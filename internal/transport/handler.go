// Package transport is the HTTP layer. Handlers decode, delegate to the
// engine and payment packages, and encode; no business rules live here.
package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/govtech-bb/formflow/pkg/navigator"
	"github.com/govtech-bb/formflow/pkg/openapi"
	"github.com/govtech-bb/formflow/pkg/payment"
	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/validate"
	"github.com/govtech-bb/formflow/pkg/values"
)

// Handler wires form and payment endpoints to their services.
type Handler struct {
	forms    map[string]schema.Form
	provider payment.Provider
	payCfg   payment.Config
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs the handler with its dependencies. The provider is built
// once in main and injected; handlers never construct their own.
func New(forms map[string]schema.Form, provider payment.Provider, payCfg payment.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		forms:    forms,
		provider: provider,
		payCfg:   payCfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts all endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/payments/initiate", h.HandleInitiatePayment)
	r.Post("/api/payments/verify", h.HandleVerifyPayment)
	r.Get("/payment/callback", h.HandlePaymentCallback)
	r.Post("/forms/{formID}/submit", h.HandleSubmit)
	r.Get("/forms/{formID}/openapi.json", h.HandleOpenAPI)
}

// HandleInitiatePayment handles POST /api/payments/initiate.
func (h *Handler) HandleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req payment.InitiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReferenceID == "" || req.ServiceType == "" {
		writeError(w, http.StatusBadRequest, "referenceId and serviceType are required")
		return
	}

	res, err := h.provider.Initiate(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "payment initiation failed",
			slog.String("service_type", req.ServiceType),
			slog.String("reference_id", req.ReferenceID),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "payment initiation failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleVerifyPayment handles POST /api/payments/verify. Gateway failures
// surface the transaction ID so support can trace the payment.
func (h *Handler) HandleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TransactionID == "" && req.ReferenceID == "" {
		writeError(w, http.StatusBadRequest, "transactionId or referenceId is required")
		return
	}

	res, err := h.provider.Verify(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "payment verification failed",
			slog.String("transaction_id", req.TransactionID),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway,
			fmt.Sprintf("payment verification failed for transaction %s", req.TransactionID))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandlePaymentCallback handles GET /payment/callback?tx=&rid=. A reference
// ID carrying a return URL for a different environment gets a redirect
// there; everything else verifies on this origin. Decode failure is not an
// error, just no redirect.
func (h *Handler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	tx := r.URL.Query().Get("tx")
	rid := r.URL.Query().Get("rid")
	if tx == "" || rid == "" {
		writeError(w, http.StatusBadRequest, "missing transaction or reference identifier")
		return
	}

	if returnURL, _, ok := payment.DecodeReference(rid, h.payCfg.AllowedReturnHosts); ok {
		if !sameOrigin(returnURL, h.payCfg.BaseURL) {
			base := strings.TrimSuffix(returnURL, "/")
			target := base + "/payment/callback?tx=" + url.QueryEscape(tx) + "&rid=" + url.QueryEscape(rid)
			h.logger.InfoContext(r.Context(), "redirecting payment callback",
				slog.String("target_origin", returnURL))
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
	}

	res, err := h.provider.Verify(r.Context(), payment.VerificationRequest{
		TransactionID: tx,
		ReferenceID:   rid,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "callback verification failed",
			slog.String("transaction_id", tx),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway,
			fmt.Sprintf("payment verification failed for transaction %s", tx))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type submitResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
	Data    *submitData           `json:"data,omitempty"`
}

type submitData struct {
	SubmissionID    string  `json:"submissionId"`
	FormID          string  `json:"formId"`
	Status          string  `json:"status"`
	ProcessedAt     string  `json:"processedAt"`
	ReferenceNumber string  `json:"referenceNumber"`
	PaymentRequired bool    `json:"paymentRequired,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
}

// HandleSubmit handles POST /forms/{formID}/submit. The whole form is
// validated server-side regardless of what the client already checked.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.forms[chi.URLParam(r, "formID")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown form")
		return
	}

	var payload values.Map
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := navigator.ValidateForm(form, payload)
	if !result.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			Success: false,
			Message: "validation failed",
			Errors:  result.Errors,
		})
		return
	}

	data := &submitData{
		SubmissionID:    uuid.NewString(),
		FormID:          form.ID,
		Status:          "received",
		ProcessedAt:     h.now().UTC().Format(time.RFC3339),
		ReferenceNumber: referenceNumber(form.ID, h.now()),
	}
	if svc, err := h.payCfg.Service(form.ServiceType); err == nil {
		data.PaymentRequired = true
		data.Amount = svc.Amount
	}

	h.logger.InfoContext(r.Context(), "form submitted",
		slog.String("form_id", form.ID),
		slog.String("reference_number", data.ReferenceNumber))

	writeJSON(w, http.StatusOK, submitResponse{
		Success: true,
		Message: "Application received",
		Data:    data,
	})
}

// HandleOpenAPI handles GET /forms/{formID}/openapi.json.
func (h *Handler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	form, ok := h.forms[chi.URLParam(r, "formID")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown form")
		return
	}

	doc, err := openapi.BuildDocument(form)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "openapi export failed",
			slog.String("form_id", form.ID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not build document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// referenceNumber is the human-facing identifier printed on confirmations,
// distinct from the opaque submission UUID.
func referenceNumber(formID string, now time.Time) string {
	id := uuid.NewString()
	return fmt.Sprintf("%s-%d-%s", initials(formID), now.Year(), id[:8])
}

// initials takes the first letter of each hyphenated word, uppercased.
// Words that do not start with a letter contribute nothing, and an id with
// no letters at all falls back to a fixed prefix.
func initials(formID string) string {
	out := make([]byte, 0, 4)
	startOfWord := true
	for i := 0; i < len(formID) && len(out) < 4; i++ {
		c := formID[i]
		if c == '-' {
			startOfWord = true
			continue
		}
		if startOfWord {
			switch {
			case c >= 'a' && c <= 'z':
				out = append(out, c-'a'+'A')
			case c >= 'A' && c <= 'Z':
				out = append(out, c)
			}
		}
		startOfWord = false
	}
	if len(out) == 0 {
		return "FORM"
	}
	return string(out)
}

func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Scheme == ub.Scheme && ua.Host == ub.Host
}
