package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/ombliss-yoga/internal/service"
)

// PaymentHandler creates gateway intents and records completed payments.
type PaymentHandler struct {
	payments *service.PaymentService
	logger   *slog.Logger
}

func NewPaymentHandler(payments *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type createIntentRequest struct {
	Price float64 `json:"price"`
}

type createIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// HandleCreateIntent turns a price in dollars into a card payment intent.
//
// HTTP: POST /create-payment-intent  {"price": 19.99} → {"clientSecret": "..."}
func (h *PaymentHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	secret, err := h.payments.CreateIntent(r.Context(), req.Price)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, createIntentResponse{ClientSecret: secret})
}

type recordPaymentRequest struct {
	TransactionID string   `json:"transactionId"`
	Price         float64  `json:"price"`
	EnrollmentIDs []string `json:"enrollmentIds"`
	ClassIDs      []string `json:"classIds"`
}

// HTTP: POST /payments
func (h *PaymentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req recordPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.payments.Record(r.Context(), email, service.NewPayment{
		TransactionID: req.TransactionID,
		Price:         req.Price,
		EnrollmentIDs: req.EnrollmentIDs,
		ClassIDs:      req.ClassIDs,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleList returns the caller's payment history, newest first.
//
// HTTP: GET /payments
func (h *PaymentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	payments, err := h.payments.History(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
