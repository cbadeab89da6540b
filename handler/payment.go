package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/tinkoffpay/infra/logger"
	"github.com/mstgnz/tinkoffpay/infra/response"
	"github.com/mstgnz/tinkoffpay/infra/storage"
	"github.com/mstgnz/tinkoffpay/tinkoff"
)

// InitRequest is the demo server DTO for starting a payment session.
type InitRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	OrderID     string `json:"order_id" validate:"required,max=20"`
	PayType     string `json:"pay_type,omitempty" validate:"omitempty,oneof=O T"`
	Language    string `json:"language,omitempty" validate:"omitempty,oneof=ru en"`
	CustomerKey string `json:"customer_key,omitempty" validate:"omitempty,max=36"`
	Recurrent   bool   `json:"recurrent,omitempty"`
	Description string `json:"description,omitempty" validate:"omitempty,max=250"`
}

// ConfirmRequest is the demo server DTO for confirming a two-stage payment.
type ConfirmRequest struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
	Amount    int64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	client   *tinkoff.Client
	validate *validator.Validate
	store    *storage.SQLiteStore
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(client *tinkoff.Client, validate *validator.Validate, store *storage.SQLiteStore) *PaymentHandler {
	return &PaymentHandler{
		client:   client,
		validate: validate,
		store:    store,
	}
}

// InitPayment handles POST /init
func (h *PaymentHandler) InitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	opts := &tinkoff.InitOptions{
		PayType:     req.PayType,
		Language:    req.Language,
		CustomerKey: req.CustomerKey,
		Recurrent:   req.Recurrent,
		Description: req.Description,
	}

	resp, err := h.client.Init(ctx, req.Amount, req.OrderID, opts)
	if err != nil {
		writeGatewayError(w, r, "Init", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment initialized", resp)
}

// ConfirmPayment handles POST /confirm
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	var opts *tinkoff.ConfirmOptions
	if req.Amount > 0 {
		opts = &tinkoff.ConfirmOptions{Amount: req.Amount}
	}

	resp, err := h.client.Confirm(ctx, req.PaymentID, opts)
	if err != nil {
		writeGatewayError(w, r, "Confirm", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment confirmed", resp)
}

// ListLogs handles GET /logs
func (h *PaymentHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			response.Error(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}

	if orderID := r.URL.Query().Get("order_id"); orderID != "" {
		logs, err := h.store.FindByOrder(orderID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to load payment logs", err)
			return
		}
		response.Success(w, http.StatusOK, "Payment logs retrieved", logs)
		return
	}

	logs, err := h.store.List(limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to load payment logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment logs retrieved", logs)
}

// writeGatewayError maps client errors onto HTTP statuses.
func writeGatewayError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	requestID := r.Header.Get("X-Request-ID")

	var validationErr *tinkoff.ValidationError
	if errors.As(err, &validationErr) {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	var gatewayErr *tinkoff.GatewayError
	if errors.As(err, &gatewayErr) {
		logger.Warn("gateway declined request", logger.LogContext{
			Operation: operation,
			RequestID: requestID,
			Fields:    map[string]any{"error_code": gatewayErr.Code},
		})
		response.Error(w, http.StatusPaymentRequired, gatewayErr.Message, err)
		return
	}

	var internalErr *tinkoff.InternalError
	if errors.As(err, &internalErr) {
		logger.Error("gateway returned unusable response", err, logger.LogContext{
			Operation: operation,
			RequestID: requestID,
		})
		response.Error(w, http.StatusBadGateway, "Gateway response could not be decoded", err)
		return
	}

	logger.Error("gateway call failed", err, logger.LogContext{
		Operation: operation,
		RequestID: requestID,
	})
	response.Error(w, http.StatusInternalServerError, "Payment failed", err)
}
