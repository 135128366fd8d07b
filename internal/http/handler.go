package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/cascade"
	"EduPaySettlement/internal/models"
	"EduPaySettlement/internal/services"
)

type Handler struct {
	Payments *services.PaymentService
	Logger   *zap.Logger
}

func NewHandler(payments *services.PaymentService, logger *zap.Logger) *Handler {
	return &Handler{Payments: payments, Logger: logger}
}

type submitPaymentRequest struct {
	PlanID   string                `json:"planId"`
	PlanName string                `json:"planName"`
	Price    decimal.Decimal       `json:"price"`
	Currency string                `json:"currency"`
	UserID   string                `json:"userId"`
	Wallet   models.WalletIdentity `json:"wallet"`
}

func (r submitPaymentRequest) toService() services.SubmitPaymentRequest {
	return services.SubmitPaymentRequest{
		PlanID:   r.PlanID,
		PlanName: r.PlanName,
		Price:    r.Price,
		Currency: r.Currency,
		UserID:   r.UserID,
		Wallet:   r.Wallet,
	}
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.Payments.SubmitPayment(r.Context(), req.toService(), nil)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingUserID):
			writeError(w, http.StatusUnauthorized, "missing user id")
		case errors.Is(err, services.ErrMissingPlanID):
			writeError(w, http.StatusBadRequest, "missing plan id")
		case errors.Is(err, services.ErrUnknownWallet):
			writeError(w, http.StatusBadRequest, "wallet identity resolves to no address")
		case errors.Is(err, services.ErrUnknownCurrency):
			writeError(w, http.StatusBadRequest, "unsupported currency")
		case errors.Is(err, cascade.ErrExhausted):
			// carries the attempt log so support can see what was tried
			writeJSON(w, http.StatusBadGateway, result)
		default:
			writeError(w, http.StatusInternalServerError, "payment submission failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	planID := chi.URLParam(r, "planId")
	if addr == "" || planID == "" {
		writeError(w, http.StatusBadRequest, "missing address or plan id")
		return
	}

	status, err := h.Payments.CheckSubscription(r.Context(), address.Normalize(addr), planID)
	if err != nil {
		h.Logger.Error("subscription check failed", zap.String("address", addr), zap.Error(err))
		writeError(w, http.StatusBadGateway, "subscription check failed")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var rec models.PaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if rec.TransactionHash == "" || rec.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction hash or user id")
		return
	}

	// best-effort by contract: HTTP 200 either way, success flag in the body
	writeJSON(w, http.StatusOK, h.Payments.RecordPayment(r.Context(), &rec))
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	records, err := h.Payments.PaymentHistory(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrMissingUserID) {
			writeError(w, http.StatusBadRequest, "missing user id")
			return
		}
		writeError(w, http.StatusInternalServerError, "payment history failed")
		return
	}
	if records == nil {
		records = []*models.PaymentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
