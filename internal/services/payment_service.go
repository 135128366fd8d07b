// Package services implements the contract exposed to the platform's UI
// collaborators: submit a payment, check a subscription, record a payment.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/cascade"
	"EduPaySettlement/internal/models"
	"EduPaySettlement/internal/pricing"
	"EduPaySettlement/internal/subscription"
)

var (
	ErrMissingUserID   = errors.New("missing user id")
	ErrMissingPlanID   = errors.New("missing plan id")
	ErrUnknownWallet   = errors.New("wallet identity resolves to no address")
	ErrUnknownCurrency = pricing.ErrUnknownCurrency
)

// PaymentStore is the audit-trail slice of the store.
type PaymentStore interface {
	InsertPayment(ctx context.Context, rec *models.PaymentRecord) error
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.PaymentRecord, error)
}

// SubmitPaymentRequest is the caller-facing tuple. The wallet identity is
// resolved to a canonical sender address here; callers never pass raw
// addresses through.
type SubmitPaymentRequest struct {
	PlanID   string
	PlanName string
	Price    decimal.Decimal
	Currency string
	UserID   string
	Wallet   models.WalletIdentity
}

// RecordOutcome reports a best-effort persistence result. A false Success
// never affects the settled payment.
type RecordOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type PaymentService struct {
	Pricing   pricing.Converter
	Submitter *cascade.Submitter
	Verifier  *subscription.Verifier
	Store     PaymentStore
	// Receiver is the platform's collection account; every intent settles
	// toward it.
	Receiver address.Address
	Logger   *zap.Logger
}

// SubmitPayment runs one full settlement: resolve identity, convert price,
// cascade, then best-effort audit persistence. The returned result always
// carries the strategy tag so "confirmed on ledger" and "settlement
// simulated" stay distinguishable all the way to the UI.
func (s *PaymentService) SubmitPayment(ctx context.Context, req SubmitPaymentRequest, progress func(models.AttemptRecord)) (*models.PaymentResult, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}
	if req.PlanID == "" {
		return nil, ErrMissingPlanID
	}

	sender := resolveSender(req.Wallet)
	if sender.IsZero() {
		return nil, ErrUnknownWallet
	}

	amount, err := s.Pricing.ToTokenAmount(req.Price, req.Currency)
	if err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		SenderAddress:   sender,
		ReceiverAddress: address.Normalize(s.Receiver.String()),
		FiatAmount:      req.Price,
		Currency:        req.Currency,
		PlanID:          req.PlanID,
		PlanName:        req.PlanName,
		UserID:          req.UserID,
		CorrelationID:   uuid.NewString(),
		TokenOctas:      amount.Octas(),
		TokenAmount:     amount.Decimal(),
	}

	res, err := s.Submitter.Submit(ctx, intent, progress)
	if err != nil {
		// Only the exhausted terminal state is user-visible; by construction
		// it requires the simulated fallback itself to fail.
		return &models.PaymentResult{
			Success:  false,
			Attempts: res.Attempts,
			Error:    err.Error(),
		}, err
	}

	record := buildRecord(intent, res)
	if insertErr := s.Store.InsertPayment(ctx, record); insertErr != nil {
		// The payment is settled; a missing audit row never rolls it back.
		s.Logger.Error("payment record persistence failed",
			zap.String("txHash", res.Hash),
			zap.String("userId", req.UserID),
			zap.Error(insertErr),
		)
	}

	return &models.PaymentResult{
		Success:     true,
		TxnHash:     res.Hash,
		Strategy:    res.Strategy,
		Simulated:   res.Simulated,
		TokenAmount: amount.String(),
		Attempts:    res.Attempts,
	}, nil
}

// CheckSubscription is a read-only passthrough to the verifier.
func (s *PaymentService) CheckSubscription(ctx context.Context, addr address.Address, planID string) (models.SubscriptionStatus, error) {
	return s.Verifier.IsActive(ctx, address.Normalize(addr.String()), planID)
}

// RecordPayment persists a caller-supplied record. Failure is reported, not
// raised; the settlement the record describes already happened.
func (s *PaymentService) RecordPayment(ctx context.Context, rec *models.PaymentRecord) RecordOutcome {
	rec.WalletAddress = address.Normalize(rec.WalletAddress.String())
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if err := s.Store.InsertPayment(ctx, rec); err != nil {
		s.Logger.Error("record payment failed",
			zap.String("txHash", rec.TransactionHash),
			zap.Error(err),
		)
		return RecordOutcome{Success: false, Error: err.Error()}
	}
	return RecordOutcome{Success: true}
}

// PaymentHistory lists a user's audit rows.
func (s *PaymentService) PaymentHistory(ctx context.Context, userID string) ([]*models.PaymentRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.Store.ListPaymentsByUser(ctx, userID)
}

// resolveSender canonicalizes the wallet's address, falling back to a
// derived address when the identity provider supplied only an opaque id.
func resolveSender(w models.WalletIdentity) address.Address {
	sender := address.Normalize(w.Address.String())
	if sender.IsZero() && w.ExternalUserID != "" {
		sender = address.DeriveFromOpaqueID(w.ExternalUserID)
	}
	return sender
}

func buildRecord(intent *models.PaymentIntent, res *cascade.Result) *models.PaymentRecord {
	status := models.PaymentCompleted
	if res.Simulated {
		status = models.PaymentSimulated
	}
	return &models.PaymentRecord{
		UserID:          intent.UserID,
		WalletAddress:   intent.SenderAddress,
		TransactionHash: res.Hash,
		PlanID:          intent.PlanID,
		Amount:          intent.FiatAmount,
		AptAmount:       intent.TokenAmount,
		Currency:        intent.Currency,
		PaymentMethod:   paymentMethod(res.Strategy),
		Status:          status,
		Timestamp:       time.Now().UTC(),
	}
}

func paymentMethod(strategy models.Strategy) string {
	switch strategy {
	case models.StrategyUserSigned:
		return "wallet"
	case models.StrategySponsored:
		return "sponsored"
	default:
		return "simulated"
	}
}
