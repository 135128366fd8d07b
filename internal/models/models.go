package models

import (
	"time"

	"github.com/shopspring/decimal"

	"EduPaySettlement/internal/address"
)

// WalletIdentity is what the identity provider hands us on connect. Address
// is stored canonicalized; when the provider yields no native ledger account
// the address is derived from ExternalUserID instead.
type WalletIdentity struct {
	Address        address.Address `json:"address"`
	DisplayName    string          `json:"displayName,omitempty"`
	Email          string          `json:"email,omitempty"`
	PhotoURL       string          `json:"photoURL,omitempty"`
	ExternalUserID string          `json:"externalUserId,omitempty"`
}

// PaymentIntent is one settlement request. Immutable once constructed; one
// intent maps to exactly one cascade run.
type PaymentIntent struct {
	SenderAddress   address.Address
	ReceiverAddress address.Address
	FiatAmount      decimal.Decimal
	Currency        string
	PlanID          string
	PlanName        string
	UserID          string
	// CorrelationID is embedded in the on-ledger call so the contract can
	// reject replays; uniqueness is the caller's idempotency handle.
	CorrelationID string
	// TokenOctas is the converted price in the ledger's smallest unit. The
	// purchase call itself carries only identifiers; this is pricing
	// metadata surfaced to the UI.
	TokenOctas uint64
	// TokenAmount is the same value in whole tokens, for display and audit.
	TokenAmount decimal.Decimal
}

// Strategy identifies which cascade stage produced a settlement.
type Strategy string

const (
	StrategyUserSigned Strategy = "user_signed"
	StrategySponsored  Strategy = "sponsored"
	StrategySimulated  Strategy = "simulated"
)

// AttemptRecord is one entry of the ordered cascade log.
type AttemptRecord struct {
	Strategy Strategy `json:"strategy"`
	Success  bool     `json:"success"`
	TxHash   string   `json:"txHash,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// PaymentResult is the outcome handed back to UI collaborators. Simulated
// settlements always carry the simulated flag; they must never be presented
// as confirmed on ledger.
type PaymentResult struct {
	Success     bool            `json:"success"`
	TxnHash     string          `json:"txnHash,omitempty"`
	Strategy    Strategy        `json:"strategy,omitempty"`
	Simulated   bool            `json:"simulated"`
	TokenAmount string          `json:"tokenAmount,omitempty"`
	Attempts    []AttemptRecord `json:"attempts,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// SubscriptionStatus mirrors the on-ledger subscription record. Read-only;
// never mutated locally.
type SubscriptionStatus struct {
	Active    bool       `json:"active"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentSimulated PaymentStatus = "simulated"
)

// PaymentRecord is the off-chain audit row. The ledger settlement is the
// source of truth; this row is an index for support and reporting, so its
// field names are stable for downstream consumers.
type PaymentRecord struct {
	UserID          string          `json:"userId"`
	WalletAddress   address.Address `json:"walletAddress"`
	TransactionHash string          `json:"transactionHash"`
	PlanID          string          `json:"planId"`
	Amount          decimal.Decimal `json:"amount"`
	AptAmount       decimal.Decimal `json:"aptAmount"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          PaymentStatus   `json:"status"`
	Timestamp       time.Time       `json:"timestamp"`
}
