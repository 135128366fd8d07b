// Package ledger is the adapter layer over the remote ledger: a Client
// interface the settlement core is written against, an HTTP fullnode
// implementation with multi-endpoint failover, the faucet client, and the
// typed contract-call encoding. No business logic lives here.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"EduPaySettlement/internal/address"
)

// ErrorKind classifies ledger failures for the cascade's fall-through
// decisions.
type ErrorKind string

const (
	ErrNetwork             ErrorKind = "network"
	ErrInsufficientBalance ErrorKind = "insufficient_balance"
	ErrInvalidArgument     ErrorKind = "invalid_argument"
	ErrNodeRejected        ErrorKind = "node_rejected"
)

// Error is the single error type surfaced by Client implementations. Code
// carries the node's machine-readable error code when one was returned.
type Error struct {
	Kind ErrorKind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("ledger %s: %s", e.Kind, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("ledger %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ledger %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from any error chain; unknown errors report as
// network failures, the conservative default for the cascade.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ErrNetwork
}

// IsNotFound reports whether the node answered "no such record". The
// subscription verifier treats this as a normal non-subscribed state.
func IsNotFound(err error) bool {
	var le *Error
	if !errors.As(err, &le) {
		return false
	}
	switch le.Code {
	case "resource_not_found", "account_not_found", "table_item_not_found",
		"struct_field_not_found", "transaction_not_found":
		return true
	}
	return false
}

// TxDraft is an unsigned transaction plus the exact bytes the signer must
// sign, as produced by the node's encode-submission endpoint.
type TxDraft struct {
	Sender                  address.Address
	SequenceNumber          uint64
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	Payload                 EntryFunction
	SigningMessage          []byte
}

// TxOutcome is the committed state of a submitted transaction.
type TxOutcome struct {
	Hash     string
	Success  bool
	VMStatus string
}

// Client is the read/write surface of the remote ledger. Implementations are
// the HTTP fullnode client and its failover wrapper; tests use fakes.
type Client interface {
	// Balance returns the account's coin balance in octas.
	Balance(ctx context.Context, addr address.Address) (uint64, error)
	// BuildTransaction resolves the sender's sequence number and asks the
	// node for the signing message of the given call.
	BuildTransaction(ctx context.Context, sender address.Address, call Call) (*TxDraft, error)
	// SignAndSubmit signs the draft with the given signer and submits it,
	// returning the transaction hash.
	SignAndSubmit(ctx context.Context, signer Signer, draft *TxDraft) (string, error)
	// WaitForTransaction polls until the transaction leaves the mempool or
	// ctx expires.
	WaitForTransaction(ctx context.Context, hash string) (*TxOutcome, error)
	// View executes a read-only function and returns its raw result values.
	View(ctx context.Context, call Call) ([]json.RawMessage, error)
}
