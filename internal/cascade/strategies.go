package cascade

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/ledger"
	"EduPaySettlement/internal/models"
)

// ErrNoSigner means the wallet identity provider issued an account that can
// hold funds but cannot produce ledger signatures. The cascade exists to
// tolerate exactly this gap.
var ErrNoSigner = errors.New("no connected signer capability")

// UserSigned submits the purchase with the user's own signer when one is
// connected.
type UserSigned struct {
	Ledger ledger.Client
	Signer ledger.Signer // nil when the wallet cannot sign
}

func (s *UserSigned) Name() models.Strategy { return models.StrategyUserSigned }

func (s *UserSigned) Attempt(ctx context.Context, intent *models.PaymentIntent) (string, error) {
	if s.Signer == nil {
		return "", ErrNoSigner
	}
	return settle(ctx, s.Ledger, s.Signer, intent.SenderAddress, intent)
}

// Sponsored submits the same purchase call signed by a pre-provisioned
// custody key, so the purchase lands on ledger even when the user's wallet
// could not sign. The key is injected at construction and shared across
// cascades; sequence numbers are the ledger client's problem.
type Sponsored struct {
	Ledger  ledger.Client
	Sponsor ledger.Signer
}

func (s *Sponsored) Name() models.Strategy { return models.StrategySponsored }

func (s *Sponsored) Attempt(ctx context.Context, intent *models.PaymentIntent) (string, error) {
	if s.Sponsor == nil {
		return "", errors.New("sponsor signer not configured")
	}
	return settle(ctx, s.Ledger, s.Sponsor, s.Sponsor.Address(), intent)
}

// settle lands both legs of a payment: the coin transfer that moves the
// funds, then the purchase call that records the entitlement. Funds must
// have moved before an entitlement exists; the purchase hash is the
// settlement hash.
func settle(ctx context.Context, c ledger.Client, signer ledger.Signer, sender address.Address, intent *models.PaymentIntent) (string, error) {
	transfer := ledger.TransferCoins{
		Recipient: intent.ReceiverAddress,
		Octas:     intent.TokenOctas,
	}
	if _, err := submitCall(ctx, c, signer, sender, transfer); err != nil {
		return "", err
	}

	purchase := ledger.PurchaseSubscription{
		PlanID:        intent.PlanID,
		CorrelationID: intent.CorrelationID,
	}
	return submitCall(ctx, c, signer, sender, purchase)
}

func submitCall(ctx context.Context, c ledger.Client, signer ledger.Signer, sender address.Address, call ledger.Call) (string, error) {
	draft, err := c.BuildTransaction(ctx, sender, call)
	if err != nil {
		return "", err
	}
	hash, err := c.SignAndSubmit(ctx, signer, draft)
	if err != nil {
		return "", err
	}
	outcome, err := c.WaitForTransaction(ctx, hash)
	if err != nil {
		return "", err
	}
	if !outcome.Success {
		return "", &ledger.Error{Kind: ledger.ErrNodeRejected, Msg: outcome.VMStatus}
	}
	return outcome.Hash, nil
}

// Simulated fabricates a value with the shape of a transaction hash without
// touching any ledger. It is the degraded terminal stage that keeps the UI
// flow from dead-ending; everything it produces is tagged simulated and must
// never be shown as a real settlement.
type Simulated struct{}

func (Simulated) Name() models.Strategy { return models.StrategySimulated }

func (Simulated) Attempt(_ context.Context, _ *models.PaymentIntent) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}
