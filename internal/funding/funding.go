// Package funding tops up test-network accounts before a settlement attempt.
package funding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
)

// BalanceReader is the slice of the ledger client the guard needs.
type BalanceReader interface {
	Balance(ctx context.Context, addr address.Address) (uint64, error)
}

// Faucet issues test-network grants.
type Faucet interface {
	Mint(ctx context.Context, addr address.Address, octas uint64) error
}

// Guard checks an account's balance and asks the faucet for a fixed grant
// when it is short. It is strictly best-effort: every failure degrades to
// "not funded" and the cascade decides what that means.
type Guard struct {
	Ledger      BalanceReader
	Faucet      Faucet // nil disables the guard (production networks)
	GrantOctas  uint64
	SettleDelay time.Duration
	Logger      *zap.Logger
}

// EnsureFunded reports whether addr holds at least min octas, minting once
// and re-checking after the settle delay if it does not. Never returns an
// error; the guard is only valid on test networks and must not block the
// cascade.
func (g *Guard) EnsureFunded(ctx context.Context, addr address.Address, min uint64) bool {
	bal, err := g.Ledger.Balance(ctx, addr)
	if err != nil {
		g.Logger.Warn("funding: balance check failed", zap.String("address", addr.String()), zap.Error(err))
		return false
	}
	if bal >= min {
		return true
	}
	if g.Faucet == nil {
		g.Logger.Debug("funding: faucet disabled", zap.String("address", addr.String()))
		return false
	}

	g.Logger.Info("funding: requesting faucet grant",
		zap.String("address", addr.String()),
		zap.Uint64("balance", bal),
		zap.Uint64("minimum", min),
		zap.Uint64("grant", g.GrantOctas),
	)
	if err := g.Faucet.Mint(ctx, addr, g.GrantOctas); err != nil {
		g.Logger.Warn("funding: faucet mint failed", zap.String("address", addr.String()), zap.Error(err))
		return false
	}

	// one fixed wait for ledger settlement, then a single re-check
	select {
	case <-ctx.Done():
		return false
	case <-time.After(g.SettleDelay):
	}

	bal, err = g.Ledger.Balance(ctx, addr)
	if err != nil {
		g.Logger.Warn("funding: post-grant balance check failed", zap.String("address", addr.String()), zap.Error(err))
		return false
	}
	return bal >= min
}
