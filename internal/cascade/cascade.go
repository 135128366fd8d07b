// Package cascade settles a payment intent through an ordered list of
// execution strategies: the connected wallet first, a sponsored custody
// account second, a locally simulated settlement last. The cascade stops at
// the first success and, by construction of the final stage, practically
// always terminates settled.
package cascade

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"EduPaySettlement/internal/funding"
	"EduPaySettlement/internal/models"
)

// ErrExhausted is returned only when even the simulated fallback fails,
// which requires its random source to break.
var ErrExhausted = errors.New("all submission strategies failed")

// Strategy is one way of getting a purchase onto the ledger. Attempt either
// returns a transaction hash or an error that sends the cascade to the next
// stage.
type Strategy interface {
	Name() models.Strategy
	Attempt(ctx context.Context, intent *models.PaymentIntent) (string, error)
}

// Result is a settled cascade. Simulated settlements are flagged and must
// stay flagged through every downstream layer; a simulated hash presented as
// a real one is a bug, not a convenience.
type Result struct {
	Hash      string
	Strategy  models.Strategy
	Simulated bool
	Attempts  []models.AttemptRecord
}

type Submitter struct {
	Funding    *funding.Guard // nil skips the funding pre-step
	MinBalance uint64
	Strategies []Strategy
	Logger     *zap.Logger
}

// Submit runs the cascade for one intent. Each stage is attempted exactly
// once, every attempt lands in the ordered log, and progress (if non-nil)
// observes each attempt as it completes.
func (s *Submitter) Submit(ctx context.Context, intent *models.PaymentIntent, progress func(models.AttemptRecord)) (*Result, error) {
	if s.Funding != nil {
		// Opportunistic only; a broke sender just means the user-signed
		// stage fails and the cascade degrades.
		funded := s.Funding.EnsureFunded(ctx, intent.SenderAddress, s.MinBalance)
		if !funded {
			s.Logger.Debug("cascade: sender not funded, continuing",
				zap.String("sender", intent.SenderAddress.String()))
		}
	}

	var attempts []models.AttemptRecord
	for _, strat := range s.Strategies {
		hash, err := strat.Attempt(ctx, intent)
		rec := models.AttemptRecord{Strategy: strat.Name()}
		if err != nil {
			rec.Error = err.Error()
			attempts = append(attempts, rec)
			if progress != nil {
				progress(rec)
			}
			s.Logger.Warn("cascade: strategy failed",
				zap.String("strategy", string(strat.Name())),
				zap.String("correlationId", intent.CorrelationID),
				zap.Error(err),
			)
			continue
		}

		rec.Success = true
		rec.TxHash = hash
		attempts = append(attempts, rec)
		if progress != nil {
			progress(rec)
		}

		simulated := strat.Name() == models.StrategySimulated
		s.Logger.Info("cascade: settled",
			zap.String("strategy", string(strat.Name())),
			zap.String("txHash", hash),
			zap.Bool("simulated", simulated),
			zap.String("correlationId", intent.CorrelationID),
		)
		return &Result{
			Hash:      hash,
			Strategy:  strat.Name(),
			Simulated: simulated,
			Attempts:  attempts,
		}, nil
	}

	s.Logger.Error("cascade: exhausted", zap.String("correlationId", intent.CorrelationID))
	return &Result{Attempts: attempts}, ErrExhausted
}
