// Package subscription reads on-ledger subscription state. Strictly
// read-only; safe to call repeatedly and concurrently.
package subscription

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/ledger"
	"EduPaySettlement/internal/models"
)

// Viewer is the slice of the ledger client the verifier needs.
type Viewer interface {
	View(ctx context.Context, call ledger.Call) ([]json.RawMessage, error)
}

type Verifier struct {
	Ledger Viewer
	Logger *zap.Logger
}

// IsActive queries the subscription record for (addr, planID). A missing
// record is the normal non-subscribed state, not an error.
func (v *Verifier) IsActive(ctx context.Context, addr address.Address, planID string) (models.SubscriptionStatus, error) {
	vals, err := v.Ledger.View(ctx, ledger.GetSubscription{Account: addr, PlanID: planID})
	if err != nil {
		if ledger.IsNotFound(err) {
			return models.SubscriptionStatus{Active: false}, nil
		}
		return models.SubscriptionStatus{}, err
	}

	// view result: [active: bool, start_secs: u64 string, end_secs: u64 string]
	if len(vals) == 0 {
		return models.SubscriptionStatus{Active: false}, nil
	}

	var status models.SubscriptionStatus
	if err := json.Unmarshal(vals[0], &status.Active); err != nil {
		return models.SubscriptionStatus{}, &ledger.Error{
			Kind: ledger.ErrNodeRejected, Msg: "malformed subscription record", Err: err,
		}
	}
	if len(vals) > 1 {
		status.StartTime = parseUnixSecs(vals[1])
	}
	if len(vals) > 2 {
		status.EndTime = parseUnixSecs(vals[2])
	}

	v.Logger.Debug("subscription checked",
		zap.String("address", addr.String()),
		zap.String("planId", planID),
		zap.Bool("active", status.Active),
	)
	return status, nil
}

func parseUnixSecs(raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	secs, err := strconv.ParseUint(s, 10, 64)
	if err != nil || secs == 0 {
		return nil
	}
	t := time.Unix(int64(secs), 0).UTC()
	return &t
}
