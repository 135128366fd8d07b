package subscription

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/ledger"
)

type fakeViewer struct {
	vals []json.RawMessage
	err  error
	call ledger.Call
}

func (f *fakeViewer) View(_ context.Context, call ledger.Call) ([]json.RawMessage, error) {
	f.call = call
	return f.vals, f.err
}

func raw(parts ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(parts))
	for _, p := range parts {
		out = append(out, json.RawMessage(p))
	}
	return out
}

var testAddr = address.Normalize("0x1a2")

func TestIsActive_ActiveRecord(t *testing.T) {
	t.Parallel()

	viewer := &fakeViewer{vals: raw(`true`, `"1693526400"`, `"1696118400"`)}
	v := &Verifier{Ledger: viewer, Logger: zap.NewNop()}

	status, err := v.IsActive(context.Background(), testAddr, "pro-monthly")
	require.NoError(t, err)
	require.True(t, status.Active)
	require.Equal(t, time.Unix(1693526400, 0).UTC(), *status.StartTime)
	require.Equal(t, time.Unix(1696118400, 0).UTC(), *status.EndTime)

	call, ok := viewer.call.(ledger.GetSubscription)
	require.True(t, ok)
	require.Equal(t, testAddr, call.Account)
	require.Equal(t, "pro-monthly", call.PlanID)
}

func TestIsActive_NotFoundIsInactiveNotError(t *testing.T) {
	t.Parallel()

	viewer := &fakeViewer{err: &ledger.Error{
		Kind: ledger.ErrInvalidArgument,
		Code: "resource_not_found",
		Msg:  "Resource not found",
	}}
	v := &Verifier{Ledger: viewer, Logger: zap.NewNop()}

	status, err := v.IsActive(context.Background(), testAddr, "pro-monthly")
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Nil(t, status.StartTime)
	require.Nil(t, status.EndTime)
}

func TestIsActive_NetworkErrorSurfaces(t *testing.T) {
	t.Parallel()

	viewer := &fakeViewer{err: &ledger.Error{Kind: ledger.ErrNetwork, Msg: "node down"}}
	v := &Verifier{Ledger: viewer, Logger: zap.NewNop()}

	_, err := v.IsActive(context.Background(), testAddr, "pro-monthly")
	require.Error(t, err)
	require.Equal(t, ledger.ErrNetwork, ledger.KindOf(err))
}

func TestIsActive_InactiveRecordWithoutWindow(t *testing.T) {
	t.Parallel()

	viewer := &fakeViewer{vals: raw(`false`, `"0"`, `"0"`)}
	v := &Verifier{Ledger: viewer, Logger: zap.NewNop()}

	status, err := v.IsActive(context.Background(), testAddr, "pro-monthly")
	require.NoError(t, err)
	require.False(t, status.Active)
	require.Nil(t, status.StartTime, "zero start time means unset")
	require.Nil(t, status.EndTime)
}
