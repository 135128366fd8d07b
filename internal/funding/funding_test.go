package funding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
)

type fakeLedger struct {
	balances []uint64 // consumed in order
	calls    int
	err      error
}

func (f *fakeLedger) Balance(_ context.Context, _ address.Address) (uint64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	bal := f.balances[0]
	if len(f.balances) > 1 {
		f.balances = f.balances[1:]
	}
	return bal, nil
}

type fakeFaucet struct {
	calls int
	err   error
}

func (f *fakeFaucet) Mint(_ context.Context, _ address.Address, _ uint64) error {
	f.calls++
	return f.err
}

func newGuard(l *fakeLedger, f Faucet) *Guard {
	return &Guard{
		Ledger:      l,
		Faucet:      f,
		GrantOctas:  100_000_000,
		SettleDelay: 0,
		Logger:      zap.NewNop(),
	}
}

var testAddr = address.Normalize("0x1a2")

func TestEnsureFunded_AlreadyFunded(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{balances: []uint64{20_000_000}}
	faucet := &fakeFaucet{}
	g := newGuard(ledger, faucet)

	require.True(t, g.EnsureFunded(context.Background(), testAddr, 10_000_000))
	require.Zero(t, faucet.calls, "no faucet call when balance is sufficient")
	require.Equal(t, 1, ledger.calls)
}

func TestEnsureFunded_MintsOnceAndRechecksOnce(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{balances: []uint64{5_000_000, 105_000_000}}
	faucet := &fakeFaucet{}
	g := newGuard(ledger, faucet)

	require.True(t, g.EnsureFunded(context.Background(), testAddr, 10_000_000))
	require.Equal(t, 1, faucet.calls)
	require.Equal(t, 2, ledger.calls)
}

func TestEnsureFunded_RecheckStillShort(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{balances: []uint64{5_000_000, 6_000_000}}
	faucet := &fakeFaucet{}
	g := newGuard(ledger, faucet)

	require.False(t, g.EnsureFunded(context.Background(), testAddr, 10_000_000))
	require.Equal(t, 1, faucet.calls, "exactly one faucet call regardless of re-check outcome")
	require.Equal(t, 2, ledger.calls)
}

func TestEnsureFunded_NeverErrors(t *testing.T) {
	t.Parallel()

	// balance read fails
	g := newGuard(&fakeLedger{err: errors.New("node down")}, &fakeFaucet{})
	require.False(t, g.EnsureFunded(context.Background(), testAddr, 1))

	// faucet fails
	ledger := &fakeLedger{balances: []uint64{0}}
	g = newGuard(ledger, &fakeFaucet{err: errors.New("faucet down")})
	require.False(t, g.EnsureFunded(context.Background(), testAddr, 1))

	// faucet not configured
	g = newGuard(&fakeLedger{balances: []uint64{0}}, nil)
	require.False(t, g.EnsureFunded(context.Background(), testAddr, 1))
}
