package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestConverter() Converter {
	return Converter{
		MaxReferencePrice: map[string]decimal.Decimal{
			"INR": decimal.NewFromInt(10000),
			"USD": decimal.NewFromInt(120),
		},
		MaxTokenAmount: decimal.NewFromInt(1),
	}
}

func TestToTokenAmount_Proportional(t *testing.T) {
	t.Parallel()
	c := newTestConverter()

	got, err := c.ToTokenAmount(decimal.NewFromInt(999), "INR")
	require.NoError(t, err)
	require.Equal(t, "0.0999", got.String())

	got, err = c.ToTokenAmount(decimal.NewFromInt(10000), "INR")
	require.NoError(t, err)
	require.Equal(t, "1", got.String())

	got, err = c.ToTokenAmount(decimal.NewFromInt(60), "USD")
	require.NoError(t, err)
	require.Equal(t, "0.5", got.String())
}

func TestToTokenAmount_DustFloor(t *testing.T) {
	t.Parallel()
	c := newTestConverter()

	got, err := c.ToTokenAmount(decimal.Zero, "INR")
	require.NoError(t, err)
	require.True(t, got.Decimal().Equal(DustFloor), "zero price converts to the dust floor, not zero")

	// Below half a dust unit the rounded amount is zero and must be clamped.
	tiny := decimal.RequireFromString("0.01")
	got, err = c.ToTokenAmount(tiny, "INR")
	require.NoError(t, err)
	require.True(t, got.Decimal().GreaterThanOrEqual(DustFloor))
}

func TestToTokenAmount_Monotonic(t *testing.T) {
	t.Parallel()
	c := newTestConverter()

	prev := decimal.Zero
	for price := int64(0); price <= 10000; price += 37 {
		got, err := c.ToTokenAmount(decimal.NewFromInt(price), "INR")
		require.NoError(t, err)
		require.True(t, got.Decimal().GreaterThanOrEqual(prev),
			"conversion must be non-decreasing in price (price=%d)", price)
		require.True(t, got.Decimal().GreaterThanOrEqual(DustFloor))
		prev = got.Decimal()
	}
}

func TestToTokenAmount_UnknownCurrency(t *testing.T) {
	t.Parallel()
	c := newTestConverter()

	_, err := c.ToTokenAmount(decimal.NewFromInt(100), "EUR")
	require.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestTokenAmount_Octas(t *testing.T) {
	t.Parallel()
	c := newTestConverter()

	got, err := c.ToTokenAmount(decimal.NewFromInt(999), "INR")
	require.NoError(t, err)
	require.Equal(t, uint64(9_990_000), got.Octas())

	got, err = c.ToTokenAmount(decimal.Zero, "INR")
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), got.Octas(), "dust floor in octas")
}
