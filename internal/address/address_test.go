package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Address
	}{
		{
			name: "short hex is left padded",
			in:   "1a2",
			want: Address("0x" + strings.Repeat("0", 61) + "1a2"),
		},
		{
			name: "already canonical",
			in:   "0x" + strings.Repeat("ab", 32),
			want: Address("0x" + strings.Repeat("ab", 32)),
		},
		{
			name: "uppercase folds to lowercase",
			in:   "0xAB12",
			want: Address("0x" + strings.Repeat("0", 60) + "ab12"),
		},
		{
			name: "non hex noise is dropped",
			in:   "0x1a-2b zz 3c!",
			want: Address("0x" + strings.Repeat("0", 58) + "1a2b3c"),
		},
		{
			name: "overlong input keeps the first 64 hex chars",
			in:   strings.Repeat("1", 70),
			want: Address("0x" + strings.Repeat("1", 64)),
		},
		{
			name: "empty input is the zero sentinel",
			in:   "",
			want: Zero,
		},
		{
			name: "mostly garbage keeps the stray hex chars",
			in:   "not-an-address!",
			want: Address("0x" + strings.Repeat("0", 59) + "aadde"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			require.Equal(t, tt.want, got)
			require.Len(t, got.String(), 66)
			require.True(t, strings.HasPrefix(got.String(), "0x"))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "0x", "1a2", "0XABCDEF", "zzz", strings.Repeat("f", 100),
		"0x1a-2b zz 3c!", "deadbeef",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once.String())
		require.Equal(t, once, twice, "input %q", in)
	}
}

func TestNormalize_GarbageIsNotZeroUnlessNoHex(t *testing.T) {
	t.Parallel()

	require.True(t, Normalize("ghijk").IsZero())
	require.True(t, Normalize("  --  ").IsZero())
	require.False(t, Normalize("1").IsZero())
}

func TestDeriveFromOpaqueID(t *testing.T) {
	t.Parallel()

	a := DeriveFromOpaqueID("google-oauth2|117243342")
	b := DeriveFromOpaqueID("google-oauth2|117243342")
	require.Equal(t, a, b, "derivation must be deterministic")
	require.Len(t, a.String(), 66)
	require.True(t, strings.HasPrefix(a.String(), "0x"))
	require.False(t, a.IsZero())

	c := DeriveFromOpaqueID("google-oauth2|117243343")
	require.NotEqual(t, a, c, "distinct ids should derive distinct addresses")

	require.True(t, DeriveFromOpaqueID("").IsZero())
}

func TestDeriveFromOpaqueID_IsCanonical(t *testing.T) {
	t.Parallel()

	derived := DeriveFromOpaqueID("some-user")
	require.Equal(t, derived, Normalize(derived.String()))
}
