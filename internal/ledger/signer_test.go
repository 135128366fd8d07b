package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeySigner_AddressDerivation(t *testing.T) {
	t.Parallel()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	a := NewKeySigner(priv)
	b := NewKeySigner(priv)
	require.Equal(t, a.Address(), b.Address(), "address derivation must be deterministic")
	require.Len(t, a.Address().String(), 66)
	require.True(t, strings.HasPrefix(a.Address().String(), "0x"))
	require.False(t, a.Address().IsZero())

	_, other, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NotEqual(t, a.Address(), NewKeySigner(other).Address())
}

func TestKeySigner_SignVerifies(t *testing.T) {
	t.Parallel()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	s := NewKeySigner(priv)

	msg := []byte("signing message bytes")
	sig := s.Sign(msg)
	require.True(t, ed25519.Verify(s.PublicKey(), msg, sig))
}

func TestSignerFromHex(t *testing.T) {
	t.Parallel()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	fromSeed, err := SignerFromHex("0x" + hex.EncodeToString(seed))
	require.NoError(t, err)

	full := ed25519.NewKeyFromSeed(seed)
	fromFull, err := SignerFromHex(hex.EncodeToString(full))
	require.NoError(t, err)
	require.Equal(t, fromSeed.Address(), fromFull.Address())

	_, err = SignerFromHex("")
	require.Error(t, err)
	_, err = SignerFromHex("zz")
	require.Error(t, err)
	_, err = SignerFromHex("abcd")
	require.Error(t, err, "wrong length must be rejected")
}
