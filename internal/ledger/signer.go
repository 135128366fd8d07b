package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"EduPaySettlement/internal/address"
)

// Signer is a signing capability over ledger transactions. The sponsor
// signer is resolved once at process start from the environment and passed
// by reference; it is never module-level state and never reaches clients.
type Signer interface {
	Address() address.Address
	PublicKey() ed25519.PublicKey
	Sign(message []byte) []byte
}

// single-signer ed25519 scheme byte of the auth-key derivation
const ed25519Scheme = 0x00

// KeySigner signs with a raw ed25519 key held in memory.
type KeySigner struct {
	priv ed25519.PrivateKey
	addr address.Address
}

var _ Signer = (*KeySigner)(nil)

// NewKeySigner derives the account address from the public key: the ledger's
// auth key is SHA3-256(pubkey || scheme).
func NewKeySigner(priv ed25519.PrivateKey) *KeySigner {
	pub := priv.Public().(ed25519.PublicKey)
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{ed25519Scheme})
	return &KeySigner{
		priv: priv,
		addr: address.Normalize(hex.EncodeToString(h.Sum(nil))),
	}
}

// SignerFromHex parses a hex-encoded ed25519 key, either a 32-byte seed or a
// full 64-byte private key, with an optional 0x prefix.
func SignerFromHex(keyHex string) (*KeySigner, error) {
	keyHex = strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	if keyHex == "" {
		return nil, errors.New("empty signing key")
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return NewKeySigner(ed25519.NewKeyFromSeed(raw)), nil
	case ed25519.PrivateKeySize:
		return NewKeySigner(ed25519.PrivateKey(raw)), nil
	default:
		return nil, fmt.Errorf("signing key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

func (s *KeySigner) Address() address.Address { return s.addr }

func (s *KeySigner) PublicKey() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

func (s *KeySigner) Sign(message []byte) []byte {
	return ed25519.Sign(s.priv, message)
}
