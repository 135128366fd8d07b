// Package address canonicalizes ledger account addresses. Every address
// handled by the settlement core is a fixed 32-byte identifier rendered as
// 64 lowercase hex characters with a 0x prefix.
package address

import (
	"encoding/hex"
	"strings"
)

const hexLen = 64

// Zero is the all-zero address. Normalize returns it for inputs that carry
// no usable hex at all; callers treat it as "unknown address", never as a
// valid destination.
const Zero = Address("0x0000000000000000000000000000000000000000000000000000000000000000")

type Address string

func (a Address) String() string { return string(a) }

func (a Address) IsZero() bool { return a == Zero }

// Normalize coerces any string into a canonical address: strip an optional
// 0x prefix, drop every non-hex character, left-pad with zeros when short,
// truncate to the first 64 hex chars when long. Total and idempotent;
// garbage in means Zero out, not an error.
func Normalize(raw string) Address {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")

	var b strings.Builder
	b.Grow(hexLen)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r + ('a' - 'A'))
		}
		if b.Len() == hexLen {
			break
		}
	}

	hexPart := b.String()
	if len(hexPart) < hexLen {
		hexPart = strings.Repeat("0", hexLen-len(hexPart)) + hexPart
	}
	return Address("0x" + hexPart)
}

// DeriveFromOpaqueID produces a stable address for identity providers that
// hand out opaque user ids instead of ledger accounts. The id's bytes are
// hex-encoded and tiled until 64 chars are filled, so the same id always
// lands on the same address and distinct ids collide only when their hex
// encodings share a 32-byte prefix.
//
// This is deliberately not a cryptographic derivation. It exists for UX
// continuity only; production accounts come from an on-chain or custodial
// key derivation instead.
func DeriveFromOpaqueID(id string) Address {
	if id == "" {
		return Zero
	}
	encoded := hex.EncodeToString([]byte(id))
	var b strings.Builder
	b.Grow(hexLen)
	for b.Len() < hexLen {
		remaining := hexLen - b.Len()
		if remaining < len(encoded) {
			b.WriteString(encoded[:remaining])
		} else {
			b.WriteString(encoded)
		}
	}
	return Address("0x" + b.String())
}
