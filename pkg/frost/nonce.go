package frost

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// nonceHedgeContext domain-separates this module's hedged nonce derivation
// from any other consumer of blake3.DeriveKey.
const nonceHedgeContext = "github.com/thresholdlabs/frost25519 2026 FROST signing nonce hedge"

// Nonce is a signer's ephemeral per-signature secret pair (d, e). It must be
// used for exactly one signature and then zeroized.
type Nonce struct {
	D *curve25519.Scalar
	E *curve25519.Scalar
}

// Zeroize overwrites both nonce scalars.
func (n *Nonce) Zeroize() {
	n.D.Zeroize()
	n.E.Zeroize()
}

// NonceCommitment is the public counterpart of a Nonce, exchanged in round 1
// of signing: D = d*P, E = e*P, tagged with the signer's address.
type NonceCommitment struct {
	Address address.Address
	D       *curve25519.Point
	E       *curve25519.Point
}

// Commitment returns the public commitment to n for signer id.
func (n *Nonce) Commitment(id address.Address) NonceCommitment {
	return NonceCommitment{Address: id, D: n.D.BasePoint(), E: n.E.BasePoint()}
}

// SignPreprocess generates a fresh hedged nonce pair for signer xi (the
// signer's Lagrange-unweighted secret share, used only as hedging key
// material here, never embedded in the output) over msgHash. Hedging mixes
// the signer's share, the message, and fresh randomness so that neither a
// weak RNG nor a deterministic replay of only one input can reproduce the
// nonce, following the construction luxfi-threshold's FROST round1 uses.
func SignPreprocess(xi *curve25519.Scalar, msgHash []byte) (*Nonce, error) {
	d, err := hedgedScalar(xi, msgHash, []byte("hiding"))
	if err != nil {
		return nil, fmt.Errorf("frost: deriving hiding nonce: %w", err)
	}
	e, err := hedgedScalar(xi, msgHash, []byte("binding"))
	if err != nil {
		return nil, fmt.Errorf("frost: deriving binding nonce: %w", err)
	}
	if d.IsZero() || e.IsZero() {
		return nil, fmt.Errorf("frost: degenerate nonce scalar, retry")
	}
	return &Nonce{D: d, E: e}, nil
}

func hedgedScalar(xi *curve25519.Scalar, msgHash, label []byte) (*curve25519.Scalar, error) {
	secret := xi.Bytes()
	hashKey := make([]byte, 32)
	blake3.DeriveKey(nonceHedgeContext, secret, hashKey)

	h, err := blake3.NewKeyed(hashKey)
	if err != nil {
		return nil, fmt.Errorf("frost: keying hedge hasher: %w", err)
	}
	_, _ = h.Write(label)
	_, _ = h.Write(msgHash)

	var a [32]byte
	if _, err := rand.Read(a[:]); err != nil {
		return nil, fmt.Errorf("frost: reading hedge randomness: %w", err)
	}
	_, _ = h.Write(a[:])

	digest := h.Digest()
	var wide [64]byte
	if _, err := io.ReadFull(digest, wide[:]); err != nil {
		return nil, fmt.Errorf("frost: reading hedge digest: %w", err)
	}
	return curve25519.ScalarFromUniformBytes(wide[:])
}
