package frost

import (
	"crypto/ed25519"
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// SignatureSize is the length in bytes of the standard Ed25519-compatible
// encoding compress(R) || s.
const SignatureSize = curve25519.PointSize + curve25519.ScalarSize

// Signature is a completed FROST signature: R = Sum(D_j + rho_j*E_j) and
// s = Sum(z_j), plus the message hash it was produced over.
type Signature struct {
	R    *curve25519.Point
	S    *curve25519.Scalar
	Hash []byte
}

// Bytes returns the standard 64-byte Ed25519 encoding compress(R) || s.
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 0, SignatureSize)
	out = append(out, sig.R.Bytes()...)
	out = append(out, sig.S.Bytes()...)
	return out
}

// ParseSignature decodes a 64-byte compress(R) || s encoding.
func ParseSignature(b []byte, msgHash []byte) (*Signature, error) {
	if len(b) != SignatureSize {
		return nil, fmt.Errorf("frost: signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	R, err := curve25519.PointFromBytes(b[:curve25519.PointSize])
	if err != nil {
		return nil, fmt.Errorf("frost: decoding R: %w", err)
	}
	s, err := curve25519.ScalarFromCanonicalBytes(b[curve25519.PointSize:])
	if err != nil {
		return nil, fmt.Errorf("frost: decoding s: %w", err)
	}
	return &Signature{R: R, S: s, Hash: msgHash}, nil
}

// VerifyExternal re-checks the signature against an external, standard
// Ed25519 verifier using the 64-byte compress(R) || s encoding, catching any
// encoding mismatch the internal Schnorr check alone would miss.
func (sig *Signature) VerifyExternal(pk *curve25519.Point) bool {
	return ed25519.Verify(ed25519.PublicKey(pk.Bytes()), sig.Hash, sig.Bytes())
}
