// Package curve25519 wraps the curve25519 scalar field and the Edwards25519
// group in the concrete types the rest of this module builds on. It keeps the
// field arithmetic itself external (filippo.io/edwards25519, the same library
// the standard library's crypto/ed25519 is built on) and owns only encoding,
// hashing-to-scalar, and zeroization conventions specific to this protocol.
package curve25519

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
)

// ScalarSize is the length in bytes of a canonically encoded scalar.
const ScalarSize = 32

var zero32 [32]byte

// Scalar is an element of the prime-order scalar field of curve25519.
type Scalar struct {
	inner *edwards25519.Scalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar()}
}

// RandomScalar samples a uniformly random scalar from crypto/rand.
func RandomScalar() (*Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("curve25519: reading randomness: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		return nil, fmt.Errorf("curve25519: reducing random bytes: %w", err)
	}
	return &Scalar{inner: s}, nil
}

// ScalarFromUint32 embeds a small non-negative integer (e.g. a member ID) as a
// scalar, little-endian, zero-padded.
func ScalarFromUint32(x uint32) *Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint32(buf[:4], x)
	s, err := edwards25519.NewScalar().SetCanonicalBytes(buf[:])
	if err != nil {
		// buf is always < 2^32, far below the group order; cannot fail.
		panic("curve25519: impossible canonical scalar failure: " + err.Error())
	}
	return &Scalar{inner: s}
}

// ScalarFromCanonicalBytes decodes a 32-byte little-endian canonical scalar.
func ScalarFromCanonicalBytes(b []byte) (*Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("curve25519: invalid scalar encoding: %w", err)
	}
	return &Scalar{inner: s}, nil
}

// scalarFromWideBytes reduces an arbitrary-length little-endian integer modulo
// the group order by zero-extending it to 64 bytes before the wide reduction.
func scalarFromWideBytes(b []byte) *Scalar {
	var wide [64]byte
	copy(wide[:], b)
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		panic("curve25519: impossible wide reduction failure: " + err.Error())
	}
	return &Scalar{inner: s}
}

// ScalarFromBytesModQ reduces up to 32 little-endian bytes modulo the group
// order via zero-extension, without hashing. Used for BIP32 tweak steps and
// similar raw-byte-to-scalar conversions that are already uniform.
func ScalarFromBytesModQ(b []byte) *Scalar {
	return scalarFromWideBytes(b)
}

// ScalarFromSHA256 hashes the concatenation of parts with SHA-256 and reduces
// the 32-byte digest modulo the group order (a zero-extended wide reduction).
func ScalarFromSHA256(parts ...[]byte) *Scalar {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return scalarFromWideBytes(h.Sum(nil))
}

// ScalarFromUniformBytes reduces 64 bytes of already-uniform randomness (e.g.
// XOF output) into a scalar, without hashing them again.
func ScalarFromUniformBytes(b []byte) (*Scalar, error) {
	if len(b) != 64 {
		return nil, fmt.Errorf("curve25519: uniform bytes must be 64 bytes, got %d", len(b))
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(b)
	if err != nil {
		return nil, fmt.Errorf("curve25519: reducing uniform bytes: %w", err)
	}
	return &Scalar{inner: s}, nil
}

// ScalarFromSHA512 hashes the concatenation of parts with SHA-512 and reduces
// the full 64-byte digest modulo the group order.
func ScalarFromSHA512(parts ...[]byte) *Scalar {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)
	s, err := edwards25519.NewScalar().SetUniformBytes(sum)
	if err != nil {
		panic("curve25519: impossible wide reduction failure: " + err.Error())
	}
	return &Scalar{inner: s}
}

// Add returns s + other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Add(s.inner, other.inner)}
}

// Sub returns s - other.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Subtract(s.inner, other.inner)}
}

// Mul returns s * other.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Multiply(s.inner, other.inner)}
}

// MulAdd returns s*x + y.
func (s *Scalar) MulAdd(x, y *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().MultiplyAdd(s.inner, x.inner, y.inner)}
}

// Negate returns -s.
func (s *Scalar) Negate() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Negate(s.inner)}
}

// Invert returns s^-1. If s is zero it returns zero rather than failing;
// callers must check IsZero first, exactly where the protocol requires
// non-degenerate denominators (e.g. Lagrange coefficients for a duplicated
// member ID).
func (s *Scalar) Invert() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Invert(s.inner)}
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

// Equal reports whether s and other represent the same field element.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.inner.Equal(other.inner) == 1
}

// Bytes returns the canonical little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

// BasePoint returns s*G, the group generator scaled by s.
func (s *Scalar) BasePoint() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().ScalarBaseMult(s.inner)}
}

// Clone returns an independent copy of s.
func (s *Scalar) Clone() *Scalar {
	c := edwards25519.NewScalar()
	c.Set(s.inner)
	return &Scalar{inner: c}
}

// MarshalBinary implements encoding.BinaryMarshaler, giving Scalar a direct
// CBOR byte-string encoding.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	return s.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Scalar) UnmarshalBinary(b []byte) error {
	decoded, err := ScalarFromCanonicalBytes(b)
	if err != nil {
		return err
	}
	s.inner = decoded.inner
	return nil
}

// Zeroize overwrites the scalar's internal representation with zeroes. It
// must be called on every secret scalar (u_i, k_i, x_i, polynomial
// coefficients other than c_0, nonces d/e) before it is dropped.
func (s *Scalar) Zeroize() {
	if s == nil || s.inner == nil {
		return
	}
	_, _ = s.inner.SetCanonicalBytes(zero32[:])
}
