package curve25519

import (
	"fmt"

	"filippo.io/edwards25519"
)

// PointSize is the length in bytes of a canonically encoded point.
const PointSize = 32

// Point is an element of the Edwards25519 group, encoded exactly as
// crypto/ed25519 encodes public keys and signature R components.
type Point struct {
	inner *edwards25519.Point
}

// IdentityPoint returns the group identity element.
func IdentityPoint() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint()}
}

// BasePoint returns the group generator G.
func BasePoint() *Point {
	return &Point{inner: edwards25519.NewGeneratorPoint()}
}

// PointFromBytes decodes a 32-byte compressed point.
func PointFromBytes(b []byte) (*Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("curve25519: invalid point encoding: %w", err)
	}
	return &Point{inner: p}, nil
}

// Add returns p + other.
func (p *Point) Add(other *Point) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Add(p.inner, other.inner)}
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Negate(p.inner)}
}

// Mul returns s*p.
func (p *Point) Mul(s *Scalar) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().ScalarMult(s.inner, p.inner)}
}

// DoubleBaseMul returns a*A + b*G, computed in variable time (both inputs are
// public during verification, never secret).
func DoubleBaseMul(a *Scalar, A *Point, b *Scalar) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().VarTimeDoubleScalarBaseMult(a.inner, A.inner, b.inner)}
}

// Equal reports whether p and other encode the same group element.
func (p *Point) Equal(other *Point) bool {
	return p.inner.Equal(other.inner) == 1
}

// IsIdentity reports whether p is the group identity.
func (p *Point) IsIdentity() bool {
	return p.Equal(IdentityPoint())
}

// Bytes returns the canonical 32-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// MarshalBinary implements encoding.BinaryMarshaler, giving Point a direct
// CBOR byte-string encoding.
func (p *Point) MarshalBinary() ([]byte, error) {
	return p.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Point) UnmarshalBinary(b []byte) error {
	decoded, err := PointFromBytes(b)
	if err != nil {
		return err
	}
	p.inner = decoded.inner
	return nil
}

// Clone returns an independent copy of p.
func (p *Point) Clone() *Point {
	c := edwards25519.NewIdentityPoint()
	c.Set(p.inner)
	return &Point{inner: c}
}
