// Package frost implements the FROST distributed-key-generation and
// threshold-signing primitives this module builds its protocols from: VSS
// share generation and verification, the DKG proof of knowledge, Lagrange
// interpolation, hedged nonce generation, binding factors, and the
// signing/verification/aggregation math, grounded on the trusted-dealer FROST
// implementation in codahale-thyrse and the two-round signer state machine in
// bartke-frost, adapted here to a distributed (no-dealer) DKG over
// filippo.io/edwards25519.
package frost

import (
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// VSSCommitment is the sequence of th points C_0..C_{th-1} committing to a
// party's secret polynomial, C_j = c_j*P. C_0 = u_i*P is the commitment to
// the secret itself.
type VSSCommitment []*curve25519.Point

// scalarFromMemberID embeds a member ID as the evaluation point of a
// participant's polynomial. Member IDs are 1-based and unique within a group.
func scalarFromMemberID(a address.Address) *curve25519.Scalar {
	return curve25519.ScalarFromUint32(uint32(a.MemberID()))
}

// evalPolynomial evaluates f(x) = coeffs[0] + coeffs[1]*x + ... via Horner's
// method, descending from the highest-degree coefficient.
func evalPolynomial(coeffs []*curve25519.Scalar, x *curve25519.Scalar) *curve25519.Scalar {
	result := coeffs[len(coeffs)-1].Clone()
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// evalCommitment evaluates g^f(x) from a commitment vector via the same
// Horner schedule, in the group rather than the field.
func evalCommitment(C VSSCommitment, x *curve25519.Scalar) *curve25519.Point {
	result := C[len(C)-1].Clone()
	for i := len(C) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(C[i])
	}
	return result
}

// GenerateVSSShare samples a degree-(th-1) polynomial with constant term u
// and returns its public commitment vector alongside each member's share
// f(member_id). All members must share my's group_id; th must be in
// [1, |members|]. Polynomial coefficients other than c_0 are zeroized before
// return, per the module's zeroization rule for derived secret material.
func GenerateVSSShare(u *curve25519.Scalar, my address.Address, members []address.Address, th int) (VSSCommitment, map[address.Address]*curve25519.Scalar, error) {
	if th < 1 || th > len(members) {
		return nil, nil, fmt.Errorf("frost: threshold %d out of range for %d members", th, len(members))
	}
	for _, m := range members {
		if m.GroupID() != my.GroupID() {
			return nil, nil, fmt.Errorf("frost: member %s does not share group id %d", m, my.GroupID())
		}
	}

	coeffs := make([]*curve25519.Scalar, th)
	coeffs[0] = u.Clone()
	for j := 1; j < th; j++ {
		c, err := curve25519.RandomScalar()
		if err != nil {
			return nil, nil, fmt.Errorf("frost: sampling polynomial coefficient: %w", err)
		}
		coeffs[j] = c
	}
	defer func() {
		for j := 1; j < th; j++ {
			coeffs[j].Zeroize()
		}
	}()

	C := make(VSSCommitment, th)
	for j, c := range coeffs {
		C[j] = c.BasePoint()
	}

	shares := make(map[address.Address]*curve25519.Scalar, len(members))
	for _, m := range members {
		shares[m] = evalPolynomial(coeffs, scalarFromMemberID(m))
	}

	return C, shares, nil
}

// VerifyingPoint computes x_id*P = Sum_j evalCommitment(commitments[j],
// id.member_id) across every participant j's commitment vector: the public
// counterpart of id's aggregated secret share x_i, used to verify signing
// responses without ever reconstructing a secret.
func VerifyingPoint(id address.Address, commitments map[address.Address]VSSCommitment) *curve25519.Point {
	x := scalarFromMemberID(id)
	result := curve25519.IdentityPoint()
	for _, C := range commitments {
		result = result.Add(evalCommitment(C, x))
	}
	return result
}

// VerifyVSSShare checks share*P == Σ C_j * id.member_id^j, i.e. that share is
// a valid evaluation of the polynomial committed to by C at id's member_id.
func VerifyVSSShare(id address.Address, share *curve25519.Scalar, C VSSCommitment) bool {
	expected := evalCommitment(C, scalarFromMemberID(id))
	return share.BasePoint().Equal(expected)
}
