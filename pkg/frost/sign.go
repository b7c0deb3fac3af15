package frost

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// SortCommitments returns a copy of commitments sorted by ascending address.
// Every signer must iterate commitments in this order before hashing: it is
// what makes rho_i and R independent of message arrival order.
func SortCommitments(commitments []NonceCommitment) []NonceCommitment {
	sorted := make([]NonceCommitment, len(commitments))
	copy(sorted, commitments)
	sort.Slice(sorted, func(i, j int) bool { return address.Less(sorted[i].Address, sorted[j].Address) })
	return sorted
}

func addressBE4(a address.Address) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(a))
	return b[:]
}

// commitmentDigestBase builds the part of the binding-factor transcript that
// is shared across every signer: the ascending-address list of
// (address || D || E). sorted must already be in ascending address order.
func commitmentDigestBase(sorted []NonceCommitment) []byte {
	var buf []byte
	for _, c := range sorted {
		buf = append(buf, addressBE4(c.Address)...)
		buf = append(buf, c.D.Bytes()...)
		buf = append(buf, c.E.Bytes()...)
	}
	return buf
}

// ComputeBindingFactor computes rho_id = SHA256("I" || id_be4 || msg ||
// base) mod q for one signer id, where base is built from the full
// ascending-address commitment set (sorted).
func ComputeBindingFactor(id address.Address, msgHash []byte, sorted []NonceCommitment) *curve25519.Scalar {
	base := commitmentDigestBase(sorted)
	return curve25519.ScalarFromSHA256([]byte("I"), addressBE4(id), msgHash, base)
}

// ComputeBindingFactors computes rho_j for every signer present in sorted.
func ComputeBindingFactors(msgHash []byte, sorted []NonceCommitment) map[address.Address]*curve25519.Scalar {
	rho := make(map[address.Address]*curve25519.Scalar, len(sorted))
	for _, c := range sorted {
		rho[c.Address] = ComputeBindingFactor(c.Address, msgHash, sorted)
	}
	return rho
}

// AggregateNonce computes R = Sum_j (D_j + rho_j * E_j).
func AggregateNonce(sorted []NonceCommitment, rho map[address.Address]*curve25519.Scalar) (*curve25519.Point, error) {
	R := curve25519.IdentityPoint()
	for _, c := range sorted {
		r, ok := rho[c.Address]
		if !ok {
			return nil, fmt.Errorf("frost: missing binding factor for %s", c.Address)
		}
		R = R.Add(c.D.Add(c.E.Mul(r)))
	}
	return R, nil
}

// ComputeChallenge computes c = SHA512(compress(R) || compress(PK) || msg)
// mod q, the full-width reduction of a 64-byte hash.
func ComputeChallenge(R, PK *curve25519.Point, msgHash []byte) *curve25519.Scalar {
	return curve25519.ScalarFromSHA512(R.Bytes(), PK.Bytes(), msgHash)
}

// SignShare computes this signer's response z_i = d_i + e_i*rho_i +
// lambda_i*x_i*c.
func SignShare(nonce *Nonce, rho, lambda, xi, c *curve25519.Scalar) *curve25519.Scalar {
	eRho := nonce.E.Mul(rho)
	lambdaXiC := lambda.Mul(xi).Mul(c)
	return nonce.D.Add(eRho).Add(lambdaXiC)
}

// VerifyResponse checks z_j*P == (D_j + rho_j*E_j) + lambda_j*c*(x_j*P),
// where xjP is the public verification point for signer j (Sum over every
// participant k of j's group of evalCommitment(C^(k), j.member_id), as
// VerifyingPoint computes it).
func VerifyResponse(z *curve25519.Scalar, commitment NonceCommitment, rho, lambda, c *curve25519.Scalar, xjP *curve25519.Point) bool {
	lhs := z.BasePoint()
	rhsCommit := commitment.D.Add(commitment.E.Mul(rho))
	rhs := rhsCommit.Add(xjP.Mul(lambda.Mul(c)))
	return lhs.Equal(rhs)
}

// Aggregate sums the per-signer responses: s = Sum_j z_j.
func Aggregate(shares map[address.Address]*curve25519.Scalar) *curve25519.Scalar {
	s := curve25519.NewScalar()
	for _, z := range shares {
		s = s.Add(z)
	}
	return s
}

// VerifySchnorr checks the final aggregated Schnorr relation s*P - c*PK == R,
// equivalently s*P == R + c*PK.
func VerifySchnorr(s, c *curve25519.Scalar, PK, R *curve25519.Point) bool {
	lhs := s.BasePoint()
	rhs := R.Add(PK.Mul(c))
	return lhs.Equal(rhs)
}
