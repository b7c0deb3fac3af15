package frost

import (
	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// ZKProof is a Schnorr proof of knowledge of the constant term u_i of a
// party's VSS polynomial, binding the proof to the party's address and a
// caller-supplied session context so it cannot be replayed across sessions.
type ZKProof struct {
	K     *curve25519.Point
	Sigma *curve25519.Scalar
}

// dkgChallenge derives the Fiat-Shamir challenge e for a DKG proof of
// knowledge. The order of inputs (K, U, address text, context) is
// bit-exact-compatibility critical: every party must hash in this order.
func dkgChallenge(K, U *curve25519.Point, id address.Address, context []byte) *curve25519.Scalar {
	return curve25519.ScalarFromSHA256(K.Bytes(), U.Bytes(), []byte(id.String()), context)
}

// ProveKnowledge builds a proof of knowledge of u (the party's long-term
// secret contribution) using the DKG nonce k. Both u and k must be non-zero;
// k must never be reused across proofs.
func ProveKnowledge(u, k *curve25519.Scalar, id address.Address, context []byte) *ZKProof {
	K := k.BasePoint()
	U := u.BasePoint()
	e := dkgChallenge(K, U, id, context)
	sigma := u.MulAdd(e, k) // sigma = u*e + k
	return &ZKProof{K: K, Sigma: sigma}
}

// VerifyKnowledge checks a ZKProof against the prover's commitment to U
// (U = C_0 of the prover's VSS commitment): K =? sigma*P - U*e.
func VerifyKnowledge(proof *ZKProof, U *curve25519.Point, id address.Address, context []byte) bool {
	e := dkgChallenge(proof.K, U, id, context)
	negE := e.Negate()
	expected := curve25519.DoubleBaseMul(negE, U, proof.Sigma)
	return proof.K.Equal(expected)
}

// ProposedCommitment is the round-1 keygen message: a party's VSS commitment
// vector plus its proof of knowledge of the constant term.
type ProposedCommitment struct {
	Commitments VSSCommitment
	Proof       *ZKProof
}

// Zeroize destroys the proof's response scalar. Sigma, combined with a leaked
// k_i, would leak u_i, so proposed commitments are zeroized once validated.
func (p *ProposedCommitment) Zeroize() {
	if p == nil || p.Proof == nil {
		return
	}
	p.Proof.Sigma.Zeroize()
}
