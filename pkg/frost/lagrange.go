package frost

import (
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
)

// LagrangeCoefficient computes lambda_i = Prod_{j in signers, j != id}
// member_id(j) / (member_id(j) - member_id(id)), evaluated at x=0: the weight
// applied to id's share f(member_id(id)) when reconstructing f(0) from the
// polynomial evaluations of signers. Returns an error if two signers share a member_id, which would
// make a denominator zero.
func LagrangeCoefficient(id address.Address, signers []address.Address) (*curve25519.Scalar, error) {
	i := scalarFromMemberID(id)
	one := curve25519.ScalarFromUint32(1)
	num := one.Clone()
	den := one.Clone()

	for _, j := range signers {
		if j == id {
			continue
		}
		jScalar := scalarFromMemberID(j)
		diff := jScalar.Sub(i)
		if diff.IsZero() {
			return nil, fmt.Errorf("frost: signers %s and %s share a member id", id, j)
		}
		num = num.Mul(jScalar)
		den = den.Mul(diff)
	}

	if den.IsZero() {
		return nil, fmt.Errorf("frost: degenerate Lagrange denominator for %s", id)
	}
	return num.Mul(den.Invert()), nil
}
