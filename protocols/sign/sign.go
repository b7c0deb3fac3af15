// Package sign implements algo_sign: the BIP32 derivation prelude followed
// by the two-round FROST signing protocol (nonce commitment exchange, then
// response exchange) and its multi-shard generalization, grounded on the
// per-signer state machine in bartke-frost's sign.go/messages (binding
// factor derivation, response computation) and the top-level protocol entry
// points in luxfi-threshold/protocols/lss/lss.go.
package sign

import (
	"fmt"

	"context"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/bip32"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
	"github.com/thresholdlabs/frost25519/pkg/frost"
	"github.com/thresholdlabs/frost25519/pkg/frosterr"
	"github.com/thresholdlabs/frost25519/pkg/messenger"
	"github.com/thresholdlabs/frost25519/pkg/messenger/codec"
	"github.com/thresholdlabs/frost25519/pkg/shard"
)

// MaxMessageHashLen is the largest msg_hash this protocol accepts.
const MaxMessageHashLen = 64

func without(addrs []address.Address, self address.Address) []address.Address {
	out := make([]address.Address, 0, len(addrs))
	for _, a := range addrs {
		if a != self {
			out = append(out, a)
		}
	}
	return out
}

// validateSigners checks that no address appears twice across the whole
// signing architecture.
func validateSigners(arch address.SigningArchitecture) error {
	seen := make(map[address.Address]bool)
	for _, gid := range arch.SortedGroupIDs() {
		for _, a := range arch[gid] {
			if seen[a] {
				return frosterr.ProtocolErr(frosterr.DuplicateSigner, "session architecture", []address.Address{a}, nil)
			}
			seen[a] = true
		}
	}
	return nil
}

// Sign runs algo_sign: self must own a Shard for its own group in ks, and
// must appear in arch's signer set for that group. path may be empty
// (BIP32 idempotence: tweak=0, PK'=PK). msgHash must be at most
// MaxMessageHashLen bytes.
//
// Response validation of peers outside self's own group is deferred to the
// final aggregate Schnorr check, since self never holds another group's VSS
// commitment grid; see DESIGN.md for this Open Question's resolution.
func Sign(ctx context.Context, mb messenger.Mailbox, self address.Address, arch address.SigningArchitecture, ks *shard.MultiShard, path string, msgHash []byte) (*frost.Signature, error) {
	if len(msgHash) > MaxMessageHashLen {
		return nil, frosterr.ConfigErr(fmt.Sprintf("msg_hash length %d exceeds %d", len(msgHash), MaxMessageHashLen), nil)
	}
	if err := validateSigners(arch); err != nil {
		return nil, err
	}

	myGroup := self.GroupID()
	mySigners, ok := arch[myGroup]
	if !ok {
		return nil, frosterr.ConfigErr(fmt.Sprintf("self %s's group %d is not in the session architecture", self, myGroup), nil)
	}
	memberOfGroup := false
	for _, s := range mySigners {
		if s == self {
			memberOfGroup = true
			break
		}
	}
	if !memberOfGroup {
		return nil, frosterr.ConfigErr(fmt.Sprintf("self %s is not a signer in its own group", self), nil)
	}
	baseShard, ok := ks.Groups[myGroup]
	if !ok {
		return nil, frosterr.ConfigErr(fmt.Sprintf("no keystore shard owned for group %d", myGroup), nil)
	}

	// Derivation prelude.
	basePK := ks.PublicKey()
	chainCode := bip32.RootChainCode(basePK)
	tweak, tweakedPK, err := bip32.Derive(path, basePK, chainCode)
	if err != nil {
		return nil, frosterr.DerivationErr("deriving child key", err)
	}
	pivot := arch.Pivot()

	clonedShard := baseShard.Clone()
	if _, ownsPivotRow := clonedShard.VSSCommitments[pivot]; ownsPivotRow {
		if err := clonedShard.ApplyTweak(tweak, pivot); err != nil {
			return nil, frosterr.DerivationErr("applying tweak to pivot commitment row", err)
		}
	}
	defer clonedShard.Zeroize()
	tweak.Zeroize()

	// Round 1: nonce commitment exchange, broadcast to every signer across
	// every group (binding values span the full multi-shard signer set).
	nonce, err := frost.SignPreprocess(clonedShard.Xi, msgHash)
	if err != nil {
		return nil, frosterr.CryptoErr("generating signing nonce", err)
	}
	defer nonce.Zeroize()

	allSigners := arch.AllSigners()
	others := without(allSigners, self)

	if err := codec.Send(ctx, mb, messenger.NonceCommit, self, address.GlobalBroadcast, nonce.Commitment(self)); err != nil {
		return nil, frosterr.TransportErr("broadcasting nonce commitment", err)
	}
	gatheredComs, err := codec.Gather[frost.NonceCommitment](ctx, mb, messenger.NonceCommit, others, address.GlobalBroadcast)
	if err != nil {
		return nil, frosterr.TransportErr("gathering nonce commitments", err)
	}
	commitments := make([]frost.NonceCommitment, 0, len(allSigners))
	commitments = append(commitments, nonce.Commitment(self))
	for _, c := range gatheredComs {
		commitments = append(commitments, c)
	}
	sorted := frost.SortCommitments(commitments)

	rho := frost.ComputeBindingFactors(msgHash, sorted)
	R, err := frost.AggregateNonce(sorted, rho)
	if err != nil {
		return nil, frosterr.ProtocolErr(frosterr.ReasonNone, "aggregating nonce commitment", nil, err)
	}
	c := frost.ComputeChallenge(R, tweakedPK, msgHash)

	lambdaSelf, err := frost.LagrangeCoefficient(self, mySigners)
	if err != nil {
		return nil, frosterr.ProtocolErr(frosterr.ReasonNone, "computing own Lagrange coefficient", []address.Address{self}, err)
	}
	zSelf := frost.SignShare(nonce, rho[self], lambdaSelf, clonedShard.Xi, c)

	// Round 2: response exchange.
	if err := codec.Send(ctx, mb, messenger.Response, self, address.GlobalBroadcast, zSelf); err != nil {
		return nil, frosterr.TransportErr("broadcasting response", err)
	}
	gatheredZ, err := codec.Gather[*curve25519.Scalar](ctx, mb, messenger.Response, others, address.GlobalBroadcast)
	if err != nil {
		return nil, frosterr.TransportErr("gathering responses", err)
	}
	gatheredZ[self] = zSelf

	// Finalize: per-response validation, restricted to self's own group
	// (where self holds the commitment grid needed to compute x_j*P).
	comByAddr := make(map[address.Address]frost.NonceCommitment, len(sorted))
	for _, cmt := range sorted {
		comByAddr[cmt.Address] = cmt
	}
	var badResponses []address.Address
	for peer, z := range gatheredZ {
		if peer.GroupID() != myGroup {
			continue
		}
		lambdaPeer, err := frost.LagrangeCoefficient(peer, mySigners)
		if err != nil {
			badResponses = append(badResponses, peer)
			continue
		}
		xjP := frost.VerifyingPoint(peer, clonedShard.VSSCommitments)
		if !frost.VerifyResponse(z, comByAddr[peer], rho[peer], lambdaPeer, c, xjP) {
			badResponses = append(badResponses, peer)
		}
	}
	if len(badResponses) > 0 {
		return nil, frosterr.ProtocolErr(frosterr.InvalidResponse, "sign finalize", badResponses, nil)
	}

	s := frost.Aggregate(gatheredZ)
	if !frost.VerifySchnorr(s, c, tweakedPK, R) {
		return nil, frosterr.ProtocolErr(frosterr.InvalidSignature, "aggregate signature failed verification: probably insufficient signers", nil, nil)
	}

	sig := &frost.Signature{R: R, S: s, Hash: append([]byte(nil), msgHash...)}
	if !sig.VerifyExternal(tweakedPK) {
		return nil, frosterr.ProtocolErr(frosterr.InvalidSignature, "external Ed25519 re-verification failed", nil, nil)
	}
	return sig, nil
}
