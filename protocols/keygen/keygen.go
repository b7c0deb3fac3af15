// Package keygen implements algo_keygen: the two-round distributed
// key-generation protocol (Pedersen-VSS commitment exchange, then encrypted
// share delivery) and its multi-shard generalization, grounded on the
// top-level protocol entry points in luxfi-threshold/protocols/lss/lss.go and
// the commitment-exchange round in
// luxfi-threshold/protocols/lss/keygen/round1.go, reworked around this
// module's blocking Messenger rather than the teacher's reactive round
// handler.
package keygen

import (
	"context"
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/aead"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
	"github.com/thresholdlabs/frost25519/pkg/frost"
	"github.com/thresholdlabs/frost25519/pkg/frosterr"
	"github.com/thresholdlabs/frost25519/pkg/messenger"
	"github.com/thresholdlabs/frost25519/pkg/messenger/codec"
	"github.com/thresholdlabs/frost25519/pkg/shard"
)

// otherMembers returns cfg.Members without self.
func otherMembers(cfg address.ShardConfig, self address.Address) []address.Address {
	out := make([]address.Address, 0, len(cfg.Members)-1)
	for _, m := range cfg.Members {
		if m != self {
			out = append(out, m)
		}
	}
	return out
}

// aeadKey derives the per-peer AES-256-GCM key for round 2 share delivery:
// compress(u_i * C^(peer)_0), an unauthenticated Diffie-Hellman shared point
// between self's long-term secret and peer's commitment to its own.
func aeadKey(ui *curve25519.Scalar, peerCommitment frost.VSSCommitment) []byte {
	return peerCommitment[0].Mul(ui).Bytes()
}

// Keygen runs algo_keygen for a single (group, threshold) subgroup and
// returns the resulting Shard. ctx cancellation or any messenger failure
// aborts the run with a TransportError; no partial Shard is ever returned.
func Keygen(ctx context.Context, mb messenger.Mailbox, self address.Address, cfg address.ShardConfig, sessionContext string) (*shard.Shard, error) {
	if err := cfg.Validate(self); err != nil {
		return nil, frosterr.ConfigErr("keygen config", err)
	}
	peers := otherMembers(cfg, self)
	ctxBytes := []byte(sessionContext)

	ui, err := curve25519.RandomScalar()
	if err != nil {
		return nil, frosterr.CryptoErr("sampling long-term secret", err)
	}
	ki, err := curve25519.RandomScalar()
	if err != nil {
		return nil, frosterr.CryptoErr("sampling DKG nonce", err)
	}

	C, shares, err := frost.GenerateVSSShare(ui, self, cfg.Members, cfg.Threshold)
	if err != nil {
		return nil, frosterr.ConfigErr("generating VSS share", err)
	}
	proof := frost.ProveKnowledge(ui, ki, self, ctxBytes)
	ki.Zeroize()

	mine := frost.ProposedCommitment{Commitments: C, Proof: proof}
	defer mine.Zeroize()

	// Round 1: commitment exchange.
	if err := codec.Scatter(ctx, mb, messenger.DKGCommit, self, peers, mine); err != nil {
		return nil, frosterr.TransportErr("scattering DKG commitment", err)
	}
	gathered, err := codec.Gather[frost.ProposedCommitment](ctx, mb, messenger.DKGCommit, peers, self)
	if err != nil {
		return nil, frosterr.TransportErr("gathering DKG commitments", err)
	}

	vssComDict := map[address.Address]frost.VSSCommitment{self: C}
	var inflated []address.Address
	var badZKP []address.Address
	for peer, pc := range gathered {
		if len(pc.Commitments) != cfg.Threshold {
			inflated = append(inflated, peer)
			continue
		}
		if !frost.VerifyKnowledge(pc.Proof, pc.Commitments[0], peer, ctxBytes) {
			badZKP = append(badZKP, peer)
			continue
		}
		vssComDict[peer] = pc.Commitments
	}
	if len(inflated) > 0 {
		return nil, frosterr.ProtocolErr(frosterr.ThresholdInflation, "round 1 commitment exchange", inflated, nil)
	}
	if len(badZKP) > 0 {
		return nil, frosterr.ProtocolErr(frosterr.InvalidZKP, "round 1 commitment exchange", badZKP, nil)
	}
	for _, pc := range gathered {
		pc := pc
		pc.Zeroize()
	}

	// Round 2: encrypted share delivery.
	for _, peer := range peers {
		key := aeadKey(ui, vssComDict[peer])
		frame, err := aead.Seal(key, shares[peer].Bytes())
		if err != nil {
			return nil, frosterr.CryptoErr(fmt.Sprintf("encrypting share for %s", peer), err)
		}
		if err := codec.Send(ctx, mb, messenger.AEADShare, self, peer, frame); err != nil {
			return nil, frosterr.TransportErr(fmt.Sprintf("sending encrypted share to %s", peer), err)
		}
	}
	frames, err := codec.Gather[*aead.Frame](ctx, mb, messenger.AEADShare, peers, self)
	if err != nil {
		return nil, frosterr.TransportErr("gathering encrypted shares", err)
	}

	partyShares := map[address.Address]*curve25519.Scalar{self: shares[self]}
	for peer, frame := range frames {
		key := aeadKey(ui, vssComDict[peer])
		plaintext, err := aead.Open(key, frame)
		if err != nil {
			return nil, frosterr.CryptoErr(fmt.Sprintf("decrypting share from %s", peer), err)
		}
		sc, err := curve25519.ScalarFromCanonicalBytes(plaintext)
		if err != nil {
			return nil, frosterr.CryptoErr(fmt.Sprintf("decoding share from %s", peer), err)
		}
		partyShares[peer] = sc
	}

	// Finalize: verify every received share against its sender's commitment.
	var badShares []address.Address
	for peer, s := range partyShares {
		if !frost.VerifyVSSShare(self, s, vssComDict[peer]) {
			badShares = append(badShares, peer)
		}
	}
	if len(badShares) > 0 {
		return nil, frosterr.ProtocolErr(frosterr.InvalidShare, "keygen finalize", badShares, nil)
	}

	xi := curve25519.NewScalar()
	for _, s := range partyShares {
		xi = xi.Add(s)
	}
	for _, s := range partyShares {
		s.Zeroize()
	}
	for _, s := range shares {
		s.Zeroize()
	}

	return &shard.Shard{
		ID:             self,
		Threshold:      cfg.Threshold,
		Ui:             ui,
		Xi:             xi,
		VSSCommitments: vssComDict,
	}, nil
}

// KeygenMulti runs algo_keygen independently over every group this party
// owns an address in, processing groups in ascending group_id order (the
// hard contract §5 places on multi-shard runs, since a party may own
// addresses in two groups that would otherwise gather from each other in a
// circular wait).
func KeygenMulti(ctx context.Context, mb messenger.Mailbox, owned []address.Address, arch address.Architecture, sessionContext string) (*shard.MultiShard, error) {
	groups := make(map[uint16]*shard.Shard)
	for _, gid := range arch.SortedGroupIDs() {
		var self address.Address
		found := false
		for _, o := range owned {
			if o.GroupID() == gid {
				self = o
				found = true
				break
			}
		}
		if !found {
			continue
		}
		sh, err := Keygen(ctx, mb, self, arch[gid], sessionContext)
		if err != nil {
			for _, g := range groups {
				g.Zeroize()
			}
			return nil, err
		}
		groups[gid] = sh
	}
	return &shard.MultiShard{Groups: groups, Owned: append([]address.Address(nil), owned...)}, nil
}
