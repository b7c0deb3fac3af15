package sign_test

import (
	"context"
	"crypto/sha256"
	"errors"

	"golang.org/x/sync/errgroup"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/bip32"
	"github.com/thresholdlabs/frost25519/pkg/frost"
	"github.com/thresholdlabs/frost25519/pkg/frosterr"
	"github.com/thresholdlabs/frost25519/pkg/messenger/inmem"
	"github.com/thresholdlabs/frost25519/pkg/shard"
	"github.com/thresholdlabs/frost25519/protocols/keygen"
	"github.com/thresholdlabs/frost25519/protocols/sign"
)

func msgHash(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

// runKeygenGroup runs a single-group keygen for cfg and returns the resulting
// shards keyed by address.
func runKeygenGroup(cfg address.ShardConfig, sessionContext string) (map[address.Address]*shard.Shard, error) {
	mb := inmem.New()
	g, ctx := errgroup.WithContext(context.Background())
	results := make(map[address.Address]*shard.Shard)
	resultsSlice := make([]*shard.Shard, len(cfg.Members))
	for i, m := range cfg.Members {
		i, m := i, m
		g.Go(func() error {
			sh, err := keygen.Keygen(ctx, mb, m, cfg, sessionContext)
			if err != nil {
				return err
			}
			resultsSlice[i] = sh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, m := range cfg.Members {
		results[m] = resultsSlice[i]
	}
	return results, nil
}

// runSign runs sign.Sign for every signer in arch concurrently over one
// in-memory mailbox, where shardsOf(addr) returns the MultiShard that signer
// addr should present.
func runSign(arch address.SigningArchitecture, shardsOf func(address.Address) *shard.MultiShard, path string, hash []byte) (map[address.Address]*frost.Signature, error) {
	mb := inmem.New()
	all := arch.AllSigners()
	g, ctx := errgroup.WithContext(context.Background())
	results := make([]*frost.Signature, len(all))
	for i, s := range all {
		i, s := i, s
		g.Go(func() error {
			sig, err := sign.Sign(ctx, mb, s, arch, shardsOf(s), path, hash)
			if err != nil {
				return err
			}
			results[i] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[address.Address]*frost.Signature, len(all))
	for i, s := range all {
		out[s] = results[i]
	}
	return out, nil
}

func singleGroupShards(shards map[address.Address]*shard.Shard) func(address.Address) *shard.MultiShard {
	return func(self address.Address) *shard.MultiShard {
		return &shard.MultiShard{
			Groups: map[uint16]*shard.Shard{self.GroupID(): shards[self]},
			Owned:  []address.Address{self},
		}
	}
}

var _ = Describe("FROST threshold signing", func() {
	Context("single-group signing", func() {
		It("produces a verifiable signature for exactly threshold signers", func() {
			members := []address.Address{address.New(1, 1), address.New(1, 2), address.New(1, 3)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			signers := []address.Address{members[0], members[2]}
			arch := address.SigningArchitecture{1: signers}
			hash := msgHash("hello, threshold world")

			sigs, err := runSign(arch, singleGroupShards(shards), "", hash)
			Expect(err).NotTo(HaveOccurred())

			pk := shards[members[0]].PublicKey()
			for _, s := range signers {
				Expect(sigs[s].Bytes()).To(Equal(sigs[signers[0]].Bytes()))
				Expect(sigs[s].VerifyExternal(pk)).To(BeTrue())
			}
		})

		It("produces the master key signature when the derivation path is empty", func() {
			members := []address.Address{address.New(2, 1), address.New(2, 2)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			arch := address.SigningArchitecture{2: members}
			hash := msgHash("idempotence check")

			sigs, err := runSign(arch, singleGroupShards(shards), "", hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(sigs[members[0]].VerifyExternal(shards[members[0]].PublicKey())).To(BeTrue())
		})

		It("produces a signature valid under the BIP32-derived child key", func() {
			members := []address.Address{address.New(3, 1), address.New(3, 2)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			arch := address.SigningArchitecture{3: members}
			hash := msgHash("derived key message")
			path := "m/1/2/3"

			sigs, err := runSign(arch, singleGroupShards(shards), path, hash)
			Expect(err).NotTo(HaveOccurred())

			basePK := shards[members[0]].PublicKey()
			cc := bip32.RootChainCode(basePK)
			_, childPK, err := bip32.Derive(path, basePK, cc)
			Expect(err).NotTo(HaveOccurred())

			Expect(sigs[members[0]].VerifyExternal(childPK)).To(BeTrue())
			Expect(sigs[members[0]].VerifyExternal(basePK)).To(BeFalse())
		})

		It("rejects a message hash longer than 64 bytes", func() {
			members := []address.Address{address.New(4, 1), address.New(4, 2)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			arch := address.SigningArchitecture{4: members}
			oversized := make([]byte, sign.MaxMessageHashLen+1)

			_, err = runSign(arch, singleGroupShards(shards), "", oversized)
			Expect(err).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Kind).To(Equal(frosterr.Config))
		})

		It("accepts a message hash of exactly 64 bytes", func() {
			members := []address.Address{address.New(6, 1), address.New(6, 2)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			arch := address.SigningArchitecture{6: members}
			exact := make([]byte, sign.MaxMessageHashLen)

			sigs, err := runSign(arch, singleGroupShards(shards), "", exact)
			Expect(err).NotTo(HaveOccurred())
			Expect(sigs[members[0]].VerifyExternal(shards[members[0]].PublicKey())).To(BeTrue())
		})

		It("returns an invalid-signature error when fewer than the threshold number of signers participate", func() {
			members := []address.Address{address.New(8, 1), address.New(8, 2)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			shards, err := runKeygenGroup(cfg, "keygen-ctx")
			Expect(err).NotTo(HaveOccurred())

			arch := address.SigningArchitecture{8: {members[0]}}
			hash := msgHash("too few signers")

			_, err = runSign(arch, singleGroupShards(shards), "", hash)
			Expect(err).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Kind).To(Equal(frosterr.Protocol))
			Expect(fe.Reason).To(Equal(frosterr.InvalidSignature))
		})

		It("rejects a session architecture with a duplicated signer address", func() {
			mb := inmem.New()
			dup := address.New(7, 1)
			arch := address.SigningArchitecture{7: {dup, dup}}
			ms := &shard.MultiShard{Groups: map[uint16]*shard.Shard{}, Owned: []address.Address{dup}}
			_, err := sign.Sign(context.Background(), mb, dup, arch, ms, "", msgHash("x"))
			Expect(err).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Reason).To(Equal(frosterr.DuplicateSigner))
		})
	})

	Context("multi-shard signing", func() {
		It("produces one signature valid under the summed public key across two independent groups", func() {
			group1 := []address.Address{address.New(10, 1), address.New(10, 2), address.New(10, 3)}
			cfg1 := address.ShardConfig{Threshold: 2, Members: group1}
			shards1, err := runKeygenGroup(cfg1, "group1-ctx")
			Expect(err).NotTo(HaveOccurred())

			group2 := []address.Address{address.New(11, 1), address.New(11, 2)}
			cfg2 := address.ShardConfig{Threshold: 2, Members: group2}
			shards2, err := runKeygenGroup(cfg2, "group2-ctx")
			Expect(err).NotTo(HaveOccurred())

			signers1 := []address.Address{group1[0], group1[1]}
			signers2 := group2
			arch := address.SigningArchitecture{10: signers1, 11: signers2}

			shardsOf := func(self address.Address) *shard.MultiShard {
				if self.GroupID() == 10 {
					return &shard.MultiShard{Groups: map[uint16]*shard.Shard{10: shards1[self]}, Owned: []address.Address{self}}
				}
				return &shard.MultiShard{Groups: map[uint16]*shard.Shard{11: shards2[self]}, Owned: []address.Address{self}}
			}

			hash := msgHash("multi-shard message")
			sigs, err := runSign(arch, shardsOf, "", hash)
			Expect(err).NotTo(HaveOccurred())

			combinedPK := shards1[group1[0]].PublicKey().Add(shards2[group2[0]].PublicKey())
			for _, s := range arch.AllSigners() {
				Expect(sigs[s].Bytes()).To(Equal(sigs[arch.AllSigners()[0]].Bytes()))
				Expect(sigs[s].VerifyExternal(combinedPK)).To(BeTrue())
			}
		})
	})
})
