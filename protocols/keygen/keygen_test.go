package keygen_test

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/aead"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
	"github.com/thresholdlabs/frost25519/pkg/frost"
	"github.com/thresholdlabs/frost25519/pkg/frosterr"
	"github.com/thresholdlabs/frost25519/pkg/messenger"
	"github.com/thresholdlabs/frost25519/pkg/messenger/codec"
	"github.com/thresholdlabs/frost25519/pkg/messenger/inmem"
	"github.com/thresholdlabs/frost25519/pkg/shard"
	"github.com/thresholdlabs/frost25519/protocols/keygen"
)

// runKeygen runs keygen.Keygen for every member of cfg concurrently over a
// fresh in-memory mailbox and returns the resulting shards keyed by address.
func runKeygen(cfg address.ShardConfig, sessionContext string) (map[address.Address]*shard.Shard, error) {
	mb := inmem.New()
	g, ctx := errgroup.WithContext(context.Background())
	shards := make(map[address.Address]*shard.Shard, len(cfg.Members))
	results := make([]*shard.Shard, len(cfg.Members))
	for i, m := range cfg.Members {
		i, m := i, m
		g.Go(func() error {
			sh, err := keygen.Keygen(ctx, mb, m, cfg, sessionContext)
			if err != nil {
				return err
			}
			results[i] = sh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, m := range cfg.Members {
		shards[m] = results[i]
	}
	return shards, nil
}

// maliciousZKPParty participates in round 1 with a corrupted proof of
// knowledge but otherwise behaves honestly, to exercise the InvalidZKP abort
// path. It only needs to carry the protocol far enough that honest peers'
// round-1 Gather unblocks.
func maliciousZKPParty(ctx context.Context, mb messenger.Mailbox, self address.Address, cfg address.ShardConfig, sessionContext string) error {
	u, err := curve25519.RandomScalar()
	if err != nil {
		return err
	}
	k, err := curve25519.RandomScalar()
	if err != nil {
		return err
	}
	C, _, err := frost.GenerateVSSShare(u, self, cfg.Members, cfg.Threshold)
	if err != nil {
		return err
	}
	proof := frost.ProveKnowledge(u, k, self, []byte(sessionContext))
	proof.Sigma = proof.Sigma.Add(curve25519.ScalarFromUint32(1))
	mine := frost.ProposedCommitment{Commitments: C, Proof: proof}

	peers := peersOf(cfg, self)
	if err := codec.Scatter(ctx, mb, messenger.DKGCommit, self, peers, mine); err != nil {
		return err
	}
	_, err = codec.Gather[frost.ProposedCommitment](ctx, mb, messenger.DKGCommit, peers, self)
	return err
}

// maliciousShareParty behaves honestly through round 1 but sends one victim
// a corrupted VSS share in round 2, to exercise the InvalidShare abort path.
func maliciousShareParty(ctx context.Context, mb messenger.Mailbox, self address.Address, cfg address.ShardConfig, sessionContext string, victim address.Address) error {
	u, err := curve25519.RandomScalar()
	if err != nil {
		return err
	}
	k, err := curve25519.RandomScalar()
	if err != nil {
		return err
	}
	C, shares, err := frost.GenerateVSSShare(u, self, cfg.Members, cfg.Threshold)
	if err != nil {
		return err
	}
	proof := frost.ProveKnowledge(u, k, self, []byte(sessionContext))
	mine := frost.ProposedCommitment{Commitments: C, Proof: proof}

	peers := peersOf(cfg, self)
	if err := codec.Scatter(ctx, mb, messenger.DKGCommit, self, peers, mine); err != nil {
		return err
	}
	gathered, err := codec.Gather[frost.ProposedCommitment](ctx, mb, messenger.DKGCommit, peers, self)
	if err != nil {
		return err
	}
	vssComDict := map[address.Address]frost.VSSCommitment{self: C}
	for peer, pc := range gathered {
		vssComDict[peer] = pc.Commitments
	}

	for _, peer := range peers {
		key := vssComDict[peer][0].Mul(u).Bytes()
		share := shares[peer]
		if peer == victim {
			share = share.Add(curve25519.ScalarFromUint32(1))
		}
		frame, err := aead.Seal(key, share.Bytes())
		if err != nil {
			return err
		}
		if err := codec.Send(ctx, mb, messenger.AEADShare, self, peer, frame); err != nil {
			return err
		}
	}
	_, err = codec.Gather[*aead.Frame](ctx, mb, messenger.AEADShare, peers, self)
	return err
}

func peersOf(cfg address.ShardConfig, self address.Address) []address.Address {
	out := make([]address.Address, 0, len(cfg.Members)-1)
	for _, m := range cfg.Members {
		if m != self {
			out = append(out, m)
		}
	}
	return out
}

var _ = Describe("FROST distributed key generation", func() {
	Context("honest runs", func() {
		It("produces shards with a shared public key for a 2-of-3 group", func() {
			members := []address.Address{address.New(1, 1), address.New(1, 2), address.New(1, 3)}
			cfg := address.ShardConfig{Threshold: 2, Members: members}

			shards, err := runKeygen(cfg, "test-session")
			Expect(err).NotTo(HaveOccurred())
			Expect(shards).To(HaveLen(3))

			pk := shards[members[0]].PublicKey()
			for _, m := range members {
				Expect(shards[m].Validate()).To(Succeed())
				Expect(shards[m].PublicKey().Equal(pk)).To(BeTrue())
			}
		})

		It("works at the threshold=1 edge case", func() {
			members := []address.Address{address.New(2, 1), address.New(2, 2)}
			cfg := address.ShardConfig{Threshold: 1, Members: members}

			shards, err := runKeygen(cfg, "test-session")
			Expect(err).NotTo(HaveOccurred())
			for _, m := range members {
				Expect(shards[m].Validate()).To(Succeed())
			}
		})

		It("works at the threshold=N edge case", func() {
			members := []address.Address{address.New(3, 1), address.New(3, 2), address.New(3, 3)}
			cfg := address.ShardConfig{Threshold: 3, Members: members}

			shards, err := runKeygen(cfg, "test-session")
			Expect(err).NotTo(HaveOccurred())
			for _, m := range members {
				Expect(shards[m].Validate()).To(Succeed())
			}
		})
	})

	Context("configuration errors", func() {
		It("rejects a self address absent from its own member set", func() {
			mb := inmem.New()
			cfg := address.ShardConfig{Threshold: 1, Members: []address.Address{address.New(1, 2)}}
			_, err := keygen.Keygen(context.Background(), mb, address.New(1, 9), cfg, "ctx")
			Expect(err).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Kind).To(Equal(frosterr.Config))
		})
	})

	Context("adversarial parties", func() {
		It("aborts naming the offender when a ZKP is invalid", func() {
			honest := []address.Address{address.New(4, 1), address.New(4, 2)}
			attacker := address.New(4, 3)
			members := append(append([]address.Address{}, honest...), attacker)
			cfg := address.ShardConfig{Threshold: 2, Members: members}

			mb := inmem.New()
			g, ctx := errgroup.WithContext(context.Background())
			var firstErr error
			errCh := make(chan error, len(honest))
			for _, m := range honest {
				m := m
				g.Go(func() error {
					_, err := keygen.Keygen(ctx, mb, m, cfg, "ctx")
					errCh <- err
					return nil
				})
			}
			g.Go(func() error {
				return maliciousZKPParty(ctx, mb, attacker, cfg, "ctx")
			})
			Expect(g.Wait()).To(Succeed())
			close(errCh)
			for err := range errCh {
				if err != nil {
					firstErr = err
				}
			}
			Expect(firstErr).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(firstErr, &fe)).To(BeTrue())
			Expect(fe.Kind).To(Equal(frosterr.Protocol))
			Expect(fe.Reason).To(Equal(frosterr.InvalidZKP))
			Expect(fe.Offenders).To(ContainElement(attacker))
		})

		It("aborts naming the offender when a VSS share is invalid", func() {
			honest := []address.Address{address.New(5, 1), address.New(5, 2)}
			attacker := address.New(5, 3)
			members := append(append([]address.Address{}, honest...), attacker)
			cfg := address.ShardConfig{Threshold: 2, Members: members}
			victim := honest[0]

			mb := inmem.New()
			g, ctx := errgroup.WithContext(context.Background())
			errCh := make(chan error, len(honest))
			for _, m := range honest {
				m := m
				g.Go(func() error {
					_, err := keygen.Keygen(ctx, mb, m, cfg, "ctx")
					errCh <- err
					return nil
				})
			}
			g.Go(func() error {
				return maliciousShareParty(ctx, mb, attacker, cfg, "ctx", victim)
			})
			Expect(g.Wait()).To(Succeed())
			close(errCh)

			var victimErr error
			for err := range errCh {
				if err != nil {
					victimErr = err
				}
			}
			Expect(victimErr).To(HaveOccurred())
			var fe *frosterr.Error
			Expect(errors.As(victimErr, &fe)).To(BeTrue())
			Expect(fe.Kind).To(Equal(frosterr.Protocol))
			Expect(fe.Reason).To(Equal(frosterr.InvalidShare))
			Expect(fe.Offenders).To(ContainElement(attacker))
		})
	})
})
