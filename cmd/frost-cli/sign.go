package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/frost"
	"github.com/thresholdlabs/frost25519/pkg/messenger/inmem"
	"github.com/thresholdlabs/frost25519/pkg/shard"
	"github.com/thresholdlabs/frost25519/protocols/sign"
)

func runSign(cmd *cobra.Command, args []string) error {
	signers, err := parseAddressList(memberList)
	if err != nil {
		return fmt.Errorf("parsing signers: %w", err)
	}
	msgHash, err := hex.DecodeString(messageHex)
	if err != nil {
		return fmt.Errorf("decoding message hex: %w", err)
	}

	arch := address.SigningArchitecture{}
	for _, s := range signers {
		arch[s.GroupID()] = append(arch[s.GroupID()], s)
	}

	mb := inmem.New()
	g, ctx := errgroup.WithContext(context.Background())
	sigs := make([]*frost.Signature, len(signers))
	for i, s := range signers {
		i, s := i, s
		g.Go(func() error {
			b, err := os.ReadFile(shardPath(s))
			if err != nil {
				return fmt.Errorf("reading shard for %s: %w", s, err)
			}
			sh, err := shard.Unmarshal(b)
			if err != nil {
				return fmt.Errorf("decoding shard for %s: %w", s, err)
			}
			ms := &shard.MultiShard{
				Groups: map[uint16]*shard.Shard{s.GroupID(): sh},
				Owned:  []address.Address{s},
			}
			logger.Debugf("starting sign", "signer", s.String())
			sig, err := sign.Sign(ctx, mb, s, arch, ms, derivePath, msgHash)
			if err != nil {
				return fmt.Errorf("party %s: %w", s, err)
			}
			sigs[i] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := hex.EncodeToString(sigs[0].Bytes())
	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(out+"\n"), 0o600)
	}
	fmt.Println(out)
	return nil
}
