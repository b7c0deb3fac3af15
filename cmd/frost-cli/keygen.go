package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/messenger/inmem"
	"github.com/thresholdlabs/frost25519/pkg/shard"
	"github.com/thresholdlabs/frost25519/protocols/keygen"
)

func parseAddressList(s string) ([]address.Address, error) {
	parts := strings.Split(s, ",")
	out := make([]address.Address, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a, err := address.Parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func shardPath(a address.Address) string {
	return filepath.Join(configDir, fmt.Sprintf("shard_%s.cbor", a))
}

func runKeygen(cmd *cobra.Command, args []string) error {
	members, err := parseAddressList(memberList)
	if err != nil {
		return fmt.Errorf("parsing members: %w", err)
	}
	cfg := address.ShardConfig{Threshold: threshold, Members: members}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	mb := inmem.New()
	g, ctx := errgroup.WithContext(context.Background())
	shards := make([]*shard.Shard, len(members))
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			logger.Debugf("starting keygen", "member", m.String())
			sh, err := keygen.Keygen(ctx, mb, m, cfg, context_)
			if err != nil {
				return fmt.Errorf("party %s: %w", m, err)
			}
			shards[i] = sh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, sh := range shards {
		b, err := shard.Marshal(sh)
		if err != nil {
			return fmt.Errorf("encoding shard for %s: %w", sh.ID, err)
		}
		path := shardPath(sh.ID)
		if err := os.WriteFile(path, b, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Infof("wrote shard", "path", path, "pk", fmt.Sprintf("%x", sh.PublicKey().Bytes()))
	}
	fmt.Printf("keygen complete: %d members, threshold %d, pk=%x\n", len(members), threshold, shards[0].PublicKey().Bytes())
	return nil
}
