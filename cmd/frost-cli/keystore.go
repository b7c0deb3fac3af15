package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thresholdlabs/frost25519/pkg/bip32"
	"github.com/thresholdlabs/frost25519/pkg/shard"
)

func runDerive(cmd *cobra.Command, args []string) error {
	b, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading keystore: %w", err)
	}
	sh, err := shard.Unmarshal(b)
	if err != nil {
		return fmt.Errorf("decoding keystore: %w", err)
	}
	pk := sh.PublicKey()
	chainCode := bip32.RootChainCode(pk)
	_, childPK, err := bip32.Derive(derivePath, pk, chainCode)
	if err != nil {
		return fmt.Errorf("deriving path %q: %w", derivePath, err)
	}
	fmt.Printf("%x\n", childPK.Bytes())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	b, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading keystore: %w", err)
	}
	sh, err := shard.Unmarshal(b)
	if err != nil {
		return fmt.Errorf("decoding keystore: %w", err)
	}
	out, err := shard.Marshal(sh)
	if err != nil {
		return fmt.Errorf("re-encoding keystore: %w", err)
	}
	return os.WriteFile(outputFile, out, 0o600)
}

func runImport(cmd *cobra.Command, args []string) error {
	b, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading keystore: %w", err)
	}
	sh, err := shard.Unmarshal(b)
	if err != nil {
		return fmt.Errorf("decoding keystore: %w", err)
	}
	if err := sh.Validate(); err != nil {
		return fmt.Errorf("keystore invariant violated: %w", err)
	}
	fmt.Printf("ok: id=%s threshold=%d pk=%x\n", sh.ID, sh.Threshold, sh.PublicKey().Bytes())
	return nil
}
