// Command frost-cli drives the FROST keygen and signing protocols for local
// testing and demonstration, grounded on the cobra command layout in
// luxfi-threshold/cmd/threshold-cli/main.go. It runs every party of a run in
// one process over an in-memory messenger, since the concrete transport is
// out of scope for this module; a production deployment would swap
// pkg/messenger/inmem for a real transport behind the same Mailbox
// interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thresholdlabs/frost25519/pkg/log"
)

// logger is the shared CLI logger; --verbose lowers its minimum level to
// Debug in rootCmd's PersistentPreRun.
var logger = log.New(os.Stderr, log.Info)

var (
	configDir    string
	groupID      uint16
	threshold    int
	memberList   string
	context_     string
	derivePath   string
	messageHex   string
	outputFile   string
	inputFile    string
	verbose      bool

	rootCmd = &cobra.Command{
		Use:   "frost-cli",
		Short: "CLI for the FROST threshold Schnorr signing engine",
		Long:  `A CLI for generating FROST threshold keys and producing threshold signatures over curve25519/Ed25519.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger = log.New(os.Stderr, log.Debug)
			}
		},
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Run distributed key generation for every member locally",
		RunE:  runKeygen,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Run threshold signing over a previously generated keystore set",
		RunE:  runSign,
	}

	deriveCmd = &cobra.Command{
		Use:   "derive",
		Short: "Derive a non-hardened child public key from a keystore",
		RunE:  runDerive,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Decode a keystore file and write its re-encoding to the output path",
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Validate a keystore file's invariants",
		RunE:  runImport,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "d", "./frost-data", "Directory for generated keystore files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	keygenCmd.Flags().Uint16VarP(&groupID, "group", "g", 1, "Group ID for this run")
	keygenCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Threshold (required)")
	keygenCmd.Flags().StringVarP(&memberList, "members", "m", "", "Comma-separated member addresses \"g.m,g.m,...\" (required)")
	keygenCmd.Flags().StringVarP(&context_, "context", "x", "frost-cli", "Session context string mixed into DKG challenges")
	_ = keygenCmd.MarkFlagRequired("threshold")
	_ = keygenCmd.MarkFlagRequired("members")

	signCmd.Flags().StringVarP(&memberList, "signers", "s", "", "Comma-separated signer addresses \"g.m,g.m,...\" (required)")
	signCmd.Flags().StringVarP(&derivePath, "path", "p", "", "BIP32-style non-hardened derivation path, e.g. m/1/14/514")
	signCmd.Flags().StringVarP(&messageHex, "message", "M", "", "Hex-encoded message hash, at most 64 bytes (required)")
	signCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output signature file (hex), default stdout")
	_ = signCmd.MarkFlagRequired("signers")
	_ = signCmd.MarkFlagRequired("message")

	deriveCmd.Flags().StringVarP(&inputFile, "keystore", "k", "", "Keystore file to derive from (required)")
	deriveCmd.Flags().StringVarP(&derivePath, "path", "p", "", "BIP32-style non-hardened derivation path")
	_ = deriveCmd.MarkFlagRequired("keystore")

	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Keystore file to re-encode (required)")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output path (required)")
	_ = exportCmd.MarkFlagRequired("input")
	_ = exportCmd.MarkFlagRequired("output")

	importCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Keystore file to validate (required)")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(keygenCmd, signCmd, deriveCmd, exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
