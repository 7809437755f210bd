package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verifyTranscriptCmd = &cobra.Command{
	Use:   "verify-transcript",
	Short: "Recompute a transcript's content hash",
	Long: `Recomputes the keccak256 content hash of a transcript JSON file and
optionally checks it against the hash recorded at settlement. A mismatch means
the transcript was altered after the market settled.`,
	RunE: runVerifyTranscript,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(verifyTranscriptCmd)
	verifyTranscriptCmd.Flags().StringP("transcript-file", "t", "", "Path to the transcript JSON file (required)")
	verifyTranscriptCmd.Flags().StringP("expect", "e", "", "Expected hash, 0x-prefixed hex")
	_ = verifyTranscriptCmd.MarkFlagRequired("transcript-file")
}

func runVerifyTranscript(cmd *cobra.Command, args []string) error {
	transcriptFile, _ := cmd.Flags().GetString("transcript-file")
	expect, _ := cmd.Flags().GetString("expect")

	data, err := os.ReadFile(transcriptFile)
	if err != nil {
		return fmt.Errorf("read transcript file: %w", err)
	}

	var transcript types.TrialTranscript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return fmt.Errorf("parse transcript file: %w", err)
	}

	hash, err := transcript.Hash()
	if err != nil {
		return fmt.Errorf("hash transcript: %w", err)
	}

	fmt.Printf("Transcript: %s\n", transcript.ID)
	fmt.Printf("Hash:       %s\n", hash.Hex())

	if expect == "" {
		return nil
	}

	if len(expect) != 66 || expect[:2] != "0x" {
		return fmt.Errorf("expected hash must be 32 bytes of 0x-prefixed hex")
	}

	if hash != common.HexToHash(expect) {
		return fmt.Errorf("hash mismatch: transcript does not match %s", expect)
	}

	fmt.Println("Match:      OK")
	return nil
}
