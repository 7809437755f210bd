package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "tribunal",
	Short: "Adversarial settlement tribunal for binary markets",
	Long: `Tribunal settles binary prediction markets through a structured
adversarial trial: two independent reasoning services argue opposite sides of
the question over a shared evidence bundle, a third adjudicates, and a
confidence gate decides between on-ledger resolution and escalation to human
review.

Every trial produces an immutable content-hashed transcript, and every
settlement carries that hash so the decision trail can be audited after the
fact.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
