package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var createMarketCmd = &cobra.Command{
	Use:   "create-market",
	Short: "Open a market on a running tribunal service",
	Long: `Submits a market question to a running tribunal service and opens a
market on it. The question file uses the same format as the trial command.`,
	RunE: runCreateMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(createMarketCmd)
	createMarketCmd.Flags().StringP("question-file", "q", "", "Path to the market question JSON file (required)")
	createMarketCmd.Flags().StringP("creator", "c", "", "Creator address, 0x-prefixed hex (required)")
	createMarketCmd.Flags().StringP("deposit", "d", "0", "Creator deposit in wei")
	createMarketCmd.Flags().StringP("addr", "a", "http://localhost:8080", "Base URL of the tribunal service")
	_ = createMarketCmd.MarkFlagRequired("question-file")
	_ = createMarketCmd.MarkFlagRequired("creator")
}

func runCreateMarket(cmd *cobra.Command, args []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	questionFile, _ := cmd.Flags().GetString("question-file")
	creator, _ := cmd.Flags().GetString("creator")
	deposit, _ := cmd.Flags().GetString("deposit")
	addr, _ := cmd.Flags().GetString("addr")

	question, err := loadQuestionFile(questionFile)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"question": question,
		"creator":  creator,
		"deposit":  deposit,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		addr+"/api/markets", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("create market: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("create market: service returned %d: %s", resp.StatusCode, errResp.Error)
	}

	var snap ledger.MarketSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("Market opened.\n\n")
	fmt.Printf("ID:       %s\n", snap.ID)
	fmt.Printf("Question: %s\n", snap.Question.Question)
	fmt.Printf("Deadline: %s\n", snap.Question.SettlementDeadline.Format(time.RFC3339))
	fmt.Printf("Status:   %s\n", snap.Status)

	return nil
}
