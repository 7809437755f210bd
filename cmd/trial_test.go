package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialCommand_Structure(t *testing.T) {
	require.NotNil(t, trialCmd)
	assert.Equal(t, "trial", trialCmd.Use)
	require.NotNil(t, trialCmd.RunE)
}

func TestTrialCommand_Flags(t *testing.T) {
	questionFlag := trialCmd.Flags().Lookup("question-file")
	require.NotNil(t, questionFlag, "question-file flag not defined")
	assert.Equal(t, "q", questionFlag.Shorthand)

	outFlag := trialCmd.Flags().Lookup("transcript-out")
	require.NotNil(t, outFlag, "transcript-out flag not defined")
	assert.Equal(t, "o", outFlag.Shorthand)
}

func TestCreateMarketCommand_Flags(t *testing.T) {
	addrFlag := createMarketCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag, "addr flag not defined")
	assert.Equal(t, "http://localhost:8080", addrFlag.DefValue)

	depositFlag := createMarketCmd.Flags().Lookup("deposit")
	require.NotNil(t, depositFlag, "deposit flag not defined")
	assert.Equal(t, "0", depositFlag.DefValue)
}
