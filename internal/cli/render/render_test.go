package render

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Already Verified", title("already_verified"))
	assert.Equal(t, "Etherscan", title("etherscan"))
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "1.500000", FormatEther(big.NewInt(1_500_000_000_000_000_000)))
	assert.Equal(t, "0.000021", FormatEther(big.NewInt(21_000_000_000_000)))
}

func TestRenderDeployResult(t *testing.T) {
	var buf bytes.Buffer
	address := common.HexToAddress("0x1111111111111111111111111111111111111111")
	err := NewDeployRenderer(&buf).RenderDeployResult(&usecase.DeployAndVerifyResult{
		Deployed: &models.DeployedContract{
			Name:     "Counter",
			Address:  address,
			TxHash:   common.HexToHash("0x01"),
			Strategy: models.StrategyUniversal,
		},
		Verification: &models.VerificationReport{
			Address: address,
			Results: []models.VerifierResult{
				{Backend: "etherscan", Status: models.VerificationStatusVerified},
				{Backend: "blockscout", Status: models.VerificationStatusFailed, Reason: "bytecode mismatch"},
			},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Deployed Counter")
	assert.Contains(t, out, address.Hex())
	assert.Contains(t, out, "Strategy: Universal")
	assert.Contains(t, out, "Etherscan: Verified")
	assert.Contains(t, out, "Blockscout: Failed (bytecode mismatch)")
	assert.NotContains(t, out, "Dust")
}

func TestRenderDeployResult_Skipped(t *testing.T) {
	var buf bytes.Buffer
	err := NewDeployRenderer(&buf).RenderDeployResult(&usecase.DeployAndVerifyResult{
		Deployed: &models.DeployedContract{Name: "Counter", Skipped: true, Strategy: models.StrategyEOA},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Counter already deployed")
	assert.NotContains(t, buf.String(), "Tx:")
}

func TestRenderPredictions(t *testing.T) {
	var buf bytes.Buffer
	address := common.HexToAddress("0x2222222222222222222222222222222222222222")
	err := NewPredictRenderer(&buf).RenderPredictions("Counter", []Prediction{
		{Strategy: models.StrategyUniversal, Address: &address, Deployed: true},
		{Strategy: models.StrategyEOA, Note: "not deployed"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Universal")
	assert.Contains(t, out, address.Hex())
	assert.Contains(t, out, "deployed")
	assert.Contains(t, out, "Eoa")
}

func TestRenderCache(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCache(&buf, "deployments.json", nil))
	assert.Contains(t, buf.String(), "No deployments recorded in deployments.json")

	buf.Reset()
	entries := map[string]common.Address{
		"0x6080604052348015600f57600080fd5b50": common.HexToAddress("0x02"),
		"0xfe":                                 common.HexToAddress("0x01"),
	}
	require.NoError(t, RenderCache(&buf, "deployments.json", entries))
	out := buf.String()
	assert.Contains(t, out, "2 deployments recorded")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(common.HexToAddress("0x01").Hex())),
		bytes.Index(buf.Bytes(), []byte(common.HexToAddress("0x02").Hex())))
	assert.Contains(t, out, "0x60806040…80fd5b50")
}
