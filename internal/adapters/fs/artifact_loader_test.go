package fs

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterSource = "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.18;\ncontract Counter { uint256 public n; constructor(uint256 _n) { n = _n; } }\n"

func writeArtifact(t *testing.T, root, source, name, bytecode string) {
	t.Helper()
	artifact := map[string]any{
		"abi": []any{
			map[string]any{
				"type":            "constructor",
				"stateMutability": "nonpayable",
				"inputs":          []any{map[string]any{"name": "_n", "type": "uint256", "internalType": "uint256"}},
			},
		},
		"bytecode":         map[string]any{"object": bytecode, "sourceMap": "", "linkReferences": map[string]any{}},
		"deployedBytecode": map[string]any{"object": "0xfe"},
		"metadata": map[string]any{
			"compiler": map[string]any{"version": "0.8.18+commit.87f61d96"},
			"language": "Solidity",
			"settings": map[string]any{
				"compilationTarget": map[string]string{source: name},
				"evmVersion":        "paris",
				"optimizer":         map[string]any{"enabled": true, "runs": 200},
				"remappings":        []string{"forge-std/=lib/forge-std/src/"},
				"libraries":         map[string]string{"src/Lib.sol:Lib": "0x0000000000000000000000000000000000000001"},
			},
			"sources": map[string]any{source: map[string]any{"license": "MIT"}},
		},
	}
	data, err := json.Marshal(artifact)
	require.NoError(t, err)

	dir := filepath.Join(root, "out", filepath.Base(source))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0644))
}

func newTestLoader(t *testing.T) (*ArtifactLoader, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Counter.sol"), []byte(counterSource), 0644))
	writeArtifact(t, root, "src/Counter.sol", "Counter", "0x6080604052")

	// build info is skipped
	require.NoError(t, os.MkdirAll(filepath.Join(root, "out", "build-info"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "out", "build-info", "abc.json"), []byte(`{"id":"abc"}`), 0644))

	return NewArtifactLoader(&config.RuntimeConfig{ProjectRoot: root}), root
}

func TestArtifactLoader_LoadContract(t *testing.T) {
	loader, root := newTestLoader(t)

	for _, ref := range []string{"Counter", "src/Counter.sol:Counter", filepath.Join(root, "out", "Counter.sol", "Counter.json")} {
		t.Run(ref, func(t *testing.T) {
			contract, err := loader.LoadContract(ref)
			require.NoError(t, err)
			assert.Equal(t, "Counter", contract.Name)
			assert.Equal(t, "src/Counter.sol", contract.Path)
			assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, contract.Bytecode)
			require.NotNil(t, contract.ABI)
			assert.Len(t, contract.ABI.Constructor.Inputs, 1)
		})
	}

	ids, err := loader.Contracts()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Counter.sol:Counter"}, ids)
}

func TestArtifactLoader_NotFoundSuggests(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.LoadContract("Cntr")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "did you mean Counter")

	_, err = loader.LoadContract("Zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArtifactLoader_Ambiguous(t *testing.T) {
	loader, root := newTestLoader(t)
	writeArtifact(t, root, "src/legacy/Counter2.sol", "Counter", "0x6001")

	_, err := loader.LoadContract("Counter")
	var ambiguous *AmbiguousArtifactError
	require.ErrorAs(t, err, &ambiguous)
	assert.ElementsMatch(t, []string{"src/Counter.sol:Counter", "src/legacy/Counter2.sol:Counter"}, ambiguous.Candidates)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	contract, err := loader.LoadContract("src/legacy/Counter2.sol:Counter")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, contract.Bytecode)
}

func TestArtifactLoader_MissingOutDir(t *testing.T) {
	loader := NewArtifactLoader(&config.RuntimeConfig{ProjectRoot: t.TempDir()})
	_, err := loader.LoadContract("Counter")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestArtifactLoader_VerificationRequest(t *testing.T) {
	loader, _ := newTestLoader(t)

	contract, err := loader.LoadContract("Counter")
	require.NoError(t, err)

	req, err := loader.VerificationRequest(contract.WithArgs(big.NewInt(5)))
	require.NoError(t, err)
	assert.Equal(t, "src/Counter.sol:Counter", req.ContractToVerify)
	assert.Equal(t, "v0.8.18+commit.87f61d96", req.Version)
	assert.Equal(t, counterSource, req.Sources["src/Counter.sol"].Content)
	assert.Equal(t, "paris", req.Settings.EVMVersion)
	assert.True(t, req.Settings.Optimizer.Enabled)
	assert.Equal(t, 200, req.Settings.Optimizer.Runs)
	assert.Equal(t, map[string]map[string]string{"src/Lib.sol": {"Lib": "0x0000000000000000000000000000000000000001"}}, req.Settings.Libraries)
	assert.Equal(t, "MIT", req.LicenseType)
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000005", req.ConstructorArgs)
}
