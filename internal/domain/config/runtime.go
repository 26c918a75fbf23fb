package config

import (
	"math/big"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	Network *Network // nil if not specified

	// Signer key as hex, resolved from flags, env or .env
	PrivateKey string //nolint:gosec // resolved at runtime, never persisted

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration

	Deploy       DeployConfig
	Verification VerificationConfig

	FoundryConfig *FoundryConfig
	Profile       string
}

// Network represents network configuration
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// IsLocal reports whether the network is a local development chain.
func (n *Network) IsLocal() bool {
	return n != nil && (n.ChainID == 31337 || n.ChainID == 1337)
}

// DeployConfig holds deployer settings
type DeployConfig struct {
	Strategy        string
	GasPricePolicy  string
	MaxGasPrice     *big.Int // wei, nil for the protocol default
	FundingOverride *big.Int // wei, nil for the protocol default
	CachePath       string
	ForgeSeed       string // repeatable forged factory for the test strategy
}

// VerificationConfig holds explorer credentials and endpoints
type VerificationConfig struct {
	EtherscanAPIKey   string
	EtherscanURL      string // empty for the v2 multichain API
	BlockscoutURL     string // empty disables blockscout
	TenderlyAccount   string
	TenderlyProject   string
	TenderlyAccessKey string
}

// TenderlyEnabled reports whether every tenderly setting is present.
func (v VerificationConfig) TenderlyEnabled() bool {
	return v.TenderlyAccount != "" && v.TenderlyProject != "" && v.TenderlyAccessKey != ""
}
