package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"strings"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/ethereum/go-ethereum/crypto"
)

// Connector dials the configured network on demand. Most commands never
// touch a chain, so the client is not part of the injected graph.
type Connector struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewConnector creates a connector for the runtime configuration
func NewConnector(cfg *config.RuntimeConfig, log *slog.Logger) *Connector {
	return &Connector{cfg: cfg, log: log}
}

// Configured reports whether a network was selected
func (c *Connector) Configured() bool {
	return c.cfg.Network != nil
}

// Connect dials the network with the configured signer key
func (c *Connector) Connect(ctx context.Context) (*Client, error) {
	if c.cfg.Network == nil {
		return nil, fmt.Errorf("%w: no network selected, use --network or --rpc-url", domain.ErrConfiguration)
	}
	key, err := ParsePrivateKey(c.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return Dial(ctx, Config{
		RPCURL:     c.cfg.Network.RPCURL,
		ChainID:    c.cfg.Network.ChainID,
		PrivateKey: key,
	}, c.log)
}

// ParsePrivateKey parses a hex key with or without 0x. Empty yields nil.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", domain.ErrConfiguration, err)
	}
	return key, nil
}
