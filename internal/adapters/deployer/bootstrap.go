package deployer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GasPricePolicy decides what happens when a pre-signed bootstrap transaction
// would be broadcast while the network gas price is above the ceiling.
type GasPricePolicy string

const (
	// GasPricePolicyWarn broadcasts anyway and annotates any failure
	GasPricePolicyWarn GasPricePolicy = "warn"
	// GasPricePolicyBlock refuses to fund or broadcast
	GasPricePolicyBlock GasPricePolicy = "block"
)

// ParseGasPricePolicy parses a policy name; empty means warn.
func ParseGasPricePolicy(s string) (GasPricePolicy, error) {
	switch GasPricePolicy(s) {
	case "", GasPricePolicyWarn:
		return GasPricePolicyWarn, nil
	case GasPricePolicyBlock:
		return GasPricePolicyBlock, nil
	default:
		return "", fmt.Errorf("%w: unknown gas price policy %q", domain.ErrInvalidArgument, s)
	}
}

// Config holds the settings shared by every strategy.
type Config struct {
	// FundingOverride replaces the protocol funding amount of bootstrap accounts
	FundingOverride *big.Int
	// GasPricePolicy applies when the gas price exceeds MaxGasPrice
	GasPricePolicy GasPricePolicy
	// MaxGasPrice is the bootstrap gas price ceiling
	MaxGasPrice *big.Int
	// SingletonFactory is the factory used by the singleton strategy
	SingletonFactory common.Address
	// UniversalFactory is the v2 factory used by the universal strategy
	UniversalFactory common.Address
	// Rand feeds the forged signature; crypto/rand when nil
	Rand io.Reader
	// ForgeSeed makes the forged signature repeatable when Rand is nil
	ForgeSeed string
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		GasPricePolicy:   GasPricePolicyWarn,
		MaxGasPrice:      MaxBootstrapGasPrice,
		SingletonFactory: SingletonFactoryAddress,
		UniversalFactory: UniversalDeployerV2Address,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.GasPricePolicy == "" {
		c.GasPricePolicy = d.GasPricePolicy
	}
	if c.MaxGasPrice == nil {
		c.MaxGasPrice = d.MaxGasPrice
	}
	if c.SingletonFactory == (common.Address{}) {
		c.SingletonFactory = d.SingletonFactory
	}
	if c.UniversalFactory == (common.Address{}) {
		c.UniversalFactory = d.UniversalFactory
	}
	return c
}

func (c Config) funding(protocolDefault *big.Int) *big.Int {
	if c.FundingOverride != nil {
		return c.FundingOverride
	}
	return protocolDefault
}

// presignedDeployment is a keyless deployment: a signed transaction whose
// sender nobody holds the key for, so it can only ever create one contract.
type presignedDeployment struct {
	name    string
	eoa     common.Address
	rawTx   []byte
	target  common.Address
	funding *big.Int
}

type bootstrapper struct {
	chain usecase.ChainClient
	cfg   Config
	log   *slog.Logger
}

// fund tops up eoa to required, sending only the shortfall.
func (b *bootstrapper) fund(ctx context.Context, eoa common.Address, required *big.Int, params models.TxParams) error {
	balance, err := b.chain.BalanceAt(ctx, eoa)
	if err != nil {
		return err
	}
	if balance.Cmp(required) >= 0 {
		b.log.Debug("bootstrap account already funded", "eoa", eoa.Hex(), "balance", balance)
		return nil
	}

	shortfall := new(big.Int).Sub(required, balance)
	b.log.Info("funding bootstrap account", "eoa", eoa.Hex(), "value", shortfall)

	req := params.Request(&eoa, nil)
	req.Value = shortfall
	hash, err := b.chain.SendTransaction(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to fund %s: %w", eoa.Hex(), err)
	}
	receipt, err := b.chain.WaitForReceipt(ctx, hash)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: failed to fund bootstrap account %s with %s in %s", domain.ErrDeploymentFailed, eoa.Hex(), required, hash.Hex())
	}
	return nil
}

// checkGasPrice returns a non-empty warning when the gas price is above the
// ceiling, or an error when the policy blocks the broadcast.
func (b *bootstrapper) checkGasPrice(ctx context.Context, name string, params models.TxParams) (string, error) {
	gasPrice := params.GasPrice
	if gasPrice == nil {
		var err error
		if gasPrice, err = b.chain.SuggestGasPrice(ctx); err != nil {
			return "", err
		}
	}
	if gasPrice.Cmp(b.cfg.MaxGasPrice) <= 0 {
		return "", nil
	}

	warning := fmt.Sprintf("gas price %s exceeds %s for %s", gasPrice, b.cfg.MaxGasPrice, name)
	if b.cfg.GasPricePolicy == GasPricePolicyBlock {
		return "", fmt.Errorf("%w: %s", domain.ErrGasPriceTooHigh, warning)
	}
	b.log.Warn("gas price too high for bootstrap transaction, trying anyway", "name", name, "gasPrice", gasPrice, "max", b.cfg.MaxGasPrice)
	return warning, nil
}

// deployPresigned provisions p.target unless it already has code. Every step
// is skipped when already done, so re-running after a crash is safe.
func (b *bootstrapper) deployPresigned(ctx context.Context, p presignedDeployment, params models.TxParams) error {
	deployed, err := b.chain.HasCode(ctx, p.target)
	if err != nil {
		return err
	}
	if deployed {
		b.log.Debug("factory already deployed", "name", p.name, "address", p.target.Hex())
		return nil
	}

	warning, err := b.checkGasPrice(ctx, p.name, params)
	if err != nil {
		return err
	}

	if err := b.fund(ctx, p.eoa, p.funding, params); err != nil {
		return err
	}

	b.log.Info("deploying factory", "name", p.name, "address", p.target.Hex())
	hash, err := b.chain.SendRawTransaction(ctx, p.rawTx)
	if err != nil {
		return annotate(err, warning)
	}
	return annotate(b.confirm(ctx, p.name, p.target, hash), warning)
}

// confirm waits for hash and checks that code now exists at target.
func (b *bootstrapper) confirm(ctx context.Context, name string, target common.Address, hash common.Hash) error {
	receipt, err := b.chain.WaitForReceipt(ctx, hash)
	if err != nil {
		return err
	}

	var reason string
	if receipt.Status != types.ReceiptStatusSuccessful {
		reason = "transaction reverted"
	} else {
		deployed, err := b.chain.HasCode(ctx, target)
		if err != nil {
			return err
		}
		if deployed {
			return nil
		}
		reason = "no code at address after transaction"
	}

	failure := &domain.DeploymentFailedError{Name: name, Address: target, TxHash: hash, Reason: reason}
	b.log.Error("deployment failed", "name", name, "address", target.Hex(), "tx", hash.Hex(), "reason", reason)
	return failure
}

func annotate(err error, warning string) error {
	if err == nil || warning == "" {
		return err
	}
	return fmt.Errorf("%w (%s, which is likely why the transaction failed)", err, warning)
}
