// Package deployer implements the deployment strategies: the ERC-2470
// singleton factory, the universal deployer, a forged universal deployer for
// test chains and plain EOA creations.
package deployer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// New returns the deployer for kind. cache is only used by the EOA strategy.
func New(kind models.StrategyKind, chain usecase.ChainClient, cache usecase.DeploymentCache, cfg Config, log *slog.Logger) (usecase.Deployer, error) {
	switch kind {
	case models.StrategySingleton:
		return NewSingletonDeployer(chain, cfg, log), nil
	case models.StrategyUniversal:
		return NewUniversalDeployer(chain, cfg, log), nil
	case models.StrategyTest:
		return NewForgedDeployer(chain, cfg, log)
	case models.StrategyEOA:
		if cache == nil {
			return nil, fmt.Errorf("%w: eoa strategy needs a deployment cache", domain.ErrConfiguration)
		}
		return NewEOADeployer(chain, cache, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidArgument, kind)
	}
}

// ProvideConfig builds the strategy config from the runtime deploy settings.
func ProvideConfig(cfg *config.RuntimeConfig) (Config, error) {
	policy, err := ParseGasPricePolicy(cfg.Deploy.GasPricePolicy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		FundingOverride: cfg.Deploy.FundingOverride,
		GasPricePolicy:  policy,
		MaxGasPrice:     cfg.Deploy.MaxGasPrice,
		ForgeSeed:       cfg.Deploy.ForgeSeed,
	}.withDefaults(), nil
}

// factoryDeployer holds what the CREATE2 strategies have in common.
type factoryDeployer struct {
	kind  models.StrategyKind
	chain usecase.ChainClient
	boot  *bootstrapper
	log   *slog.Logger
}

func newFactoryDeployer(kind models.StrategyKind, chain usecase.ChainClient, cfg Config, log *slog.Logger) factoryDeployer {
	log = log.With("component", "deployer", "strategy", string(kind))
	return factoryDeployer{
		kind:  kind,
		chain: chain,
		boot:  &bootstrapper{chain: chain, cfg: cfg.withDefaults(), log: log},
		log:   log,
	}
}

func (d *factoryDeployer) Kind() models.StrategyKind {
	return d.kind
}

// existing returns a skipped handle when address already has code.
func (d *factoryDeployer) existing(ctx context.Context, name string, contract *models.Contract, address common.Address) (*models.DeployedContract, error) {
	deployed, err := d.chain.HasCode(ctx, address)
	if err != nil {
		return nil, err
	}
	if !deployed {
		return nil, nil
	}
	d.log.Info("skipping deployment, already deployed", "name", name, "address", address.Hex())
	return d.handle(name, contract, address, common.Hash{}), nil
}

// deployThrough sends data to factory and checks that code appears at address.
func (d *factoryDeployer) deployThrough(ctx context.Context, name string, contract *models.Contract, factory, address common.Address, data []byte, params models.TxParams) (*models.DeployedContract, error) {
	d.log.Info("deploying contract", "name", name, "address", address.Hex(), "factory", factory.Hex())

	hash, err := d.chain.SendTransaction(ctx, params.Request(&factory, data))
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}
	if err := d.boot.confirm(ctx, name, address, hash); err != nil {
		return nil, err
	}

	d.log.Info("deployed contract", "name", name, "address", address.Hex(), "tx", hash.Hex())
	return d.handle(name, contract, address, hash), nil
}

// estimate fills in the gas limit of a factory call when the caller left it unset.
func (d *factoryDeployer) estimate(ctx context.Context, factory common.Address, data []byte, params models.TxParams) (models.TxParams, error) {
	if params.GasLimit != 0 {
		return params, nil
	}
	gas, err := d.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     d.chain.SignerAddress(),
		To:       &factory,
		Data:     data,
		Value:    params.Value,
		GasPrice: params.GasPrice,
	})
	if err != nil {
		return params, err
	}
	params.GasLimit = gas
	return params, nil
}

func (d *factoryDeployer) handle(name string, contract *models.Contract, address common.Address, hash common.Hash) *models.DeployedContract {
	return &models.DeployedContract{
		Name:     name,
		Address:  address,
		TxHash:   hash,
		Skipped:  hash == (common.Hash{}),
		Strategy: d.kind,
		ABI:      contract.ABI,
	}
}

// ensureFactory returns nil when factory has code. A factory configured away
// from the protocol address can't be bootstrapped, so it is a configuration error.
func (d *factoryDeployer) ensureFactory(ctx context.Context, factory, protocol common.Address) (bool, error) {
	deployed, err := d.chain.HasCode(ctx, factory)
	if err != nil {
		return false, err
	}
	if deployed {
		return true, nil
	}
	if factory != protocol {
		return false, fmt.Errorf("%w: factory %s has no code and can't be bootstrapped", domain.ErrConfiguration, factory.Hex())
	}
	return false, nil
}

func instanceOrZero(instance *big.Int) *big.Int {
	if instance == nil {
		return new(big.Int)
	}
	return instance
}
