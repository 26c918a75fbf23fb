package deployer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/create2"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/bindings"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
)

// SingletonDeployer deploys through the ERC-2470 singleton factory. The
// factory only takes a zero salt, so every contract has exactly one address.
type SingletonDeployer struct {
	factoryDeployer
	factory common.Address
	binding *bindings.SingletonFactory
}

// NewSingletonDeployer creates a singleton deployer.
func NewSingletonDeployer(chain usecase.ChainClient, cfg Config, log *slog.Logger) *SingletonDeployer {
	cfg = cfg.withDefaults()
	return &SingletonDeployer{
		factoryDeployer: newFactoryDeployer(models.StrategySingleton, chain, cfg, log),
		factory:         cfg.SingletonFactory,
		binding:         bindings.NewSingletonFactory(),
	}
}

// Factory returns the factory address.
func (d *SingletonDeployer) Factory() common.Address {
	return d.factory
}

func checkSingletonInstance(instance *big.Int) error {
	if !create2.IsZeroInstance(instance) {
		return fmt.Errorf("%w: singleton factory does not support instance %s", domain.ErrUnsupportedOperation, instance)
	}
	return nil
}

// AddressOf returns the CREATE2 address under the factory with a zero salt.
func (d *SingletonDeployer) AddressOf(_ context.Context, contract *models.Contract, instance *big.Int) (common.Address, error) {
	if err := checkSingletonInstance(instance); err != nil {
		return common.Address{}, err
	}
	initCode, err := contract.InitCode()
	if err != nil {
		return common.Address{}, err
	}
	return create2.Compute(d.factory, create2.ZeroSalt, initCode), nil
}

// Bootstrap deploys the factory with its pre-signed transaction if needed.
func (d *SingletonDeployer) Bootstrap(ctx context.Context, params models.TxParams) (common.Address, error) {
	deployed, err := d.ensureFactory(ctx, d.factory, SingletonFactoryAddress)
	if err != nil || deployed {
		return d.factory, err
	}

	err = d.boot.deployPresigned(ctx, presignedDeployment{
		name:    "SingletonFactory",
		eoa:     SingletonBootstrapEOA,
		rawTx:   SingletonDeploymentTx,
		target:  d.factory,
		funding: d.boot.cfg.funding(SingletonFunding),
	}, bootstrapParams(params))
	if err != nil {
		return common.Address{}, err
	}
	return d.factory, nil
}

// Deploy deploys contract through the factory unless it is already deployed.
func (d *SingletonDeployer) Deploy(ctx context.Context, name string, contract *models.Contract, instance *big.Int, params models.TxParams) (*models.DeployedContract, error) {
	if err := checkSingletonInstance(instance); err != nil {
		return nil, err
	}
	initCode, err := contract.InitCode()
	if err != nil {
		return nil, err
	}
	address := create2.Compute(d.factory, create2.ZeroSalt, initCode)

	if handle, err := d.existing(ctx, name, contract, address); err != nil || handle != nil {
		return handle, err
	}

	if _, err := d.Bootstrap(ctx, params); err != nil {
		return nil, err
	}

	data, err := d.binding.TryPackDeploy(initCode, create2.ZeroSalt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	// the factory reverts on estimation for large contracts, so use a share of the block
	if params.GasLimit == 0 {
		blockGasLimit, err := d.chain.BlockGasLimit(ctx)
		if err != nil {
			return nil, err
		}
		params.GasLimit = blockGasLimit * blockGasLimitPercent / 100
	}

	return d.deployThrough(ctx, name, contract, d.factory, address, data, params)
}

// bootstrapParams drops the caller's gas limit, which is sized for a contract
// deployment and not for a funding transfer.
func bootstrapParams(params models.TxParams) models.TxParams {
	params.GasLimit = 0
	params.Value = nil
	return params
}

var (
	_ usecase.Deployer           = (*SingletonDeployer)(nil)
	_ usecase.FactoryProvisioner = (*SingletonDeployer)(nil)
)
