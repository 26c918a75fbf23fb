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

// UniversalDeployer deploys through UniversalDeployer2, which takes an
// instance number as salt so the same contract can live at many addresses.
//
// The v2 factory is bootstrapped in two stages: a pre-signed transaction
// deploys v1, then the v2 creation code is sent through v1.
type UniversalDeployer struct {
	factoryDeployer
	factory common.Address
	binding *bindings.UniversalDeployer2
}

// NewUniversalDeployer creates a universal deployer.
func NewUniversalDeployer(chain usecase.ChainClient, cfg Config, log *slog.Logger) *UniversalDeployer {
	cfg = cfg.withDefaults()
	return &UniversalDeployer{
		factoryDeployer: newFactoryDeployer(models.StrategyUniversal, chain, cfg, log),
		factory:         cfg.UniversalFactory,
		binding:         bindings.NewUniversalDeployer2(),
	}
}

// Factory returns the v2 factory address.
func (d *UniversalDeployer) Factory() common.Address {
	return d.factory
}

// AddressOf returns the CREATE2 address under the v2 factory for instance.
func (d *UniversalDeployer) AddressOf(_ context.Context, contract *models.Contract, instance *big.Int) (common.Address, error) {
	return universalAddress(d.factory, contract, instance)
}

func universalAddress(factory common.Address, contract *models.Contract, instance *big.Int) (common.Address, error) {
	salt, err := create2.SaltFromInstance(instance)
	if err != nil {
		return common.Address{}, err
	}
	initCode, err := contract.InitCode()
	if err != nil {
		return common.Address{}, err
	}
	return create2.Compute(factory, salt, initCode), nil
}

// Bootstrap deploys v1 and then v2 when they are missing.
func (d *UniversalDeployer) Bootstrap(ctx context.Context, params models.TxParams) (common.Address, error) {
	deployed, err := d.ensureFactory(ctx, d.factory, UniversalDeployerV2Address)
	if err != nil || deployed {
		return d.factory, err
	}

	params = bootstrapParams(params)
	err = d.boot.deployPresigned(ctx, presignedDeployment{
		name:    "UniversalDeployer",
		eoa:     UniversalBootstrapEOA,
		rawTx:   UniversalDeploymentTx,
		target:  UniversalDeployerV1Address,
		funding: d.boot.cfg.funding(UniversalFunding),
	}, params)
	if err != nil {
		return common.Address{}, err
	}

	d.log.Info("deploying factory", "name", "UniversalDeployer2", "address", d.factory.Hex())
	v1 := UniversalDeployerV1Address
	req := params.Request(&v1, UniversalDeployerV2Code)
	req.GasLimit = universalV2GasLimit
	hash, err := d.chain.SendTransaction(ctx, req)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy UniversalDeployer2: %w", err)
	}
	if err := d.boot.confirm(ctx, "UniversalDeployer2", d.factory, hash); err != nil {
		return common.Address{}, err
	}
	return d.factory, nil
}

// Deploy deploys contract through the v2 factory unless it is already deployed.
func (d *UniversalDeployer) Deploy(ctx context.Context, name string, contract *models.Contract, instance *big.Int, params models.TxParams) (*models.DeployedContract, error) {
	address, err := universalAddress(d.factory, contract, instance)
	if err != nil {
		return nil, err
	}
	if handle, err := d.existing(ctx, name, contract, address); err != nil || handle != nil {
		return handle, err
	}

	if _, err := d.Bootstrap(ctx, params); err != nil {
		return nil, err
	}

	initCode, err := contract.InitCode()
	if err != nil {
		return nil, err
	}
	data, err := d.binding.TryPackDeploy(initCode, instanceOrZero(instance))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if params, err = d.estimate(ctx, d.factory, data, params); err != nil {
		return nil, err
	}
	return d.deployThrough(ctx, name, contract, d.factory, address, data, params)
}

var (
	_ usecase.Deployer           = (*UniversalDeployer)(nil)
	_ usecase.FactoryProvisioner = (*UniversalDeployer)(nil)
)
