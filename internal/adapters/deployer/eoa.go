package deployer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/create2"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EOADeployer deploys with a plain creation transaction from the signer.
// Addresses depend on the signer nonce, so they are remembered in a cache
// keyed by init code instead of being derived.
type EOADeployer struct {
	chain usecase.ChainClient
	cache usecase.DeploymentCache
	log   *slog.Logger
}

// NewEOADeployer creates an EOA deployer backed by cache.
func NewEOADeployer(chain usecase.ChainClient, cache usecase.DeploymentCache, log *slog.Logger) *EOADeployer {
	return &EOADeployer{
		chain: chain,
		cache: cache,
		log:   log.With("component", "deployer", "strategy", string(models.StrategyEOA)),
	}
}

func (d *EOADeployer) Kind() models.StrategyKind {
	return models.StrategyEOA
}

// AddressOf returns the cached address for the contract. The instance is ignored.
func (d *EOADeployer) AddressOf(_ context.Context, contract *models.Contract, _ *big.Int) (common.Address, error) {
	initCode, err := contract.InitCode()
	if err != nil {
		return common.Address{}, err
	}
	address, ok := d.cache.Lookup(initCode)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: no address recorded for %s", domain.ErrNotFound, contract.Name)
	}
	return address, nil
}

// Deploy sends a creation transaction unless the init code is in the cache.
// A failure to persist the cache is returned together with the handle.
func (d *EOADeployer) Deploy(ctx context.Context, name string, contract *models.Contract, _ *big.Int, params models.TxParams) (*models.DeployedContract, error) {
	initCode, err := contract.InitCode()
	if err != nil {
		return nil, err
	}
	if address, ok := d.cache.Lookup(initCode); ok {
		d.log.Info("skipping deployment, already deployed", "name", name, "address", address.Hex())
		return &models.DeployedContract{Name: name, Address: address, Skipped: true, Strategy: models.StrategyEOA, ABI: contract.ABI}, nil
	}

	signer := d.chain.SignerAddress()
	nonce, err := d.chain.PendingNonce(ctx, signer)
	if err != nil {
		return nil, err
	}
	address := create2.CreateAddress(signer, nonce)

	d.log.Info("deploying contract", "name", name, "address", address.Hex())
	hash, err := d.chain.SendTransaction(ctx, params.Request(nil, initCode))
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}
	receipt, err := d.chain.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		d.log.Error("deployment failed", "name", name, "tx", hash.Hex())
		return nil, &domain.DeploymentFailedError{Name: name, Address: address, TxHash: hash, Reason: "transaction reverted"}
	}
	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}
	d.log.Info("deployed contract", "name", name, "address", address.Hex(), "tx", hash.Hex())

	handle := &models.DeployedContract{Name: name, Address: address, TxHash: hash, Strategy: models.StrategyEOA, ABI: contract.ABI}
	if err := d.cache.Record(initCode, address); err != nil {
		return handle, fmt.Errorf("deployed %s at %s but failed to save deployment cache: %w", name, address.Hex(), err)
	}
	return handle, nil
}

var _ usecase.Deployer = (*EOADeployer)(nil)
