package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/create2"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/bindings"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"
)

const (
	transferGas    uint64 = 21_000
	guardDeployGas uint64 = 800_000
)

// walletCode is the proxy creation code the wallet factory deploys, followed
// by the main module padded to 32 bytes.
var walletCode = hexutil.MustDecode("0x603a600e3d39601a805130553df3363d3d373d3d3d363d30545af43d82803e903d91601857fd5bf3")

// DeploymentFlow composes a deployer, the chain and the verifiers into the
// operations exposed to users.
type DeploymentFlow struct {
	deployer  Deployer
	verifier  ContractVerifier
	artifacts ArtifactLoader
	chain     ChainClient
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeploymentFlow creates a new deployment flow. verifier and artifacts may
// be nil when verification is not used.
func NewDeploymentFlow(
	deployer Deployer,
	verifier ContractVerifier,
	artifacts ArtifactLoader,
	chain ChainClient,
	progress ProgressSink,
	log *slog.Logger,
) *DeploymentFlow {
	if progress == nil {
		progress = NopProgress{}
	}
	return &DeploymentFlow{
		deployer:  deployer,
		verifier:  verifier,
		artifacts: artifacts,
		chain:     chain,
		progress:  progress,
		log:       log.With("component", "flow"),
	}
}

// Deployer returns the strategy used by the flow.
func (f *DeploymentFlow) Deployer() Deployer {
	return f.deployer
}

// DeployAndVerifyRequest describes a single deployment.
type DeployAndVerifyRequest struct {
	Name     string
	Contract *models.Contract
	Instance *big.Int
	Params   models.TxParams

	Verify bool
	// Verification overrides the request built from the contract's artifact.
	Verification   *models.VerificationRequest
	WaitForSuccess bool

	// RecoverTo receives the signer's remaining balance after deploying.
	RecoverTo *common.Address
}

// DeployAndVerifyResult is what DeployAndVerify managed to do. Deployed is
// set whenever the deployment went through, even if a later step failed.
type DeployAndVerifyResult struct {
	Deployed     *models.DeployedContract
	Dust         *big.Int
	Verification *models.VerificationReport
}

// DeployAndVerify deploys the contract, optionally sweeps the signer and
// verifies the source on every configured backend.
func (f *DeploymentFlow) DeployAndVerify(ctx context.Context, req DeployAndVerifyRequest) (*DeployAndVerifyResult, error) {
	name := req.Name
	if name == "" {
		name = req.Contract.Name
	}

	f.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: "Deploying " + name, Spinner: true})
	deployed, err := f.deployer.Deploy(ctx, name, req.Contract, req.Instance, req.Params)
	if err != nil {
		f.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: "Failed to deploy " + name})
	} else {
		f.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: "Deployed " + name})
	}
	if deployed == nil {
		return nil, err
	}
	result := &DeployAndVerifyResult{Deployed: deployed}
	if err != nil {
		return result, err
	}

	if req.RecoverTo != nil {
		dust, err := f.RecoverFunds(ctx, *req.RecoverTo)
		if err != nil {
			return result, fmt.Errorf("deployed %s at %s but failed to recover funds: %w", name, deployed.Address.Hex(), err)
		}
		result.Dust = dust
	}

	if !req.Verify {
		return result, nil
	}

	verification, err := f.verificationRequest(req)
	if err != nil {
		return result, err
	}
	f.progress.OnProgress(ctx, ProgressEvent{Stage: "verify", Message: "Verifying " + name, Spinner: true})
	report, err := f.verifier.VerifyContract(ctx, deployed.Address, verification)
	result.Verification = report
	if err != nil {
		f.progress.OnProgress(ctx, ProgressEvent{Stage: "verify", Message: "Failed to verify " + name})
		return result, fmt.Errorf("deployed %s at %s but verification failed: %w", name, deployed.Address.Hex(), err)
	}
	f.progress.OnProgress(ctx, ProgressEvent{Stage: "verify", Message: "Verified " + name})
	return result, nil
}

func (f *DeploymentFlow) verificationRequest(req DeployAndVerifyRequest) (*models.VerificationRequest, error) {
	if f.verifier == nil {
		return nil, fmt.Errorf("%w: no verifier configured", domain.ErrConfiguration)
	}
	if req.Verification != nil {
		v := *req.Verification
		v.WaitForSuccess = req.WaitForSuccess
		return &v, nil
	}
	if f.artifacts == nil || req.Contract.Artifact == nil {
		return nil, fmt.Errorf("%w: %s has no build artifact to verify from", domain.ErrInvalidArgument, req.Contract.Name)
	}
	v, err := f.artifacts.VerificationRequest(req.Contract)
	if err != nil {
		return nil, err
	}
	v.WaitForSuccess = req.WaitForSuccess
	return v, nil
}

// Verify verifies an already deployed contract.
func (f *DeploymentFlow) Verify(ctx context.Context, address common.Address, req *models.VerificationRequest) (*models.VerificationReport, error) {
	if f.verifier == nil {
		return nil, fmt.Errorf("%w: no verifier configured", domain.ErrConfiguration)
	}
	return f.verifier.VerifyContract(ctx, address, req)
}

// Predict returns the address the contract would be deployed to.
func (f *DeploymentFlow) Predict(ctx context.Context, contract *models.Contract, instance *big.Int) (common.Address, error) {
	return f.deployer.AddressOf(ctx, contract, instance)
}

// Bootstrap provisions the strategy's factory without deploying anything else.
func (f *DeploymentFlow) Bootstrap(ctx context.Context, params models.TxParams) (common.Address, error) {
	provisioner, ok := f.deployer.(FactoryProvisioner)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s strategy has no factory", domain.ErrUnsupportedOperation, f.deployer.Kind())
	}
	return provisioner.Bootstrap(ctx, params)
}

// RecoverFunds sends the signer's balance minus the transfer fee to to and
// returns what is left on the signer. A balance that does not cover the fee
// fails with domain.ErrInsufficientFunds before anything is sent.
func (f *DeploymentFlow) RecoverFunds(ctx context.Context, to common.Address) (*big.Int, error) {
	signer := f.chain.SignerAddress()
	balance, err := f.chain.BalanceAt(ctx, signer)
	if err != nil {
		return nil, err
	}

	hasCode, err := f.chain.HasCode(ctx, to)
	if err != nil {
		return nil, err
	}
	gas := transferGas
	if hasCode {
		gas, err = f.chain.EstimateGas(ctx, ethereum.CallMsg{From: signer, To: &to, Value: balance})
		if err != nil {
			return nil, err
		}
	}

	gasPrice, err := f.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gas))
	if fee.Cmp(balance) >= 0 {
		return nil, fmt.Errorf("%w: balance %s does not cover fee %s", domain.ErrInsufficientFunds, balance, fee)
	}
	value := new(big.Int).Sub(balance, fee)

	f.log.Info("recovering funds", "from", signer.Hex(), "to", to.Hex(), "value", value)
	hash, err := f.chain.SendTransaction(ctx, models.TxRequest{To: &to, Value: value, GasLimit: gas, GasPrice: gasPrice})
	if err != nil {
		return nil, fmt.Errorf("failed to recover funds: %w", err)
	}
	receipt, err := f.chain.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("funds recovery %s reverted", hash.Hex())
	}

	return f.chain.BalanceAt(ctx, signer)
}

// GuardAddress returns where the wallet factory deploys a guard for imageHash.
func GuardAddress(factory, module common.Address, imageHash common.Hash) common.Address {
	codeHash := crypto.Keccak256Hash(walletCode, common.LeftPadBytes(module.Bytes(), 32))
	return create2.ComputeWithHash(factory, imageHash, codeHash)
}

// DeployGuards deploys the wallet factory with the flow's strategy and then a
// guard wallet for every image hash that has none yet. Guard transactions are
// sent one by one to keep nonces ordered and confirmed together. Addresses
// are returned in the order of imageHashes.
func (f *DeploymentFlow) DeployGuards(ctx context.Context, walletFactory *models.Contract, module common.Address, imageHashes []common.Hash) ([]common.Address, error) {
	factory, err := f.deployer.Deploy(ctx, "WalletFactory", walletFactory, nil, models.TxParams{})
	if err != nil {
		return nil, err
	}
	binding := bindings.NewWalletFactory()

	addresses := make([]common.Address, len(imageHashes))
	type pending struct {
		address common.Address
		hash    common.Hash
	}
	var sent []pending

	for i, imageHash := range imageHashes {
		address := GuardAddress(factory.Address, module, imageHash)
		addresses[i] = address

		deployed, err := f.chain.HasCode(ctx, address)
		if err != nil {
			return nil, err
		}
		if deployed {
			f.log.Info("skipping guard, already deployed", "address", address.Hex(), "image_hash", imageHash.Hex())
			continue
		}

		data, err := binding.TryPackDeploy(module, imageHash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		f.log.Info("deploying guard", "address", address.Hex(), "image_hash", imageHash.Hex())
		hash, err := f.chain.SendTransaction(ctx, models.TxRequest{To: &factory.Address, Data: data, GasLimit: guardDeployGas})
		if err != nil {
			return nil, fmt.Errorf("failed to deploy guard %s: %w", address.Hex(), err)
		}
		sent = append(sent, pending{address: address, hash: hash})
	}

	var g errgroup.Group
	for _, p := range sent {
		g.Go(func() error {
			receipt, err := f.chain.WaitForReceipt(ctx, p.hash)
			if err != nil {
				return err
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				f.log.Error("guard deployment failed", "address", p.address.Hex(), "tx", p.hash.Hex())
				return &domain.DeploymentFailedError{Name: "guard", Address: p.address, TxHash: p.hash, Reason: "transaction reverted"}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return addresses, nil
}
