package usecase

import (
	"context"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is everything the deployers need from a chain: read-only
// probes plus signing and broadcasting. Failures wrap domain.ErrChainCommunication
// and are never retried by callers.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SignerAddress() common.Address

	HasCode(ctx context.Context, address common.Address) (bool, error)
	BlockGasLimit(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, address common.Address) (uint64, error)

	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	SendTransaction(ctx context.Context, req models.TxRequest) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Deployer is implemented by every deployment strategy.
type Deployer interface {
	Kind() models.StrategyKind
	// Deploy deploys the contract unless code already exists at its address.
	Deploy(ctx context.Context, name string, contract *models.Contract, instance *big.Int, params models.TxParams) (*models.DeployedContract, error)
	// AddressOf returns the address the contract would be deployed to.
	AddressOf(ctx context.Context, contract *models.Contract, instance *big.Int) (common.Address, error)
}

// FactoryProvisioner is implemented by deployers that rely on a factory contract.
type FactoryProvisioner interface {
	// Bootstrap makes sure the factory exists and returns its address.
	Bootstrap(ctx context.Context, params models.TxParams) (common.Address, error)
}

// DeploymentCache maps init code to the address it was deployed at.
type DeploymentCache interface {
	Lookup(initCode []byte) (common.Address, bool)
	Record(initCode []byte, address common.Address) error
	Entries() map[string]common.Address
}

// ExplorerVerifier submits a verification job to a single backend. The
// returned status is pending only when the job does not wait for success.
type ExplorerVerifier interface {
	Name() string
	Verify(ctx context.Context, address common.Address, job *models.VerificationJob) (models.VerificationStatus, error)
}

// ContractVerifier resolves a request and runs it against every configured backend.
type ContractVerifier interface {
	VerifyContract(ctx context.Context, address common.Address, req *models.VerificationRequest) (*models.VerificationReport, error)
}

// ArtifactLoader resolves compiled contracts from the project.
type ArtifactLoader interface {
	LoadContract(ref string) (*models.Contract, error)
	VerificationRequest(contract *models.Contract) (*models.VerificationRequest, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// InteractiveSelector asks the user to confirm actions or pick between options
type InteractiveSelector interface {
	Confirm(prompt string) (bool, error)
	SelectOption(prompt string, options []string) (string, error)
}
