package adapters

import (
	"github.com/0xsequence/solidity-deployer/internal/adapters/blockchain"
	"github.com/0xsequence/solidity-deployer/internal/adapters/deployer"
	"github.com/0xsequence/solidity-deployer/internal/adapters/fs"
	"github.com/0xsequence/solidity-deployer/internal/adapters/interactive"
	"github.com/0xsequence/solidity-deployer/internal/adapters/progress"
	"github.com/0xsequence/solidity-deployer/internal/adapters/verification"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/google/wire"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewArtifactLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*fs.ArtifactLoader)),

	fs.ProvideDeploymentCache,
	wire.Bind(new(usecase.DeploymentCache), new(*fs.DeploymentCache)),
)

// VerificationSet provides the explorer backends behind one verifier
var VerificationSet = wire.NewSet(
	verification.ProvideContractVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.ContractVerifier)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),

	progress.ProvideProgressSink,
)

// BlockchainSet provides the chain connector and the strategy settings
var BlockchainSet = wire.NewSet(
	blockchain.NewConnector,
	deployer.ProvideConfig,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	VerificationSet,
	InteractiveSet,
	BlockchainSet,
)
