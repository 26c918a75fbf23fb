package app

import (
	"context"
	"log/slog"

	"github.com/0xsequence/solidity-deployer/internal/adapters/blockchain"
	"github.com/0xsequence/solidity-deployer/internal/adapters/deployer"
	"github.com/0xsequence/solidity-deployer/internal/adapters/fs"
	"github.com/0xsequence/solidity-deployer/internal/adapters/verification"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
)

// App is the main application container. Chain-bound pieces are built on
// demand by Flow because most commands never dial a node.
type App struct {
	Config *config.RuntimeConfig
	Log    *slog.Logger

	Artifacts *fs.ArtifactLoader
	Cache     *fs.DeploymentCache
	Verifier  *verification.ContractVerifier
	Selector  usecase.InteractiveSelector
	Progress  usecase.ProgressSink

	Connector      *blockchain.Connector
	DeployerConfig deployer.Config
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	artifacts *fs.ArtifactLoader,
	cache *fs.DeploymentCache,
	verifier *verification.ContractVerifier,
	selector usecase.InteractiveSelector,
	progress usecase.ProgressSink,
	connector *blockchain.Connector,
	deployerConfig deployer.Config,
) (*App, error) {
	return &App{
		Config:         cfg,
		Log:            log,
		Artifacts:      artifacts,
		Cache:          cache,
		Verifier:       verifier,
		Selector:       selector,
		Progress:       progress,
		Connector:      connector,
		DeployerConfig: deployerConfig,
	}, nil
}

// Strategy returns the configured strategy, universal by default.
func (a *App) Strategy() (models.StrategyKind, error) {
	return models.ParseStrategyKind(a.Config.Deploy.Strategy)
}

// Deployer builds the strategy for kind on top of chain.
func (a *App) Deployer(kind models.StrategyKind, chain usecase.ChainClient) (usecase.Deployer, error) {
	return deployer.New(kind, chain, a.Cache, a.DeployerConfig, a.Log)
}

// Flow connects to the configured network and returns a deployment flow
// using kind.
func (a *App) Flow(ctx context.Context, kind models.StrategyKind) (*usecase.DeploymentFlow, *blockchain.Client, error) {
	chain, err := a.Connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	d, err := a.Deployer(kind, chain)
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewDeploymentFlow(d, a.Verifier, a.Artifacts, chain, a.Progress, a.Log), chain, nil
}
