package verification

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
)

// defaultOutputSelection is the output selection sent with every compiler input
var defaultOutputSelection = map[string]map[string][]string{
	"*": {
		"*": {"abi", "evm.bytecode", "evm.deployedBytecode", "evm.methodIdentifiers", "metadata"},
		"":  {"ast"},
	},
}

// VersionResolver turns a short compiler version into a long one.
type VersionResolver interface {
	LongVersion(ctx context.Context, version string) (string, error)
}

// ContractVerifier resolves a request into a job and runs it against every
// backend in order. A failing backend does not stop the others.
type ContractVerifier struct {
	versions VersionResolver
	backends []usecase.ExplorerVerifier
	log      *slog.Logger
}

// NewContractVerifier creates a verifier running backends in the given order.
func NewContractVerifier(versions VersionResolver, backends []usecase.ExplorerVerifier, log *slog.Logger) *ContractVerifier {
	return &ContractVerifier{
		versions: versions,
		backends: backends,
		log:      log.With("component", "verifier"),
	}
}

// ProvideContractVerifier builds the verifier from the runtime configuration:
// Tenderly when fully configured, Etherscan when an API key is set and
// Blockscout when a URL is set.
func ProvideContractVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ContractVerifier {
	var chainID uint64
	if cfg.Network != nil {
		chainID = cfg.Network.ChainID
	}
	v := cfg.Verification

	var backends []usecase.ExplorerVerifier
	if v.TenderlyEnabled() {
		backends = append(backends, NewTenderlyVerifier(TenderlyConfig{
			Account:   v.TenderlyAccount,
			Project:   v.TenderlyProject,
			AccessKey: v.TenderlyAccessKey,
			ChainID:   chainID,
		}, log))
	}
	if v.EtherscanAPIKey != "" {
		backends = append(backends, NewEtherscanVerifier(EtherscanConfig{
			APIKey:  v.EtherscanAPIKey,
			URL:     v.EtherscanURL,
			ChainID: chainID,
			Poller:  NewPoller(etherscanPollInterval),
		}, log))
	}
	if v.BlockscoutURL != "" {
		backends = append(backends, NewBlockscoutVerifier(v.BlockscoutURL, NewPoller(blockscoutPollInterval), log))
	}

	return NewContractVerifier(NewSolcVersions(""), backends, log)
}

// Backends returns the names of the configured backends.
func (v *ContractVerifier) Backends() []string {
	names := make([]string, len(v.backends))
	for i, b := range v.backends {
		names[i] = b.Name()
	}
	return names
}

// VerifyContract verifies address on every backend. The report is returned
// even when some backends fail; the error aggregates their failures.
func (v *ContractVerifier) VerifyContract(ctx context.Context, address common.Address, req *models.VerificationRequest) (*models.VerificationReport, error) {
	if len(v.backends) == 0 {
		return nil, fmt.Errorf("%w: no verification backend configured", domain.ErrConfiguration)
	}

	job, err := v.Job(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &models.VerificationReport{Address: address}
	var result *multierror.Error
	for _, backend := range v.backends {
		status, err := backend.Verify(ctx, address, job)
		res := models.VerifierResult{Backend: backend.Name(), Status: status}
		if err != nil {
			res.Status = models.VerificationStatusFailed
			res.Reason = err.Error()
			result = multierror.Append(result, fmt.Errorf("%s: %w", backend.Name(), err))
			v.log.Error("verification failed", "backend", backend.Name(), "address", address.Hex(), "error", err)
		}
		report.Results = append(report.Results, res)
	}
	return report, result.ErrorOrNil()
}

// Job resolves the compiler version and builds the standard JSON input.
func (v *ContractVerifier) Job(ctx context.Context, req *models.VerificationRequest) (*models.VerificationJob, error) {
	if req.ContractToVerify == "" {
		return nil, fmt.Errorf("%w: no contract to verify", domain.ErrInvalidArgument)
	}
	version, err := v.versions.LongVersion(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	settings := req.Settings
	if settings.OutputSelection == nil {
		settings.OutputSelection = maps.Clone(defaultOutputSelection)
	}

	return &models.VerificationJob{
		ContractToVerify: req.ContractToVerify,
		CompilerVersion:  version,
		CompilerInput: models.CompilerInput{
			Language: "Solidity",
			Sources:  req.Sources,
			Settings: settings,
		},
		ConstructorArgs: req.ConstructorArgs,
		LicenseType:     req.LicenseType,
		WaitForSuccess:  req.WaitForSuccess,
	}, nil
}

// ValidateBytecode checks that contract was built from the expected creation code.
func ValidateBytecode(contract *models.Contract, expected []byte) error {
	if !contract.MatchesBytecode(expected) {
		return fmt.Errorf("%w: %s", domain.ErrBytecodeMismatch, contract.Name)
	}
	return nil
}

var _ usecase.ContractVerifier = (*ContractVerifier)(nil)
