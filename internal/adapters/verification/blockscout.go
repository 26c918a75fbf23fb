package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
)

const (
	blockscoutBackend      = "blockscout"
	blockscoutPollInterval = 10 * time.Second

	blockscoutAlreadyVerified = "Already verified"
	blockscoutStarted         = "Smart-contract verification started"
)

// blockscoutLicenses maps SPDX-style names to Blockscout license types.
// https://docs.blockscout.com/devs/verification/blockscout-smart-contract-verification-api#license-type
var blockscoutLicenses = map[string]string{
	"None":         "none",
	"Unlicense":    "unlicense",
	"MIT":          "mit",
	"GNU GPLv2":    "gnu_gpl_v2",
	"GNU GPLv3":    "gnu_gpl_v3",
	"GNU LGPLv2.1": "gnu_lgpl_v2_1",
	"GNU LGPLv3":   "gnu_lgpl_v3",
	"BSD-2-Clause": "bsd_2_clause",
	"BSD-3-Clause": "bsd_3_clause",
	"MPL-2.0":      "mpl_2_0",
	"OSL-3.0":      "osl_3_0",
	"Apache-2.0":   "apache_2_0",
	"GNU AGPLv3":   "gnu_agpl_v3",
	"BSL 1.1":      "bsl_1_1",
}

// BlockscoutLicense returns the Blockscout license type for license, or
// license itself when it is not a known name.
func BlockscoutLicense(license string) string {
	if mapped, ok := blockscoutLicenses[license]; ok {
		return mapped
	}
	return license
}

// BlockscoutVerifier verifies standard JSON input through the Blockscout v2 API.
// Blockscout has no status endpoint, so waiting means resubmitting until the
// explorer answers that the contract is verified.
type BlockscoutVerifier struct {
	client *resty.Client
	poller Poller
	log    *slog.Logger
}

// NewBlockscoutVerifier creates a verifier for the explorer at baseURL.
func NewBlockscoutVerifier(baseURL string, poller Poller, log *slog.Logger) *BlockscoutVerifier {
	if poller.Interval == 0 {
		poller.Interval = blockscoutPollInterval
	}
	return &BlockscoutVerifier{
		client: resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/")).SetTimeout(30 * time.Second),
		poller: poller,
		log:    log.With("component", "verifier", "backend", blockscoutBackend),
	}
}

func (v *BlockscoutVerifier) Name() string {
	return blockscoutBackend
}

// Verify submits the job, resubmitting while Blockscout reports it as started
// when the job waits for success.
func (v *BlockscoutVerifier) Verify(ctx context.Context, address common.Address, job *models.VerificationJob) (models.VerificationStatus, error) {
	verified, err := v.isVerified(ctx, address)
	if err != nil {
		v.log.Debug("verification check failed, submitting anyway", "address", address.Hex(), "error", err)
	}
	if verified {
		v.log.Info("contract already verified", "name", job.ContractToVerify, "address", address.Hex())
		return models.VerificationStatusAlreadyVerified, nil
	}

	v.log.Info("verifying contract", "name", job.ContractToVerify, "address", address.Hex())
	status, err := v.submit(ctx, address, job)
	if err != nil || status.Terminal() || !job.WaitForSuccess {
		return status, err
	}

	err = v.poller.Poll(ctx, func(ctx context.Context) (bool, error) {
		v.log.Info("waiting for verification", "name", job.ContractToVerify)
		status, err = v.submit(ctx, address, job)
		return status.Terminal(), err
	})
	if err != nil {
		return models.VerificationStatusFailed, err
	}
	return status, nil
}

func (v *BlockscoutVerifier) isVerified(ctx context.Context, address common.Address) (bool, error) {
	var out struct {
		IsVerified bool `json:"is_verified"`
	}
	resp, err := v.client.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/api/v2/smart-contracts/" + address.Hex())
	if err != nil {
		return false, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("blockscout returned HTTP %d", resp.StatusCode())
	}
	return out.IsVerified, nil
}

func (v *BlockscoutVerifier) submit(ctx context.Context, address common.Address, job *models.VerificationJob) (models.VerificationStatus, error) {
	input, err := json.Marshal(job.CompilerInput)
	if err != nil {
		return models.VerificationStatusFailed, fmt.Errorf("failed to marshal compiler input: %w", err)
	}

	var out struct {
		Message string `json:"message"`
	}
	resp, err := v.client.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"compiler_version":            job.CompilerVersion,
			"license_type":                BlockscoutLicense(job.LicenseType),
			"contract_name":               job.ContractName(),
			"autodetect_constructor_args": "false",
			"constructor_args":            job.ConstructorArgs,
		}).
		SetMultipartField("files[0]", "compiler_input.json", "application/json", bytes.NewReader(input)).
		SetResult(&out).
		SetError(&out).
		ForceContentType("application/json").
		Post(fmt.Sprintf("/api/v2/smart-contracts/%s/verification/via/standard-input", address.Hex()))
	if err != nil {
		return models.VerificationStatusFailed, fmt.Errorf("blockscout request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return models.VerificationStatusFailed, fmt.Errorf("%w: blockscout returned HTTP %d: %s", domain.ErrVerificationFailed, resp.StatusCode(), resp.String())
	}

	switch out.Message {
	case blockscoutAlreadyVerified:
		return models.VerificationStatusVerified, nil
	case blockscoutStarted:
		return models.VerificationStatusPending, nil
	default:
		v.log.Error("verification failed", "name", job.ContractToVerify, "message", out.Message)
		return models.VerificationStatusFailed, &domain.VerificationFailedError{Backend: blockscoutBackend, Status: out.Message}
	}
}

var _ usecase.ExplorerVerifier = (*BlockscoutVerifier)(nil)
