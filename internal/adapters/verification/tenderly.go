package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
)

const (
	// TenderlyAPIURL is the Tenderly REST API root
	TenderlyAPIURL = "https://api.tenderly.co/api/v1"

	tenderlyBackend = "tenderly"
)

// TenderlyConfig configures a TenderlyVerifier.
type TenderlyConfig struct {
	Account   string
	Project   string
	AccessKey string
	ChainID   uint64
	URL       string // TenderlyAPIURL when empty
}

// TenderlyVerifier adds a contract to a Tenderly project and verifies it there.
type TenderlyVerifier struct {
	client  *resty.Client
	project string
	chainID string
	log     *slog.Logger
}

// NewTenderlyVerifier creates a Tenderly verifier.
func NewTenderlyVerifier(cfg TenderlyConfig, log *slog.Logger) *TenderlyVerifier {
	url := cfg.URL
	if url == "" {
		url = TenderlyAPIURL
	}
	return &TenderlyVerifier{
		client: resty.New().
			SetBaseURL(strings.TrimSuffix(url, "/")).
			SetHeader("X-Access-Key", cfg.AccessKey).
			SetTimeout(30 * time.Second),
		project: fmt.Sprintf("/account/%s/project/%s", cfg.Account, cfg.Project),
		chainID: strconv.FormatUint(cfg.ChainID, 10),
		log:     log.With("component", "verifier", "backend", tenderlyBackend),
	}
}

func (v *TenderlyVerifier) Name() string {
	return tenderlyBackend
}

type tenderlyAddContract struct {
	NetworkID   string `json:"network_id"`
	Address     string `json:"address"`
	DisplayName string `json:"display_name"`
}

type tenderlyCompiler struct {
	Version  string                  `json:"version"`
	Settings models.CompilerSettings `json:"settings"`
}

type tenderlyContract struct {
	ContractToVerify string                       `json:"contractToVerify"`
	Sources          map[string]models.SourceFile `json:"sources"`
	Compiler         tenderlyCompiler             `json:"compiler"`
	Networks         map[string]tenderlyNetwork   `json:"networks"`
}

type tenderlyNetwork struct {
	Address string `json:"address"`
}

type tenderlyVerify struct {
	Config struct {
		Mode string `json:"mode"`
	} `json:"config"`
	Contracts []tenderlyContract `json:"contracts"`
}

// Verify adds the contract to the project under its path:Name alias and then
// submits the sources with the short compiler version.
func (v *TenderlyVerifier) Verify(ctx context.Context, address common.Address, job *models.VerificationJob) (models.VerificationStatus, error) {
	addr := strings.ToLower(address.Hex())

	v.log.Info("adding contract", "name", job.ContractToVerify, "address", addr)
	if err := v.post(ctx, "/address", tenderlyAddContract{
		NetworkID:   v.chainID,
		Address:     addr,
		DisplayName: job.ContractToVerify,
	}); err != nil {
		return models.VerificationStatusFailed, err
	}

	body := tenderlyVerify{
		Contracts: []tenderlyContract{{
			ContractToVerify: job.ContractToVerify,
			Sources:          job.CompilerInput.Sources,
			Compiler: tenderlyCompiler{
				Version:  strings.TrimPrefix(job.ShortVersion(), "v"),
				Settings: job.CompilerInput.Settings,
			},
			Networks: map[string]tenderlyNetwork{v.chainID: {Address: addr}},
		}},
	}
	body.Config.Mode = "public"

	v.log.Info("verifying contract", "name", job.ContractToVerify, "address", addr)
	if err := v.post(ctx, "/contracts", body); err != nil {
		return models.VerificationStatusFailed, err
	}
	return models.VerificationStatusVerified, nil
}

func (v *TenderlyVerifier) post(ctx context.Context, path string, body any) error {
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(v.project + path)
	if err != nil {
		return fmt.Errorf("tenderly request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: tenderly returned HTTP %d: %s", domain.ErrVerificationFailed, resp.StatusCode(), resp.String())
	}
	return nil
}

var _ usecase.ExplorerVerifier = (*TenderlyVerifier)(nil)
