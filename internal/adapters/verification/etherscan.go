package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// EtherscanAPIURL is the multichain v2 endpoint; the chain goes in the chainid parameter
	EtherscanAPIURL = "https://api.etherscan.io/v2/api"

	etherscanPollInterval = 5 * time.Second
	etherscanBackend      = "etherscan"
)

// EtherscanAPIURLForChain returns the API URL for chainID.
func EtherscanAPIURLForChain(chainID uint64) string {
	return fmt.Sprintf("%s?chainid=%d", EtherscanAPIURL, chainID)
}

// EtherscanConfig configures an EtherscanVerifier.
type EtherscanConfig struct {
	APIKey  string
	URL     string // EtherscanAPIURL when empty
	ChainID uint64
	// Limiter throttles every request; 5 per second when nil
	Limiter *rate.Limiter
	Poller  Poller
}

// EtherscanVerifier verifies standard JSON input through the Etherscan API.
type EtherscanVerifier struct {
	client  *resty.Client
	apiKey  string
	chainID uint64
	// chainParam is false when the base URL already names the chain
	chainParam bool
	poller     Poller
	log        *slog.Logger
}

// NewEtherscanVerifier creates an Etherscan verifier.
func NewEtherscanVerifier(cfg EtherscanConfig, log *slog.Logger) *EtherscanVerifier {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = EtherscanAPIURL
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 1)
	}
	poller := cfg.Poller
	if poller.Interval == 0 {
		poller.Interval = etherscanPollInterval
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})

	return &EtherscanVerifier{
		client:     client,
		apiKey:     cfg.APIKey,
		chainID:    cfg.ChainID,
		chainParam: cfg.ChainID != 0 && !hasChainID(baseURL),
		poller:     poller,
		log:        log.With("component", "verifier", "backend", etherscanBackend),
	}
}

func hasChainID(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return strings.Contains(baseURL, "chainid=")
	}
	return u.Query().Has("chainid")
}

// etherscanResponse represents Etherscan API response
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// text returns the result when it is a plain string.
func (r *etherscanResponse) text() string {
	var s string
	if err := json.Unmarshal(r.Result, &s); err != nil {
		return string(r.Result)
	}
	return s
}

func (v *EtherscanVerifier) Name() string {
	return etherscanBackend
}

// Verify submits the job unless the contract source is already published.
func (v *EtherscanVerifier) Verify(ctx context.Context, address common.Address, job *models.VerificationJob) (models.VerificationStatus, error) {
	verified, err := v.isVerified(ctx, address)
	if err != nil {
		v.log.Debug("source code check failed, submitting anyway", "address", address.Hex(), "error", err)
	}
	if verified {
		v.log.Info("contract already verified", "name", job.ContractToVerify, "address", address.Hex())
		return models.VerificationStatusAlreadyVerified, nil
	}

	guid, status, err := v.submit(ctx, address, job)
	if err != nil || status.Terminal() {
		return status, err
	}
	v.log.Info("verification started", "name", job.ContractToVerify, "guid", guid)

	if !job.WaitForSuccess {
		return models.VerificationStatusPending, nil
	}
	if err := v.waitForVerification(ctx, guid); err != nil {
		return models.VerificationStatusFailed, err
	}
	return models.VerificationStatusVerified, nil
}

func (v *EtherscanVerifier) call(ctx context.Context, method string, form map[string]string) (*etherscanResponse, error) {
	var out etherscanResponse
	req := v.client.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json")
	if v.chainParam {
		req.SetQueryParam("chainid", fmt.Sprint(v.chainID))
	}

	var (
		resp *resty.Response
		err  error
	)
	if method == resty.MethodGet {
		resp, err = req.SetQueryParams(form).Get("")
	} else {
		resp, err = req.SetFormData(form).Post("")
	}
	if err != nil {
		return nil, fmt.Errorf("etherscan request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: etherscan returned HTTP %d: %s", domain.ErrVerificationFailed, resp.StatusCode(), resp.String())
	}
	return &out, nil
}

func (v *EtherscanVerifier) isVerified(ctx context.Context, address common.Address) (bool, error) {
	resp, err := v.call(ctx, resty.MethodPost, map[string]string{
		"apikey":  v.apiKey,
		"module":  "contract",
		"action":  "getsourcecode",
		"address": address.Hex(),
	})
	if err != nil {
		return false, err
	}
	if resp.Status != "1" {
		return false, fmt.Errorf("getsourcecode: %s", resp.text())
	}

	var sources []struct {
		SourceCode string `json:"SourceCode"`
	}
	if err := json.Unmarshal(resp.Result, &sources); err != nil {
		return false, fmt.Errorf("failed to parse getsourcecode result: %w", err)
	}
	return len(sources) > 0 && sources[0].SourceCode != "", nil
}

func (v *EtherscanVerifier) submit(ctx context.Context, address common.Address, job *models.VerificationJob) (string, models.VerificationStatus, error) {
	input, err := json.Marshal(job.CompilerInput)
	if err != nil {
		return "", models.VerificationStatusFailed, fmt.Errorf("failed to marshal compiler input: %w", err)
	}

	form := map[string]string{
		"apikey":          v.apiKey,
		"module":          "contract",
		"action":          "verifysourcecode",
		"contractaddress": address.Hex(),
		"sourceCode":      string(input),
		"codeformat":      "solidity-standard-json-input",
		"contractname":    job.ContractToVerify,
		"compilerversion": job.CompilerVersion,
	}
	if args := strings.TrimPrefix(job.ConstructorArgs, "0x"); args != "" {
		form["constructorArguements"] = args // Note: Etherscan typo
	}

	v.log.Info("verifying contract", "name", job.ContractToVerify, "address", address.Hex())
	resp, err := v.call(ctx, resty.MethodPost, form)
	if err != nil {
		return "", models.VerificationStatusFailed, err
	}
	if resp.Status != "1" {
		result := resp.text()
		if strings.Contains(strings.ToLower(result), "already verified") {
			return "", models.VerificationStatusAlreadyVerified, nil
		}
		v.log.Error("verification rejected", "name", job.ContractToVerify, "result", result, "message", resp.Message)
		return "", models.VerificationStatusFailed, fmt.Errorf("%w: failed to verify. Result: %s. Message: %s", domain.ErrVerificationFailed, result, resp.Message)
	}
	return resp.text(), models.VerificationStatusPending, nil
}

func (v *EtherscanVerifier) waitForVerification(ctx context.Context, guid string) error {
	return v.poller.Poll(ctx, func(ctx context.Context) (bool, error) {
		resp, err := v.call(ctx, resty.MethodGet, map[string]string{
			"apikey": v.apiKey,
			"module": "contract",
			"action": "checkverifystatus",
			"guid":   guid,
		})
		if err != nil {
			return false, err
		}

		status := resp.text()
		v.log.Info("verification status", "guid", guid, "status", status)
		switch {
		case strings.Contains(status, "Pending"):
			return false, nil
		case strings.Contains(status, "Pass"), strings.Contains(status, "Already Verified"):
			return true, nil
		default:
			v.log.Error("verification failed", "guid", guid, "status", status)
			return false, &domain.VerificationFailedError{Backend: etherscanBackend, Status: status}
		}
	})
}

var _ usecase.ExplorerVerifier = (*EtherscanVerifier)(nil)
