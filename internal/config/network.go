package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/go-resty/resty/v2"
)

// NetworkResolver resolves network names to configurations with caching
type NetworkResolver struct {
	dataDir       string
	foundryConfig *config.FoundryConfig
	client        *resty.Client

	mu    sync.RWMutex
	cache map[string]uint64 // rpc url -> chain id
}

// NewNetworkResolver creates a new network resolver. Chain IDs are cached in
// dataDir when it is set.
func NewNetworkResolver(dataDir string, foundryConfig *config.FoundryConfig) *NetworkResolver {
	r := &NetworkResolver{
		dataDir:       dataDir,
		foundryConfig: foundryConfig,
		client:        resty.New().SetTimeout(10 * time.Second),
		cache:         make(map[string]uint64),
	}
	r.loadCache()
	return r
}

// Resolve turns a foundry.toml endpoint name or a raw RPC URL into a network.
// chainID is trusted when non-zero, otherwise it is read from the endpoint.
func (r *NetworkResolver) Resolve(nameOrURL string, chainID uint64) (*config.Network, error) {
	name, rpcURL := nameOrURL, nameOrURL
	if url, ok := r.foundryConfig.RpcEndpoints[nameOrURL]; ok {
		rpcURL = url
	} else if !strings.Contains(nameOrURL, "://") {
		return nil, fmt.Errorf("%w: network '%s' not found in foundry.toml [rpc_endpoints]", domain.ErrNotFound, nameOrURL)
	} else {
		name = ""
	}

	if chainID == 0 {
		var err error
		if chainID, err = r.chainID(rpcURL); err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for %s: %w", nameOrURL, err)
		}
	}
	if name == "" {
		name = strconv.FormatUint(chainID, 10)
	}

	return &config.Network{
		Name:        name,
		RPCURL:      rpcURL,
		ChainID:     chainID,
		ExplorerURL: r.explorerURL(name),
	}, nil
}

// chainID calls eth_chainId, consulting the cache first
func (r *NetworkResolver) chainID(rpcURL string) (uint64, error) {
	r.mu.RLock()
	cached, ok := r.cache[rpcURL]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var out struct {
		Result string `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	resp, err := r.client.R().
		SetBody(map[string]any{"jsonrpc": "2.0", "method": "eth_chainId", "params": []any{}, "id": 1}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(rpcURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrChainCommunication, err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("%w: RPC returned HTTP %d", domain.ErrChainCommunication, resp.StatusCode())
	}
	if out.Error != nil {
		return 0, fmt.Errorf("%w: RPC error: %s", domain.ErrChainCommunication, out.Error.Message)
	}
	chainID, err := strconv.ParseUint(strings.TrimPrefix(out.Result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse chain ID %q", domain.ErrChainCommunication, out.Result)
	}

	r.mu.Lock()
	r.cache[rpcURL] = chainID
	r.mu.Unlock()
	r.saveCache()
	return chainID, nil
}

// explorerURL returns the explorer API configured for the network, if any
func (r *NetworkResolver) explorerURL(name string) string {
	if ec, ok := r.foundryConfig.Etherscan[name]; ok {
		return ec.URL
	}
	return ""
}

// EtherscanKey returns the key configured in foundry.toml for the network
func (r *NetworkResolver) EtherscanKey(name string) string {
	return r.foundryConfig.Etherscan[name].Key
}

func (r *NetworkResolver) cachePath() string {
	return filepath.Join(r.dataDir, "chain-ids.json")
}

func (r *NetworkResolver) loadCache() {
	if r.dataDir == "" {
		return
	}
	data, err := os.ReadFile(r.cachePath())
	if err != nil {
		return
	}
	cache := make(map[string]uint64)
	if err := json.Unmarshal(data, &cache); err != nil {
		// invalid cache, start fresh
		return
	}
	r.cache = cache
}

func (r *NetworkResolver) saveCache() {
	if r.dataDir == "" {
		return
	}
	r.mu.RLock()
	data, err := json.MarshalIndent(r.cache, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return
	}
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(r.cachePath(), data, 0o644)
}
