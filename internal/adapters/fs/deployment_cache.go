package fs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DeploymentCache remembers where EOA deployments landed, keyed by the
// lower-case hex of their init code. It is stored as a flat JSON object.
type DeploymentCache struct {
	path string

	mu      sync.Mutex
	entries map[string]common.Address
}

// NewDeploymentCache creates an empty cache backed by path.
func NewDeploymentCache(path string) *DeploymentCache {
	return &DeploymentCache{
		path:    path,
		entries: make(map[string]common.Address),
	}
}

// ProvideDeploymentCache creates the cache at the configured path and loads it.
// Without an explicit path every chain gets its own file, since an address
// recorded on one chain says nothing about another. A corrupt file is logged
// and replaced on the next save.
func ProvideDeploymentCache(cfg *config.RuntimeConfig, log *slog.Logger) *DeploymentCache {
	path := cfg.Deploy.CachePath
	if path == "" {
		path = DefaultCachePath(cfg.DataDir, cfg.Network)
	}
	cache := NewDeploymentCache(path)
	if err := cache.Load(); err != nil {
		log.Warn("ignoring unreadable deployment cache", "path", path, "error", err)
	}
	return cache
}

// DefaultCachePath returns deployments-<chainId>.json under dataDir, or
// deployments.json when no network is configured.
func DefaultCachePath(dataDir string, network *config.Network) string {
	if network == nil || network.ChainID == 0 {
		return filepath.Join(dataDir, "deployments.json")
	}
	return filepath.Join(dataDir, fmt.Sprintf("deployments-%d.json", network.ChainID))
}

// Path returns the backing file.
func (c *DeploymentCache) Path() string {
	return c.path
}

// Load reads the cache from disk. A missing file leaves the cache empty.
func (c *DeploymentCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read deployment cache: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse deployment cache: %w", err)
	}

	entries := make(map[string]common.Address, len(raw))
	for initCode, address := range raw {
		if !common.IsHexAddress(address) {
			return fmt.Errorf("failed to parse deployment cache: invalid address %q", address)
		}
		entries[strings.ToLower(initCode)] = common.HexToAddress(address)
	}
	c.entries = entries
	return nil
}

// Save writes the cache to disk, creating the directory if needed.
func (c *DeploymentCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *DeploymentCache) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create deployment cache directory: %w", err)
	}

	raw := make(map[string]string, len(c.entries))
	for initCode, address := range c.entries {
		raw[initCode] = address.Hex()
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployment cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write deployment cache: %w", err)
	}
	return nil
}

// Lookup returns the address recorded for initCode.
func (c *DeploymentCache) Lookup(initCode []byte) (common.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	address, ok := c.entries[cacheKey(initCode)]
	return address, ok
}

// Record stores the address for initCode and saves immediately.
func (c *DeploymentCache) Record(initCode []byte, address common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(initCode)] = address
	return c.saveLocked()
}

// Entries returns a copy of every cached deployment.
func (c *DeploymentCache) Entries() map[string]common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.entries)
}

func cacheKey(initCode []byte) string {
	return hexutil.Encode(initCode)
}

// Ensure DeploymentCache implements usecase.DeploymentCache
var _ usecase.DeploymentCache = (*DeploymentCache)(nil)
