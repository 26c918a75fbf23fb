package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env and .env.local from the project root. Variables
// already set in the environment win.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			slog.Warn("failed to load env file", "path", envFile, "error", err)
		}
	}
}

// loadFoundryConfig parses foundry.toml, expanding ${VAR} references in
// endpoints and explorer settings. A project without foundry.toml gets an
// empty config.
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	cfg := &config.FoundryConfig{
		Profile:      make(map[string]config.ProfileConfig),
		RpcEndpoints: make(map[string]string),
		Etherscan:    make(map[string]config.EtherscanConfig),
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(foundryPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	for name, url := range cfg.RpcEndpoints {
		cfg.RpcEndpoints[name] = os.ExpandEnv(url)
	}
	for name, ec := range cfg.Etherscan {
		ec.Key = os.ExpandEnv(ec.Key)
		ec.URL = os.ExpandEnv(ec.URL)
		cfg.Etherscan[name] = ec
	}
	return cfg, nil
}
