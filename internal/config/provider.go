package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/ethereum/go-ethereum/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		if projectRoot, err = FindProjectRoot(); err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}
	loadEnvFiles(projectRoot)

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".deployer"),
		PrivateKey:     v.GetString("private_key"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		Profile:        v.GetString("profile"),
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	resolver := NewNetworkResolver(cfg.DataDir, foundryConfig)
	network := v.GetString("rpc_url")
	if network == "" {
		network = v.GetString("network")
	}
	if network != "" {
		if cfg.Network, err = resolver.Resolve(network, v.GetUint64("chain_id")); err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", network, err)
		}
	}

	if cfg.Deploy, err = deployConfig(v); err != nil {
		return nil, err
	}
	cfg.Verification = verificationConfig(v, cfg.Network, resolver)

	return cfg, nil
}

func deployConfig(v *viper.Viper) (config.DeployConfig, error) {
	maxGasPrice, err := ParseWei(v.GetString("max_gas_price"))
	if err != nil {
		return config.DeployConfig{}, fmt.Errorf("invalid max gas price: %w", err)
	}
	funding, err := ParseWei(v.GetString("funding"))
	if err != nil {
		return config.DeployConfig{}, fmt.Errorf("invalid funding override: %w", err)
	}
	return config.DeployConfig{
		Strategy:        v.GetString("strategy"),
		GasPricePolicy:  v.GetString("gas_price_policy"),
		MaxGasPrice:     maxGasPrice,
		FundingOverride: funding,
		CachePath:       v.GetString("cache_file"),
		ForgeSeed:       v.GetString("forge_seed"),
	}, nil
}

func verificationConfig(v *viper.Viper, network *config.Network, resolver *NetworkResolver) config.VerificationConfig {
	vc := config.VerificationConfig{
		EtherscanAPIKey:   v.GetString("etherscan_api_key"),
		EtherscanURL:      v.GetString("etherscan_url"),
		BlockscoutURL:     v.GetString("blockscout_url"),
		TenderlyAccount:   v.GetString("tenderly_account"),
		TenderlyProject:   v.GetString("tenderly_project"),
		TenderlyAccessKey: v.GetString("tenderly_access_key"),
	}
	if network != nil {
		if vc.EtherscanAPIKey == "" {
			vc.EtherscanAPIKey = resolver.EtherscanKey(network.Name)
		}
		if vc.EtherscanURL == "" {
			vc.EtherscanURL = network.ExplorerURL
		}
	}
	return vc
}

// ParseWei parses an amount in wei. A "gwei" or "ether" suffix scales the
// (possibly fractional) number accordingly. Empty yields nil.
func ParseWei(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}

	unit := big.NewInt(1)
	switch {
	case strings.HasSuffix(s, "gwei"):
		unit = big.NewInt(params.GWei)
		s = strings.TrimSuffix(s, "gwei")
	case strings.HasSuffix(s, "ether"):
		unit = big.NewInt(params.Ether)
		s = strings.TrimSuffix(s, "ether")
	case strings.HasSuffix(s, "wei"):
		s = strings.TrimSuffix(s, "wei")
	}

	amount, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid amount %q", domain.ErrInvalidArgument, s)
	}
	amount.Mul(amount, new(big.Rat).SetInt(unit))
	if !amount.IsInt() {
		return nil, fmt.Errorf("%w: amount %q is not a whole number of wei", domain.ErrInvalidArgument, s)
	}
	return new(big.Int).Set(amount.Num()), nil
}

// FindProjectRoot walks up from the current directory to the first directory
// holding deployer.toml or foundry.toml, falling back to the current directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; {
		for _, marker := range []string{"deployer.toml", "foundry.toml"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// optional deployer.toml in the project root
	v.SetConfigName("deployer")
	v.SetConfigType("toml")
	v.AddConfigPath(projectRoot)

	v.SetEnvPrefix("DEPLOYER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("profile", "default")
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("strategy", "universal")
	v.SetDefault("gas_price_policy", "warn")

	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})

	return v
}
