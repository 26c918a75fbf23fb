package cli

import (
	"context"
	"fmt"

	"github.com/0xsequence/solidity-deployer/internal/app"
	"github.com/0xsequence/solidity-deployer/internal/config"
	"github.com/spf13/cobra"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deployer",
		Short: "Deterministic smart contract deployment and verification",
		Long: `deployer deploys contracts to the same address on every chain through
the singleton or universal CREATE2 factories, bootstrapping the factories
when a chain does not have them yet, and verifies their sources on
Etherscan, Blockscout and Tenderly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}
			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints]")
	flags.String("rpc-url", "", "RPC endpoint, overrides --network")
	flags.Uint64("chain-id", 0, "Expected chain ID, read from the node when unset")
	flags.String("profile", "", "Foundry profile (defaults to 'default')")
	flags.StringP("strategy", "s", "", "Deployment strategy: universal, singleton, test or eoa")
	flags.String("gas-price-policy", "", "What to do when bootstrap gas price is above the ceiling: warn or block")
	flags.String("max-gas-price", "", "Bootstrap gas price ceiling, e.g. 100gwei")
	flags.String("funding", "", "Override the amount sent to bootstrap accounts, e.g. 0.05ether")
	flags.String("forge-seed", "", "Seed for the test strategy's forged factory, repeatable across runs")
	flags.String("cache-file", "", "EOA deployment cache (defaults to .deployer/deployments-<chainId>.json)")

	rootCmd.AddGroup(&cobra.Group{ID: "main", Title: "Main Commands"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands"})

	for _, cmd := range []*cobra.Command{NewDeployCmd(), NewPredictCmd(), NewVerifyCmd(), NewGuardsCmd()} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{NewBootstrapCmd(), NewRecoverFundsCmd(), NewCacheCmd()} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}
	return a, nil
}
