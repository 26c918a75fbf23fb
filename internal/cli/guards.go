package cli

import (
	"fmt"
	"os"

	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// guardManifest lists the guard wallets to deploy for a main module
type guardManifest struct {
	Module string   `yaml:"module"`
	Guards []string `yaml:"guards"`
}

func loadGuardManifest(path string) (common.Address, []common.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to read guard manifest: %w", err)
	}
	var m guardManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: failed to parse guard manifest: %v", domain.ErrInvalidArgument, err)
	}

	if !common.IsHexAddress(m.Module) {
		return common.Address{}, nil, fmt.Errorf("%w: invalid module address %q", domain.ErrInvalidArgument, m.Module)
	}
	if len(m.Guards) == 0 {
		return common.Address{}, nil, fmt.Errorf("%w: guard manifest lists no image hashes", domain.ErrInvalidArgument)
	}
	hashes := make([]common.Hash, len(m.Guards))
	for i, g := range m.Guards {
		b := common.FromHex(g)
		if len(b) != common.HashLength {
			return common.Address{}, nil, fmt.Errorf("%w: invalid image hash %q", domain.ErrInvalidArgument, g)
		}
		hashes[i] = common.BytesToHash(b)
	}
	return common.HexToAddress(m.Module), hashes, nil
}

// NewGuardsCmd creates the guards command
func NewGuardsCmd() *cobra.Command {
	var factory string

	cmd := &cobra.Command{
		Use:   "guards <manifest.yaml>",
		Short: "Deploy guard wallets for a list of image hashes",
		Long: `Deploy the wallet factory with the configured strategy, then a guard
wallet for every image hash in the manifest that does not have one yet.

The manifest is YAML:

  module: 0x...        # main module the guards point to
  guards:
    - 0x...            # image hash
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			module, imageHashes, err := loadGuardManifest(args[0])
			if err != nil {
				return err
			}
			walletFactory, err := loadContract(app, factory, nil)
			if err != nil {
				return err
			}

			kind, err := app.Strategy()
			if err != nil {
				return err
			}
			if err := confirmNetwork(app, fmt.Sprintf("Deploy %d guards", len(imageHashes))); err != nil {
				return err
			}
			flow, _, err := app.Flow(cmd.Context(), kind)
			if err != nil {
				return err
			}

			guards, err := flow.DeployGuards(cmd.Context(), walletFactory, module, imageHashes)
			if err != nil {
				return err
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderGuards(imageHashes, guards)
		},
	}

	cmd.Flags().StringVar(&factory, "factory", "WalletFactory", "Wallet factory artifact")
	return cmd
}
