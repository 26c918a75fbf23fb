package cli

import (
	"fmt"

	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewBootstrapCmd creates the bootstrap command
func NewBootstrapCmd() *cobra.Command {
	var tx txFlags

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Deploy the strategy's factory on the current network",
		Long: `Deploy the CREATE2 factory the configured strategy relies on, funding the
pre-signed deployment account from the signer when needed. Nothing is sent
when the factory already has code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			kind, err := app.Strategy()
			if err != nil {
				return err
			}
			params, err := tx.params()
			if err != nil {
				return err
			}
			if err := confirmNetwork(app, fmt.Sprintf("Bootstrap the %s factory", kind)); err != nil {
				return err
			}

			flow, _, err := app.Flow(cmd.Context(), kind)
			if err != nil {
				return err
			}
			factory, err := flow.Bootstrap(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderAddress("Factory ready at", factory)
		},
	}

	addTxFlags(cmd, &tx)
	return cmd
}
