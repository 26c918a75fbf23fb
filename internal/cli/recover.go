package cli

import (
	"fmt"

	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewRecoverFundsCmd creates the recover-funds command
func NewRecoverFundsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "recover-funds <address>",
		Short: "Send the signer's balance, minus the transfer fee, to an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}
			to := common.HexToAddress(args[0])

			kind, err := app.Strategy()
			if err != nil {
				return err
			}
			flow, chain, err := app.Flow(cmd.Context(), kind)
			if err != nil {
				return err
			}

			if !yes {
				ok, err := app.Selector.Confirm(fmt.Sprintf("Send the balance of %s to %s", chain.SignerAddress().Hex(), to.Hex()))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("cancelled")
				}
			}

			dust, err := flow.RecoverFunds(cmd.Context(), to)
			if err != nil {
				return err
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderRecovered(to, dust)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
