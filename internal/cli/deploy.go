package cli

import (
	"fmt"

	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		ctorArgs  []string
		instance  string
		name      string
		tx        txFlags
		verify    bool
		wait      bool
		recoverTo string
		license   string
	)

	cmd := &cobra.Command{
		Use:   "deploy <artifact>",
		Short: "Deploy a contract with the configured strategy",
		Long: `Deploy a compiled Foundry contract. With the universal and singleton
strategies the address only depends on the init code and instance, so the
contract lands at the same address on every chain. Contracts that already
have code at their address are skipped.`,
		Example: `  # Deploy Counter through the universal deployer
  deployer deploy Counter --network sepolia

  # Deploy a second instance and verify it
  deployer deploy src/Counter.sol:Counter --instance 1 --verify

  # Deploy from a fresh key and send the leftover balance back
  deployer deploy Counter --strategy eoa --recover-to 0x...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			contract, err := loadContract(app, args[0], ctorArgs)
			if err != nil {
				return err
			}
			inst, err := parseInstance(instance)
			if err != nil {
				return err
			}
			params, err := tx.params()
			if err != nil {
				return err
			}

			var to *common.Address
			if recoverTo != "" {
				if !common.IsHexAddress(recoverTo) {
					return fmt.Errorf("invalid --recover-to address %q", recoverTo)
				}
				addr := common.HexToAddress(recoverTo)
				to = &addr
			}

			kind, err := app.Strategy()
			if err != nil {
				return err
			}
			if err := confirmNetwork(app, fmt.Sprintf("Deploy %s with the %s strategy", contract.Name, kind)); err != nil {
				return err
			}

			flow, _, err := app.Flow(cmd.Context(), kind)
			if err != nil {
				return err
			}

			req := usecase.DeployAndVerifyRequest{
				Name:           name,
				Contract:       contract,
				Instance:       inst,
				Params:         params,
				Verify:         verify,
				WaitForSuccess: wait,
				RecoverTo:      to,
			}
			if verify && license != "" {
				v, err := app.Artifacts.VerificationRequest(contract)
				if err != nil {
					return err
				}
				v.LicenseType = license
				req.Verification = v
			}

			result, runErr := flow.DeployAndVerify(cmd.Context(), req)
			if err := render.NewDeployRenderer(cmd.OutOrStdout()).RenderDeployResult(result); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringArrayVar(&ctorArgs, "args", nil, "Constructor argument, repeat in order")
	cmd.Flags().StringVar(&instance, "instance", "", "Instance number, changes the deterministic address")
	cmd.Flags().StringVar(&name, "name", "", "Name used in logs (defaults to the contract name)")
	addTxFlags(cmd, &tx)
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the source after deploying")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for verification to finish")
	cmd.Flags().StringVar(&recoverTo, "recover-to", "", "Send the signer's remaining balance here after deploying")
	cmd.Flags().StringVar(&license, "license", "", "SPDX license override for verification")

	return cmd
}

func addTxFlags(cmd *cobra.Command, tx *txFlags) {
	cmd.Flags().Uint64Var(&tx.gasLimit, "gas-limit", 0, "Gas limit (estimated when unset)")
	cmd.Flags().StringVar(&tx.gasPrice, "gas-price", "", "Gas price, e.g. 30gwei (node suggestion when unset)")
	cmd.Flags().StringVar(&tx.value, "value", "", "Value sent with the deployment, e.g. 0.1ether")
}
