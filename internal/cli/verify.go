package cli

import (
	"fmt"

	"github.com/0xsequence/solidity-deployer/internal/adapters/verification"
	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		ctorArgs []string
		wait     bool
		license  string
		bytecode string
	)

	cmd := &cobra.Command{
		Use:   "verify <address> <artifact>",
		Short: "Verify a deployed contract on the configured explorers",
		Long: `Submit the source of a deployed contract to every configured explorer:
Etherscan, Blockscout when DEPLOYER_BLOCKSCOUT_URL is set, and Tenderly
when its account, project and access key are set.`,
		Example: `  deployer verify 0x1234... Counter --network sepolia --wait
  deployer verify 0x1234... src/Token.sol:Token --args 0xabc... --license MIT`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}
			address := common.HexToAddress(args[0])

			contract, err := loadContract(app, args[1], ctorArgs)
			if err != nil {
				return err
			}
			if bytecode != "" {
				expected, err := hexutil.Decode(bytecode)
				if err != nil {
					return fmt.Errorf("invalid --bytecode: %w", err)
				}
				if err := verification.ValidateBytecode(contract, expected); err != nil {
					return err
				}
			}

			req, err := app.Artifacts.VerificationRequest(contract)
			if err != nil {
				return err
			}
			req.WaitForSuccess = wait
			if license != "" {
				req.LicenseType = license
			}

			report, verifyErr := app.Verifier.VerifyContract(cmd.Context(), address, req)
			if err := render.NewVerifyRenderer(cmd.OutOrStdout()).RenderReport(report); err != nil {
				return err
			}
			return verifyErr
		},
	}

	cmd.Flags().StringArrayVar(&ctorArgs, "args", nil, "Constructor argument, repeat in order")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for every explorer to finish")
	cmd.Flags().StringVar(&license, "license", "", "SPDX license override")
	cmd.Flags().StringVar(&bytecode, "bytecode", "", "Expected creation code, checked against the artifact before submitting")

	return cmd
}
