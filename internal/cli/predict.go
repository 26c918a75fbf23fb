package cli

import (
	"errors"

	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/spf13/cobra"
)

// NewPredictCmd creates the predict command
func NewPredictCmd() *cobra.Command {
	var (
		ctorArgs []string
		instance string
	)

	cmd := &cobra.Command{
		Use:   "predict <artifact>",
		Short: "Show the address a contract gets under each strategy",
		Long: `Show where a contract would be deployed by every strategy. The universal
and singleton addresses are computed offline. The test strategy and the
deployed status need --network or --rpc-url.`,
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

			var chain usecase.ChainClient
			if app.Connector.Configured() {
				client, err := app.Connector.Connect(cmd.Context())
				if err != nil {
					return err
				}
				chain = client
			}

			predictions := make([]render.Prediction, 0, len(models.AllStrategies))
			for _, kind := range models.AllStrategies {
				p := render.Prediction{Strategy: kind}
				if chain == nil && kind == models.StrategyTest {
					p.Note = "requires a network"
					predictions = append(predictions, p)
					continue
				}

				d, err := app.Deployer(kind, chain)
				if err != nil {
					return err
				}
				address, err := d.AddressOf(cmd.Context(), contract, inst)
				switch {
				case errors.Is(err, domain.ErrNotFound):
					p.Note = "not deployed"
				case errors.Is(err, domain.ErrUnsupportedOperation):
					p.Note = "instances not supported"
				case err != nil:
					return err
				default:
					p.Address = &address
					if chain != nil {
						if p.Deployed, err = chain.HasCode(cmd.Context(), address); err != nil {
							return err
						}
					} else {
						p.Note = "-"
					}
				}
				predictions = append(predictions, p)
			}

			return render.NewPredictRenderer(cmd.OutOrStdout()).RenderPredictions(contract.Identifier(), predictions)
		},
	}

	cmd.Flags().StringArrayVar(&ctorArgs, "args", nil, "Constructor argument, repeat in order")
	cmd.Flags().StringVar(&instance, "instance", "", "Instance number")

	return cmd
}
