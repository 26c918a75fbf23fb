package cli

import (
	"github.com/0xsequence/solidity-deployer/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the EOA deployment cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contracts deployed with the eoa strategy",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return render.RenderCache(cmd.OutOrStdout(), app.Cache.Path(), app.Cache.Entries())
		},
	})

	return cmd
}
