package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/topoconfig"
	"github.com/newtron-network/netfabric/pkg/util"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a topology document and report problems without touching the kernel",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := lsdn.NewContext("netfabctl")
		problems := 0
		ctx.SetProblemCallback(func(p lsdn.Problem, user any) {
			problems++
			util.Logger.Warn(lsdn.Format(p))
		}, nil)

		if err := topoconfig.Load(ctx, topoFile); err != nil {
			return fmt.Errorf("load %s: %w", topoFile, err)
		}
		if err := ctx.Validate(); err != nil {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		util.Logger.Info("topology is valid")
		return nil
	},
}
