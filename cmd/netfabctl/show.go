package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/netfabric/pkg/cli"
	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/topoconfig"
	"github.com/newtron-network/netfabric/pkg/util"
)

var showNetworks string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the topology described by a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := lsdn.NewContext("netfabctl")
		if err := topoconfig.Load(ctx, topoFile); err != nil {
			return fmt.Errorf("load %s: %w", topoFile, err)
		}

		var filter map[string]bool
		if showNetworks != "" {
			filter = make(map[string]bool)
			for _, name := range util.SplitCommaSeparated(showNetworks) {
				filter[name] = true
			}
		}

		for _, n := range ctx.Networks() {
			if filter != nil && !filter[n.Name()] {
				continue
			}
			fmt.Println(cli.DotPad(n.Name(), 30) + n.Settings().NetType().Name())

			table := cli.NewTable("PHYS", "VIRTS", "ATTACHED").WithPrefix("  ")
			for _, pa := range n.Attachments() {
				attached := cli.Dim("false")
				if pa.Explicit() {
					attached = cli.Green("true")
				}
				phys := pa.Phys().Name()
				if pa.Phys().IsLocal() {
					phys = cli.Bold(phys)
				}
				table.Row(phys, strconv.Itoa(len(pa.Virts())), attached)
			}
			table.Flush()
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showNetworks, "networks", "", "comma-separated list of network names to show (default: all)")
}
