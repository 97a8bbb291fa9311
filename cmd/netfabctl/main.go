// netfabctl applies and inspects declarative overlay network
// topologies described by a YAML document (see pkg/topoconfig).
//
// Usage:
//
//	netfabctl validate -f topology.yaml
//	netfabctl apply -f topology.yaml
//	netfabctl show -f topology.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/netfabric/pkg/util"
)

var topoFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "netfabctl",
	Short:         "Declarative overlay network topology engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&topoFile, "file", "f", "topology.yaml", "topology document to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return util.SetLogLevel(logLevel)
	}
	rootCmd.AddCommand(validateCmd, applyCmd, showCmd)
}

var logLevel string
