// workerscope shows the busiest Concourse workers of a BOSH deployment and
// the builds running on them.
//
// Usage:
//
//	workerscope report <bosh_deployment_name> <fly_target>
//	workerscope report concourse ci -o json --top 5
//	workerscope serve --config config/config.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "workerscope",
		Short: "Correlate busy Concourse workers with the builds they run",
		Long: `workerscope ranks the worker VMs of a BOSH deployment by CPU load and
attributes the running Concourse builds to each of them.

It shells out to bosh and fly, so both must be installed and logged in.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $CONFIG_PATH or config/config.yaml)")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
