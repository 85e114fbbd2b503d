package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/history"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/lightning"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/networks"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/nodes"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/serve"
	"github.com/nully0x/bitcoin-regtest-tui/cmd/version"
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &common.Options{}
	rootCmd := &cobra.Command{
		Use:           "regtest-tui",
		Short:         "Run Bitcoin and Lightning regtest networks on Docker",
		Long:          `regtest-tui creates, starts and drives local Bitcoin Core and LND regtest networks in Docker containers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to the config file (default: <user config dir>/regtest-tui/config.yaml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.JSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(networks.NewNetworkCmd(opts))
	rootCmd.AddCommand(nodes.NewNodeCmd(opts))
	rootCmd.AddCommand(lightning.NewLightningCmd(opts))
	rootCmd.AddCommand(history.NewHistoryCmd(opts))
	rootCmd.AddCommand(serve.Command(opts))
	rootCmd.AddCommand(version.NewVersionCmd(opts))
	return rootCmd
}
