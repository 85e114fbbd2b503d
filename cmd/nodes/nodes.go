// Package nodes provides the 'node' command group.
package nodes

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

// NewNodeCmd returns the node command group
func NewNodeCmd(opts *common.Options) *cobra.Command {
	nodeCmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Manage the nodes of a network",
	}

	nodeCmd.AddCommand(newAddCmd(opts))
	nodeCmd.AddCommand(newDeleteCmd(opts))
	nodeCmd.AddCommand(newInfoCmd(opts))
	nodeCmd.AddCommand(newLogsCmd(opts))

	return nodeCmd
}

func newAddCmd(opts *common.Options) *cobra.Command {
	var implementation string
	cmd := &cobra.Command{
		Use:   "add <network>",
		Short: "Add a Lightning node; it is started when the network is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			impl, err := types.ParseLightningImpl(implementation)
			if err != nil {
				return err
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				node, err := app.Networks.AddLightningNode(ctx, args[0], impl)
				if err != nil {
					return err
				}
				return common.Print(os.Stdout, opts.JSON, node, func(w io.Writer) {
					fmt.Fprintf(w, "Added %s (%s) to %s\trunning=%t\n", node.Name, node.Kind, args[0], node.Running())
				})
			})
		},
	}
	cmd.Flags().StringVar(&implementation, "implementation", "lnd", "Lightning implementation")
	return cmd
}

func newDeleteCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <network> <node>",
		Aliases: []string{"rm"},
		Short:   "Stop and remove a Lightning node",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				if err := app.Networks.DeleteNode(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Deleted node %s from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newInfoCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <network> <node>",
		Short: "Show a node's chain, wallet and channel state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				info, err := app.Networks.NodeInfo(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return PrintNodeInfo(os.Stdout, opts.JSON, info)
			})
		},
	}
}

// PrintNodeInfo writes a node snapshot
func PrintNodeInfo(out io.Writer, asJSON bool, info *nodetypes.NodeInfo) error {
	return common.Print(out, asJSON, info, func(w io.Writer) {
		fmt.Fprintf(w, "Node:\t%s (%s)\n", info.Name, info.Kind)
		fmt.Fprintf(w, "Running:\t%t\n", info.Running)
		if b := info.Bitcoind; b != nil {
			fmt.Fprintf(w, "Chain:\t%s\n", b.Chain)
			fmt.Fprintf(w, "Blocks:\t%d\n", b.Blocks)
			fmt.Fprintf(w, "Best block:\t%s\n", b.BestBlockHash)
			fmt.Fprintf(w, "Balance:\t%s\n", b.Balance)
			fmt.Fprintf(w, "Connections:\t%d\n", b.Connections)
			printEndpoints(w, b.Endpoints)
		}
		if l := info.Lightning; l != nil {
			fmt.Fprintf(w, "Pubkey:\t%s\n", l.Pubkey)
			fmt.Fprintf(w, "Alias:\t%s\n", l.Alias)
			fmt.Fprintf(w, "Block height:\t%d\n", l.BlockHeight)
			fmt.Fprintf(w, "Synced to chain:\t%t\n", l.SyncedToChain)
			fmt.Fprintf(w, "Peers:\t%d\n", l.NumPeers)
			fmt.Fprintf(w, "Wallet balance:\t%s\n", l.WalletBalance)
			fmt.Fprintf(w, "Channel balance:\t%s\n", l.ChannelBalance)
			fmt.Fprintf(w, "Channels:\t%d active, %d pending\n", l.NumActiveChannels, l.NumPendingChannels)
			printEndpoints(w, l.Endpoints)
		}
	})
}

func printEndpoints(w io.Writer, endpoints map[string]string) {
	for _, key := range []string{"rpc", "rest", "grpc", "p2p", "zmqBlock", "zmqTx"} {
		if addr, ok := endpoints[key]; ok {
			fmt.Fprintf(w, "Endpoint %s:\t%s\n", key, addr)
		}
	}
}

func newLogsCmd(opts *common.Options) *cobra.Command {
	var tail int
	cmd := &cobra.Command{
		Use:   "logs <network> <node>",
		Short: "Print a node's container output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				logs, err := app.Networks.NodeLogs(ctx, args[0], args[1], tail)
				if err != nil {
					return err
				}
				_, err = io.WriteString(os.Stdout, logs)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 100, "Number of lines from the end (0 for all)")
	return cmd
}
