// Package networks provides the 'network' command group.
package networks

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/service"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
)

// NewNetworkCmd returns the network command group
func NewNetworkCmd(opts *common.Options) *cobra.Command {
	networkCmd := &cobra.Command{
		Use:     "network",
		Aliases: []string{"networks", "net"},
		Short:   "Manage regtest networks",
		Long:    `Create, start, stop and delete regtest networks made of one bitcoind node and any number of LND nodes.`,
	}

	networkCmd.AddCommand(newListCmd(opts))
	networkCmd.AddCommand(newCreateCmd(opts))
	networkCmd.AddCommand(newShowCmd(opts))
	networkCmd.AddCommand(newStartCmd(opts))
	networkCmd.AddCommand(newStopCmd(opts))
	networkCmd.AddCommand(newDeleteCmd(opts))
	networkCmd.AddCommand(newMineCmd(opts))

	return networkCmd
}

func printNetworks(out io.Writer, asJSON bool, networks []*types.Network) error {
	return common.Print(out, asJSON, networks, func(w io.Writer) {
		fmt.Fprintln(w, "NAME\tSTATUS\tLIGHTNING NODES\tCREATED")
		for _, n := range networks {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", n.Name, n.Status, len(n.LightningNodes()), n.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
	})
}

// PrintNetwork writes a network with its nodes and host ports
func PrintNetwork(out io.Writer, asJSON bool, n *types.Network) error {
	return common.Print(out, asJSON, n, func(w io.Writer) {
		fmt.Fprintf(w, "Network:\t%s (%s)\n", n.Name, n.Status)
		fmt.Fprintf(w, "Bitcoin image:\t%s\n", n.BitcoinImage)
		fmt.Fprintf(w, "LND image:\t%s\n", n.LndImage)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "NODE\tKIND\tRUNNING\tPORTS")
		for _, node := range n.Nodes {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", node.Name, node.Kind, node.Running(), formatPorts(n.Ports[node.ID]))
		}
	})
}

func formatPorts(p types.PortConfig) string {
	switch {
	case p.Bitcoind != nil:
		return fmt.Sprintf("rpc=%d p2p=%d zmqblock=%d zmqtx=%d", p.Bitcoind.RPC, p.Bitcoind.P2P, p.Bitcoind.ZMQBlock, p.Bitcoind.ZMQTx)
	case p.LND != nil:
		return fmt.Sprintf("rest=%d grpc=%d p2p=%d", p.LND.REST, p.LND.GRPC, p.LND.P2P)
	}
	return "-"
}

func newListCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List networks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				networks, err := app.Networks.ListNetworks(ctx)
				if err != nil {
					return err
				}
				return printNetworks(os.Stdout, opts.JSON, networks)
			})
		},
	}
}

// CreateConfig holds the parameters of 'network create'
type CreateConfig struct {
	Name           string
	LightningNodes int
	AliasPrefix    string
	LndImage       string
	BitcoinImage   string
	Start          bool
}

// CreateRunner validates and runs 'network create'
type CreateRunner struct {
	Config CreateConfig
}

// Validate checks the flags before any service is opened
func (r *CreateRunner) Validate() error {
	if r.Config.LightningNodes < 0 || r.Config.LightningNodes > service.MaxLightningNodes {
		return fmt.Errorf("--lightning-nodes must be between 0 and %d", service.MaxLightningNodes)
	}
	if r.Config.Name == "" {
		r.Config.Name = common.GenerateNetworkName()
	}
	return types.ValidateName(r.Config.Name)
}

// Run creates the network and optionally starts it
func (r *CreateRunner) Run(ctx context.Context, app *common.App, out io.Writer, asJSON bool) error {
	n, err := app.Networks.CreateNetwork(ctx, service.CreateNetworkParams{
		Name:           r.Config.Name,
		LightningNodes: r.Config.LightningNodes,
		AliasPrefix:    r.Config.AliasPrefix,
		LndImage:       r.Config.LndImage,
		BitcoinImage:   r.Config.BitcoinImage,
	})
	if err != nil {
		return err
	}
	if r.Config.Start {
		n, err = app.Networks.StartNetwork(ctx, n.Name)
		if err != nil {
			return err
		}
	}
	return PrintNetwork(out, asJSON, n)
}

func newCreateCmd(opts *common.Options) *cobra.Command {
	runner := &CreateRunner{
		Config: CreateConfig{LightningNodes: 2},
	}

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a network",
		Long: fmt.Sprintf(`Create a network with one bitcoind node and --lightning-nodes LND nodes.
A random name is used when none is given.

Known bitcoind images: %s
Known LND images: %s`, strings.Join(bitcoind.Versions, ", "), strings.Join(lnd.Versions, ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				runner.Config.Name = args[0]
			}
			if err := runner.Validate(); err != nil {
				return err
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				return runner.Run(ctx, app, os.Stdout, opts.JSON)
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&runner.Config.LightningNodes, "lightning-nodes", "n", 2, "Number of LND nodes")
	flags.StringVar(&runner.Config.AliasPrefix, "alias-prefix", "", "Prefix of Lightning node aliases (default: network name)")
	flags.StringVar(&runner.Config.LndImage, "lnd-image", lnd.DefaultImage, "LND container image")
	flags.StringVar(&runner.Config.BitcoinImage, "bitcoin-image", bitcoind.DefaultImage, "bitcoind container image")
	flags.BoolVar(&runner.Config.Start, "start", false, "Start the network after creating it")

	return cmd
}

func newShowCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a network and its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				n, err := app.Networks.GetNetwork(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintNetwork(os.Stdout, opts.JSON, n)
			})
		},
	}
}

func newStartCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "start <name>",
		Short: "Start every node of a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				n, err := app.Networks.StartNetwork(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintNetwork(os.Stdout, opts.JSON, n)
			})
		},
	}
}

func newStopCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop and remove the containers of a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				n, err := app.Networks.StopNetwork(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintNetwork(os.Stdout, opts.JSON, n)
			})
		},
	}
}

func newDeleteCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Stop a network and delete its record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				if err := app.Networks.DeleteNetwork(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted network %s\n", args[0])
				return nil
			})
		},
	}
}

func newMineCmd(opts *common.Options) *cobra.Command {
	var blocks int
	cmd := &cobra.Command{
		Use:   "mine <name>",
		Short: "Mine blocks on the network's bitcoin node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if blocks <= 0 {
				return fmt.Errorf("--blocks must be greater than 0")
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				hashes, err := app.Networks.MineBlocks(ctx, args[0], blocks)
				if err != nil {
					return err
				}
				return common.Print(os.Stdout, opts.JSON, hashes, func(w io.Writer) {
					for _, h := range hashes {
						fmt.Fprintln(w, h)
					}
				})
			})
		},
	}
	cmd.Flags().IntVarP(&blocks, "blocks", "b", 1, "Number of blocks to mine")
	return cmd
}
