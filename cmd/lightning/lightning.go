// Package lightning provides the 'ln' command group.
package lightning

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

// NewLightningCmd returns the ln command group
func NewLightningCmd(opts *common.Options) *cobra.Command {
	lnCmd := &cobra.Command{
		Use:     "ln",
		Aliases: []string{"lightning"},
		Short:   "Fund wallets, manage channels and send payments",
	}

	lnCmd.AddCommand(newFundCmd(opts))
	lnCmd.AddCommand(newOpenCmd(opts))
	lnCmd.AddCommand(newCloseCmd(opts))
	lnCmd.AddCommand(newChannelsCmd(opts))
	lnCmd.AddCommand(newPayCmd(opts))
	lnCmd.AddCommand(newSyncGraphCmd(opts))
	lnCmd.AddCommand(newSyncChainCmd(opts))

	return lnCmd
}

func printResult(asJSON bool, key, value string) error {
	return common.Print(os.Stdout, asJSON, map[string]string{key: value}, func(w io.Writer) {
		fmt.Fprintf(w, "%s:\t%s\n", key, value)
	})
}

func newFundCmd(opts *common.Options) *cobra.Command {
	var (
		amount   float64
		autoMine bool
	)
	cmd := &cobra.Command{
		Use:   "fund <network> <node>",
		Short: "Send coins from the bitcoin node to a Lightning wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := btcutil.NewAmount(amount)
			if err != nil || amt <= 0 {
				return fmt.Errorf("--amount must be a positive BTC value")
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				txid, err := app.Networks.FundWallet(ctx, args[0], args[1], amt, autoMine)
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "txid", txid)
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 1, "Amount in BTC")
	cmd.Flags().BoolVar(&autoMine, "mine", true, "Mine blocks to confirm the transaction and wait for the node to sync")
	return cmd
}

// OpenConfig holds the parameters of 'ln open'
type OpenConfig struct {
	Capacity int64
	Push     int64
}

// Validate mirrors the checks the engine applies
func (c OpenConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("--capacity must be greater than 0")
	}
	if c.Push < 0 || c.Push >= c.Capacity {
		return fmt.Errorf("--push must be at least 0 and below --capacity")
	}
	return nil
}

func newOpenCmd(opts *common.Options) *cobra.Command {
	cfg := OpenConfig{Capacity: 250000}
	cmd := &cobra.Command{
		Use:   "open <network> <from> <to>",
		Short: "Open a channel between two Lightning nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			var push *int64
			if cmd.Flags().Changed("push") {
				push = &cfg.Push
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				txid, err := app.Networks.OpenChannel(ctx, args[0], args[1], args[2], cfg.Capacity, push)
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "funding_txid", txid)
			})
		},
	}
	cmd.Flags().Int64Var(&cfg.Capacity, "capacity", 250000, "Channel capacity in sats")
	cmd.Flags().Int64Var(&cfg.Push, "push", 0, "Amount in sats pushed to the peer")
	return cmd
}

func newCloseCmd(opts *common.Options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "close <network> <node> <channel-point>",
		Short: "Close a channel",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				txid, err := app.Networks.CloseChannel(ctx, args[0], args[1], args[2], force)
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "closing_txid", txid)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Force close")
	return cmd
}

// PrintChannels writes a node's channels as a table
func PrintChannels(out io.Writer, asJSON bool, channels []nodetypes.ChannelInfo) error {
	return common.Print(out, asJSON, channels, func(w io.Writer) {
		fmt.Fprintln(w, "CHANNEL POINT\tREMOTE\tCAPACITY\tLOCAL\tREMOTE BALANCE\tACTIVE")
		for _, c := range channels {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\n",
				c.ChannelPoint, c.RemotePubkey, int64(c.Capacity), int64(c.LocalBalance), int64(c.RemoteBalance), c.Active)
		}
	})
}

func newChannelsCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "channels <network> <node>",
		Short: "List a node's open channels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				channels, err := app.Networks.ListChannels(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return PrintChannels(os.Stdout, opts.JSON, channels)
			})
		},
	}
}

func newPayCmd(opts *common.Options) *cobra.Command {
	var (
		amount int64
		memo   string
	)
	cmd := &cobra.Command{
		Use:   "pay <network> <from> <to>",
		Short: "Create an invoice on <to> and pay it from <from>",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("--amount must be greater than 0")
			}
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				hash, err := app.Networks.SendPayment(ctx, args[0], args[1], args[2], amount, memo)
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "payment_hash", hash)
			})
		},
	}
	cmd.Flags().Int64Var(&amount, "amount", 1000, "Amount in sats")
	cmd.Flags().StringVar(&memo, "memo", "", "Invoice memo")
	return cmd
}

func newSyncGraphCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-graph <network>",
		Short: "Connect every running Lightning node to every other",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				count, err := app.Networks.SyncGraph(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "connections", fmt.Sprint(count))
			})
		},
	}
}

func newSyncChainCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-chain <network>",
		Short: "Report how many Lightning nodes are synced to the chain tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, opts, func(ctx context.Context, app *common.App) error {
				count, err := app.Networks.SyncChain(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(opts.JSON, "synced", fmt.Sprint(count))
			})
		},
	}
}
