// Package history provides the 'history' command.
package history

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
)

type historyCmd struct {
	network  string
	page     int
	pageSize int
	opts     *common.Options
}

func (c *historyCmd) run(cmd *cobra.Command, out io.Writer) error {
	journal, closeJournal, err := common.OpenJournal(c.opts)
	if err != nil {
		return err
	}
	defer closeJournal()

	logs, err := journal.ListLogs(cmd.Context(), c.network, c.page, c.pageSize)
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	if err := PrintLogs(out, c.opts.JSON, logs); err != nil {
		return err
	}
	if !c.opts.JSON && int64(logs.Page*logs.PageSize) < logs.TotalCount {
		fmt.Fprintf(out, "\nPage %d (Total: %d). Use --page to view more results\n", logs.Page, logs.TotalCount)
	}
	return nil
}

// PrintLogs writes a page of journal entries as a table
func PrintLogs(out io.Writer, asJSON bool, logs *audit.ListLogsResponse) error {
	return common.Print(out, asJSON, logs, func(w io.Writer) {
		fmt.Fprintln(w, "TIME\tNETWORK\tOPERATION\tNODE\tOUTCOME\tDURATION\tERROR")
		for _, e := range logs.Items {
			node := e.Node
			if node == "" {
				node = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Network,
				e.Operation,
				node,
				e.Outcome,
				e.Duration.Round(1e6),
				e.ErrorMessage,
			)
		}
	})
}

// NewHistoryCmd returns the history command
func NewHistoryCmd(opts *common.Options) *cobra.Command {
	c := &historyCmd{opts: opts}

	cmd := &cobra.Command{
		Use:   "history [network]",
		Short: "Show recorded network operations, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.network = args[0]
			}
			return c.run(cmd, os.Stdout)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&c.page, "page", 1, "Page number")
	flags.IntVar(&c.pageSize, "limit", 20, "Number of items per page")

	return cmd
}
