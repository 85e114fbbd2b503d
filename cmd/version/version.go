package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/cmd/common"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/version"
)

// NewVersionCmd creates a new version command
func NewVersionCmd(opts *common.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information about the regtest-tui binary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			return common.Print(os.Stdout, opts.JSON, info, func(w io.Writer) {
				fmt.Fprintf(w, "Version:\t%s\n", info.Version)
				fmt.Fprintf(w, "Git Commit:\t%s\n", info.GitCommit)
				fmt.Fprintf(w, "Build Time:\t%s\n", info.BuildTime)
				fmt.Fprintf(w, "Go:\t%s %s\n", info.GoVersion, info.Platform)
			})
		},
	}

	return cmd
}
