package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type VersionInfo struct {
	Version string
	Commit  string
}

func (vi VersionInfo) String() string {
	return fmt.Sprintf("%s.%s", vi.Version, vi.Commit)
}

var versionInfo VersionInfo

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of PasteBox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pastebox %s (%s/%s, %s)\n",
				versionInfo, runtime.GOOS, runtime.GOARCH, runtime.Version())
			return nil
		},
	}
}
