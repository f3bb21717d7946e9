package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/gomarket"

// Version is the CLI version. Release builds override it with
// -ldflags "-X github.com/mesh-intelligence/gomarket/internal/cli.Version=...".
var Version = "0.1.0-dev"

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gomarket version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gomarket v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
