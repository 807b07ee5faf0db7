package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debug *bool

var rootCmd = &cobra.Command{
	Use:   "argosync",
	Short: "argosync mirrors an Argo school portal account into Notion.",
}

func init() {
	debug = rootCmd.PersistentFlags().Bool(
		"debug", false,
		"Dump every http exchange to .dev/resty for inspection.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
