package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quadglow/quadglow/internal/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Info()
			fmt.Printf("quadglow version %s\n", info["Version"])
			fmt.Printf("  commit: %s\n", info["GitCommit"])
			fmt.Printf("  go:     %s %s/%s\n", info["GoVersion"], info["OS"], info["Arch"])
		},
	}
}
