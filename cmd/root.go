// Package cmd defines the quadglow command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quadglow",
	Short: "RGB controller for HyperX Quadcast S and DuoCast microphones",
	Long: `quadglow drives the RGB lighting of HyperX Quadcast S and DuoCast
microphones over USB. The firmware forgets its colors whenever the device
resets, so quadglow keeps streaming the chosen appearance until stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command and returns its error for exit-code
// mapping in main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewVersionCommand())
}
